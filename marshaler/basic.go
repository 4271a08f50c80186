package marshaler

// String marshals and unmarshals the built-in string type by performing a Go
// type-conversion.
var String = NewConvert[string]()

// NewConvert returns a marshaler that performs a type conversion between T and
// []byte without changing the underlying data.
func NewConvert[T ~string | ~[]byte]() Marshaler[T] {
	return marshaler[T]{
		func(v T) ([]byte, error) {
			return []byte(v), nil
		},
		func(data []byte) (T, error) {
			return T(data), nil
		},
	}
}
