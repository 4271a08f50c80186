package marshaler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// NewJSON returns a marshaler that encodes values of type T as JSON.
//
// The encoding is suitable for use as a member identity. Map keys are sorted
// and HTML characters are not escaped, so two equal values always produce the
// same bytes. Unmarshaling rejects unknown object fields and trailing data, so
// that an identity can not be decoded into a value that would re-encode
// differently.
func NewJSON[T any]() Marshaler[T] {
	return marshaler[T]{marshalJSON[T], unmarshalJSON[T]}
}

func marshalJSON[T any](v T) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func unmarshalJSON[T any](data []byte) (T, error) {
	var v T

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&v); err != nil {
		return v, err
	}

	if _, err := dec.Token(); err != io.EOF {
		return v, errors.New("unexpected data after JSON value")
	}

	return v, nil
}
