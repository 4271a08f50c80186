package marshaler

import (
	"google.golang.org/protobuf/proto"
)

// NewProto returns a marshaler for Protocol Buffers messages of type T.
//
// Messages are marshaled deterministically, so equal messages produce the
// same bytes within a single build of the program. The encoding is not stable
// across builds that use different versions of the message's definition, so
// it must not be persisted as a member identity.
func NewProto[
	T interface {
		proto.Message
		*S
	},
	S any,
]() Marshaler[T] {
	return protoMarshaler[T, S]{
		marshal: proto.MarshalOptions{Deterministic: true},
	}
}

type protoMarshaler[
	T interface {
		proto.Message
		*S
	},
	S any,
] struct {
	marshal   proto.MarshalOptions
	unmarshal proto.UnmarshalOptions
}

func (m protoMarshaler[T, S]) Marshal(v T) ([]byte, error) {
	return m.marshal.Marshal(v)
}

func (m protoMarshaler[T, S]) Unmarshal(data []byte) (T, error) {
	var v T = new(S)
	return v, m.unmarshal.Unmarshal(data, v)
}
