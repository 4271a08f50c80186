package clone

import (
	"github.com/dogmatiq/dyad"
	"google.golang.org/protobuf/proto"
)

// Clone returns a deep copy of v.
//
// Unexported struct fields are copied, and channels are shared between v and
// its copy, so Clone does not panic on values that hold opaque handles.
func Clone[T any](v T) T {
	if m, ok := any(v).(proto.Message); ok {
		return proto.Clone(m).(T)
	}

	return dyad.Clone(
		v,
		dyad.WithUnexportedFieldStrategy(dyad.CloneUnexportedFields),
		dyad.WithChannelStrategy(dyad.ShareChannels),
	)
}
