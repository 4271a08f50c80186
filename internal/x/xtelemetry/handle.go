// Package xtelemetry contains telemetry helpers shared by the registry
// decorators.
package xtelemetry

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Handle identifies one instrumented registry within a process.
//
// Seq is small and sequential, which makes it easy to tell registries apart
// when reading logs. ID is globally unique and is used to correlate telemetry
// across processes.
type Handle struct {
	Seq uint64
	ID  uuid.UUID
}

var handles atomic.Uint64

// NewHandle returns a handle for a newly instrumented registry.
func NewHandle() Handle {
	return Handle{
		Seq: handles.Add(1),
		ID:  uuid.New(),
	}
}

func (h Handle) String() string {
	return fmt.Sprintf("#%d %s", h.Seq, h.ID)
}
