package replay

import (
	"errors"
	"fmt"

	"github.com/yairfalse/tapio-replay/internal/trace"
)

// ErrDoubleAllocation means an alloc record targeted a slot that still owns a
// live allocation. The trace is corrupt or duplicated and the rest of the
// replay is meaningless.
var ErrDoubleAllocation = errors.New("allocation into a live slot")

// OpError locates a replay failure within the trace.
type OpError struct {
	Index uint64
	Op    trace.Op
	Err   error
}

func (e *OpError) Error() string {
	if e.Op.Kind == 0 {
		return fmt.Sprintf("operation %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("operation %d (%s slot=%d ts=%d): %v",
		e.Index, e.Op.Kind, e.Op.Slot, e.Op.Timestamp, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
