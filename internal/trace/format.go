package trace

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// HeaderSize is the encoded size of the trace header.
	HeaderSize = 16
	// RecordSize is the encoded size of one operation record.
	RecordSize = 32
)

var (
	// ErrTruncated is returned when the buffer is shorter than the header
	// or the records the header declares.
	ErrTruncated = errors.New("trace truncated")
	// ErrUnknownKind is returned for a record whose discriminant is not a
	// known operation kind.
	ErrUnknownKind = errors.New("unknown operation kind")
	// ErrIndexOutOfRange is returned by Op for an index at or beyond the
	// declared operation count.
	ErrIndexOutOfRange = errors.New("operation index out of range")
)

// Kind is the discriminant of an operation record.
type Kind uint64

const (
	// KindAlloc allocates Size bytes into an empty slot.
	KindAlloc Kind = 1
	// KindFree releases the slot's allocation.
	KindFree Kind = 2
	// KindRealloc resizes the slot's allocation to Size bytes.
	KindRealloc Kind = 3
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindAlloc:
		return "alloc"
	case KindFree:
		return "free"
	case KindRealloc:
		return "realloc"
	default:
		return fmt.Sprintf("kind(%d)", uint64(k))
	}
}

// Valid reports whether k is one of the three operation kinds.
func (k Kind) Valid() bool {
	return k >= KindAlloc && k <= KindRealloc
}

// Op is one decoded operation record. Size is always zero for KindFree.
type Op struct {
	Kind      Kind
	Slot      uint64
	Timestamp uint64
	Size      uint64
}

// Header is the fixed trace header.
type Header struct {
	SlotCount      uint64
	OperationCount uint64
}

func decodeHeader(b []byte) Header {
	return Header{
		SlotCount:      binary.LittleEndian.Uint64(b[0:8]),
		OperationCount: binary.LittleEndian.Uint64(b[8:16]),
	}
}

func decodeOp(b []byte) (Op, error) {
	op := Op{
		Kind:      Kind(binary.LittleEndian.Uint64(b[0:8])),
		Slot:      binary.LittleEndian.Uint64(b[8:16]),
		Timestamp: binary.LittleEndian.Uint64(b[16:24]),
	}
	switch op.Kind {
	case KindAlloc, KindRealloc:
		op.Size = binary.LittleEndian.Uint64(b[24:32])
	case KindFree:
	default:
		return Op{}, fmt.Errorf("%w: %d", ErrUnknownKind, uint64(op.Kind))
	}
	return op, nil
}
