// Package tracetest builds encoded traces for tests.
package tracetest

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/yairfalse/tapio-replay/internal/trace"
)

// Builder accumulates records and encodes them in the trace file format.
type Builder struct {
	slots uint64
	ops   []trace.Op
	// declared overrides the operation count written to the header when set.
	declared *uint64
}

// New returns a builder for a trace with slotCount slots.
func New(slotCount uint64) *Builder {
	return &Builder{slots: slotCount}
}

// Alloc appends an allocation of size bytes into slot.
func (b *Builder) Alloc(slot, timestamp, size uint64) *Builder {
	b.ops = append(b.ops, trace.Op{Kind: trace.KindAlloc, Slot: slot, Timestamp: timestamp, Size: size})
	return b
}

// Free appends a release of the allocation owned by slot.
func (b *Builder) Free(slot, timestamp uint64) *Builder {
	b.ops = append(b.ops, trace.Op{Kind: trace.KindFree, Slot: slot, Timestamp: timestamp})
	return b
}

// Realloc appends a resize of slot's allocation to size bytes.
func (b *Builder) Realloc(slot, timestamp, size uint64) *Builder {
	b.ops = append(b.ops, trace.Op{Kind: trace.KindRealloc, Slot: slot, Timestamp: timestamp, Size: size})
	return b
}

// Raw appends a record with an arbitrary discriminant.
func (b *Builder) Raw(kind, slot, timestamp, size uint64) *Builder {
	b.ops = append(b.ops, trace.Op{Kind: trace.Kind(kind), Slot: slot, Timestamp: timestamp, Size: size})
	return b
}

// DeclareOperations writes n as the header's operation count regardless of
// how many records were added.
func (b *Builder) DeclareOperations(n uint64) *Builder {
	b.declared = &n
	return b
}

// Ops returns the records added so far.
func (b *Builder) Ops() []trace.Op {
	return append([]trace.Op(nil), b.ops...)
}

// Bytes encodes the trace.
func (b *Builder) Bytes() []byte {
	count := uint64(len(b.ops))
	if b.declared != nil {
		count = *b.declared
	}

	buf := make([]byte, trace.HeaderSize+len(b.ops)*trace.RecordSize)
	binary.LittleEndian.PutUint64(buf[0:8], b.slots)
	binary.LittleEndian.PutUint64(buf[8:16], count)
	for i, op := range b.ops {
		rec := buf[trace.HeaderSize+i*trace.RecordSize:]
		binary.LittleEndian.PutUint64(rec[0:8], uint64(op.Kind))
		binary.LittleEndian.PutUint64(rec[8:16], op.Slot)
		binary.LittleEndian.PutUint64(rec[16:24], op.Timestamp)
		binary.LittleEndian.PutUint64(rec[24:32], op.Size)
	}
	return buf
}

// WriteFile encodes the trace into a file under t.TempDir and returns its path.
func (b *Builder) WriteFile(t testing.TB) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "replay.dat")
	if err := os.WriteFile(path, b.Bytes(), 0o600); err != nil {
		t.Fatalf("write trace: %v", err)
	}
	return path
}
