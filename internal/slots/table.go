// Package slots maps logical allocation identities from a trace to the live
// addresses the allocator handed out for them during replay.
package slots

import (
	"errors"
	"fmt"
	"math"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Empty is the cell value of a slot that owns no allocation.
const Empty uintptr = 0

const cellSize = uint64(unsafe.Sizeof(uintptr(0)))

var (
	// ErrSlotOutOfRange is returned for a slot at or beyond the table size.
	// Well-formed traces never produce it.
	ErrSlotOutOfRange = errors.New("slot out of range")
	// ErrTooLarge is returned when the table cannot be addressed by the process.
	ErrTooLarge = errors.New("slot table too large")
)

// Table is a fixed-size array of address cells backed by an anonymous
// mapping, so every cell starts empty regardless of allocator state.
type Table struct {
	mem   []byte
	cells []uintptr
}

// New maps a table of n empty cells.
func New(n uint64) (*Table, error) {
	if n == 0 {
		return &Table{}, nil
	}
	if n > math.MaxInt/cellSize {
		return nil, fmt.Errorf("%w: %d slots", ErrTooLarge, n)
	}

	page := uint64(unix.Getpagesize())
	size := (n*cellSize + page - 1) &^ (page - 1)
	if size > math.MaxInt {
		return nil, fmt.Errorf("%w: %d slots", ErrTooLarge, n)
	}

	mem, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("anonymous mmap failed: %w", err)
	}

	return &Table{
		mem:   mem,
		cells: unsafe.Slice((*uintptr)(unsafe.Pointer(&mem[0])), n),
	}, nil
}

// Len returns the number of cells.
func (t *Table) Len() uint64 {
	return uint64(len(t.cells))
}

// Get returns the address owned by slot, or Empty.
func (t *Table) Get(slot uint64) (uintptr, error) {
	if slot >= uint64(len(t.cells)) {
		return Empty, fmt.Errorf("%w: %d >= %d", ErrSlotOutOfRange, slot, len(t.cells))
	}
	return t.cells[slot], nil
}

// Set records addr as the allocation owned by slot.
func (t *Table) Set(slot uint64, addr uintptr) error {
	if slot >= uint64(len(t.cells)) {
		return fmt.Errorf("%w: %d >= %d", ErrSlotOutOfRange, slot, len(t.cells))
	}
	t.cells[slot] = addr
	return nil
}

// Live counts the non-empty cells.
func (t *Table) Live() uint64 {
	var n uint64
	for _, c := range t.cells {
		if c != Empty {
			n++
		}
	}
	return n
}

// Close unmaps the table. Addresses still held are not released.
func (t *Table) Close() error {
	if t.mem == nil {
		return nil
	}
	err := unix.Munmap(t.mem)
	t.mem = nil
	t.cells = nil
	return err
}
