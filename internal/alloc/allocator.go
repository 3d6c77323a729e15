// Package alloc drives the host process allocator.
//
// Addresses are carried as uintptr: they always point into C heap memory the
// Go collector never moves or scans, and zero stands for the null pointer.
package alloc

import "errors"

// ErrUnsupported is returned when the binary was built without cgo.
var ErrUnsupported = errors.New("host allocator unavailable: built without cgo")

// Allocator is the subset of the C allocation API a replay needs.
type Allocator interface {
	// Allocate returns a block of at least size bytes, or 0 on failure.
	Allocate(size uint64) uintptr
	// Deallocate releases addr. Deallocating 0 is a no-op.
	Deallocate(addr uintptr)
	// Reallocate resizes addr to size bytes. Reallocating 0 behaves like
	// Allocate; the result is 0 on failure.
	Reallocate(addr uintptr, size uint64) uintptr
	// Stats snapshots the allocator's free-space counters.
	Stats() Stats
}

// Stats is a coarse fragmentation snapshot of the allocator.
type Stats struct {
	// FreeBytes is free space outside the fast bins.
	FreeBytes uint64 `json:"free_bytes"`
	// FastFreeBytes is free space held in the fast bins.
	FastFreeBytes uint64 `json:"fast_free_bytes"`
	// FastFreeBlocks is the number of free fast-bin blocks.
	FastFreeBlocks uint64 `json:"fast_free_blocks"`
}
