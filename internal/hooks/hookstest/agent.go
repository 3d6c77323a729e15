//go:build cgo

// Package hookstest exports the profiler hook symbols from Go so tests can
// bind them. Importing it into a test binary stands in for an agent loaded
// with LD_PRELOAD.
package hookstest

/*
#include <stdint.h>
*/
import "C"

import "sync"

var (
	mu         sync.Mutex
	markers    []uint32
	timestamps []uint64
)

//export memory_profiler_set_marker
func memory_profiler_set_marker(marker C.uint32_t) {
	mu.Lock()
	defer mu.Unlock()
	markers = append(markers, uint32(marker))
}

//export memory_profiler_override_next_timestamp
func memory_profiler_override_next_timestamp(timestamp C.uint64_t) {
	mu.Lock()
	defer mu.Unlock()
	timestamps = append(timestamps, uint64(timestamp))
}

// Reset forgets every recorded call.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	markers = nil
	timestamps = nil
}

// Markers returns the markers received so far, in call order.
func Markers() []uint32 {
	mu.Lock()
	defer mu.Unlock()
	return append([]uint32(nil), markers...)
}

// Timestamps returns the timestamps received so far, in call order.
func Timestamps() []uint64 {
	mu.Lock()
	defer mu.Unlock()
	return append([]uint64(nil), timestamps...)
}
