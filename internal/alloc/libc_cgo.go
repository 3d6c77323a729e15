//go:build cgo

package alloc

/*
#include <stdint.h>
#include <stdlib.h>
#ifdef __GLIBC__
#include <malloc.h>
#endif

static uintptr_t replay_malloc(uint64_t size) {
	return (uintptr_t)malloc((size_t)size);
}

static uintptr_t replay_realloc(uintptr_t ptr, uint64_t size) {
	return (uintptr_t)realloc((void *)ptr, (size_t)size);
}

static void replay_free(uintptr_t ptr) {
	free((void *)ptr);
}

static void replay_mallinfo(uint64_t *free_bytes, uint64_t *fast_free_bytes, uint64_t *fast_free_blocks) {
#if defined(__GLIBC__) && (__GLIBC__ > 2 || (__GLIBC__ == 2 && __GLIBC_MINOR__ >= 33))
	struct mallinfo2 mi = mallinfo2();
	*free_bytes = (uint64_t)mi.fordblks;
	*fast_free_bytes = (uint64_t)mi.fsmblks;
	*fast_free_blocks = (uint64_t)mi.smblks;
#elif defined(__GLIBC__)
	struct mallinfo mi = mallinfo();
	*free_bytes = (uint64_t)(unsigned int)mi.fordblks;
	*fast_free_bytes = (uint64_t)(unsigned int)mi.fsmblks;
	*fast_free_blocks = (uint64_t)(unsigned int)mi.smblks;
#else
	*free_bytes = 0;
	*fast_free_bytes = 0;
	*fast_free_blocks = 0;
#endif
}
*/
import "C"

import "runtime/debug"

type libc struct{}

// Libc returns the process C allocator.
func Libc() (Allocator, error) {
	return libc{}, nil
}

func (libc) Allocate(size uint64) uintptr {
	return uintptr(C.replay_malloc(C.uint64_t(size)))
}

func (libc) Deallocate(addr uintptr) {
	C.replay_free(C.uintptr_t(addr))
}

func (libc) Reallocate(addr uintptr, size uint64) uintptr {
	return uintptr(C.replay_realloc(C.uintptr_t(addr), C.uint64_t(size)))
}

func (libc) Stats() Stats {
	var free, fastFree, fastBlocks C.uint64_t
	C.replay_mallinfo(&free, &fastFree, &fastBlocks)
	return Stats{
		FreeBytes:      uint64(free),
		FastFreeBytes:  uint64(fastFree),
		FastFreeBlocks: uint64(fastBlocks),
	}
}

// Abort terminates the process through the C abort routine. The traceback
// level is raised to crash first: otherwise the Go runtime intercepts the
// SIGABRT and exits with status 2 instead of dying by the signal.
func Abort() {
	debug.SetTraceback("crash")
	C.abort()
}
