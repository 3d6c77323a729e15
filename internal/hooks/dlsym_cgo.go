//go:build cgo

package hooks

/*
#cgo linux LDFLAGS: -ldl
#ifndef _GNU_SOURCE
#define _GNU_SOURCE 1
#endif
#include <dlfcn.h>
#include <stdint.h>
#include <stdlib.h>

static void *replay_lookup(const char *name) {
	return dlsym(RTLD_DEFAULT, name);
}

static void replay_call_marker(void *fn, uint32_t marker) {
	((void (*)(uint32_t))fn)(marker);
}

static void replay_call_timestamp(void *fn, uint64_t timestamp) {
	((void (*)(uint64_t))fn)(timestamp);
}
*/
import "C"

import "unsafe"

func lookup(name string) unsafe.Pointer {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return C.replay_lookup(cname)
}

func resolve() (Hooks, Bound) {
	return resolveWith(lookup)
}

// resolveWith binds the hooks whose symbols find returns non-nil.
func resolveWith(find func(name string) unsafe.Pointer) (Hooks, Bound) {
	var (
		funcs Funcs
		bound Bound
	)

	if fn := find(MarkerSymbol); fn != nil {
		bound.Marker = true
		funcs.Marker = func(marker uint32) {
			C.replay_call_marker(fn, C.uint32_t(marker))
		}
	}
	if fn := find(TimestampSymbol); fn != nil {
		bound.Timestamp = true
		funcs.Timestamp = func(timestamp uint64) {
			C.replay_call_timestamp(fn, C.uint64_t(timestamp))
		}
	}

	return funcs, bound
}
