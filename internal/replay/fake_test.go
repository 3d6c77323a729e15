package replay

import (
	"fmt"

	"github.com/yairfalse/tapio-replay/internal/alloc"
)

// event is one observed call, in the order the executor made it.
type event struct {
	call string
	addr uintptr
	arg  uint64
}

func (e event) String() string {
	return fmt.Sprintf("%s(%#x, %d)", e.call, e.addr, e.arg)
}

type journal struct {
	events []event
}

func (j *journal) add(call string, addr uintptr, arg uint64) {
	j.events = append(j.events, event{call: call, addr: addr, arg: arg})
}

func (j *journal) calls() []string {
	out := make([]string, len(j.events))
	for i, e := range j.events {
		out[i] = e.call
	}
	return out
}

// fakeAllocator hands out synthetic addresses and tracks block sizes.
type fakeAllocator struct {
	journal *journal
	next    uintptr
	live    map[uintptr]uint64
	// failAbove makes every request larger than the limit return null.
	failAbove uint64
	// nullOnZero makes zero-sized requests return null, as some libcs do.
	nullOnZero bool
	stats     alloc.Stats
}

func newFakeAllocator(j *journal) *fakeAllocator {
	return &fakeAllocator{journal: j, next: 0x1000, live: make(map[uintptr]uint64)}
}

func (f *fakeAllocator) fails(size uint64) bool {
	return (f.failAbove > 0 && size > f.failAbove) || (f.nullOnZero && size == 0)
}

func (f *fakeAllocator) Allocate(size uint64) uintptr {
	if f.fails(size) {
		f.journal.add("allocate", 0, size)
		return 0
	}
	addr := f.next
	f.next += 0x1000
	f.live[addr] = size
	f.journal.add("allocate", addr, size)
	return addr
}

func (f *fakeAllocator) Deallocate(addr uintptr) {
	f.journal.add("deallocate", addr, 0)
	if addr == 0 {
		return
	}
	if _, ok := f.live[addr]; !ok {
		panic(fmt.Sprintf("free of unknown block %#x", addr))
	}
	delete(f.live, addr)
}

func (f *fakeAllocator) Reallocate(addr uintptr, size uint64) uintptr {
	if f.fails(size) {
		f.journal.add("reallocate", 0, size)
		return 0
	}
	if addr != 0 {
		if _, ok := f.live[addr]; !ok {
			panic(fmt.Sprintf("realloc of unknown block %#x", addr))
		}
		delete(f.live, addr)
	}
	next := f.next
	f.next += 0x1000
	f.live[next] = size
	f.journal.add("reallocate", next, size)
	return next
}

func (f *fakeAllocator) Stats() alloc.Stats {
	return f.stats
}

// recordingHooks logs hook calls into the shared journal.
type recordingHooks struct {
	journal *journal
}

func (h recordingHooks) SetMarker(marker uint32) {
	h.journal.add("marker", 0, uint64(marker))
}

func (h recordingHooks) OverrideNextTimestamp(timestamp uint64) {
	h.journal.add("timestamp", 0, timestamp)
}
