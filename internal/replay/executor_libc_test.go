//go:build cgo

package replay

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/yairfalse/tapio-replay/internal/alloc"
	"github.com/yairfalse/tapio-replay/internal/hooks"
	"github.com/yairfalse/tapio-replay/internal/slots"
	"github.com/yairfalse/tapio-replay/internal/trace"
	"github.com/yairfalse/tapio-replay/internal/trace/tracetest"
)

func TestReplayAgainstLibc(t *testing.T) {
	libc, err := alloc.Libc()
	require.NoError(t, err)

	var timestamps []uint64
	h := hooks.Funcs{Timestamp: func(ts uint64) { timestamps = append(timestamps, ts) }}
	e := NewExecutor(libc, h, zaptest.NewLogger(t), Options{})

	b := tracetest.New(4).
		Alloc(0, 1, 16).
		Realloc(0, 2, 32).
		Realloc(1, 3, 32).
		Alloc(2, 4, 1<<16).
		Free(2, 5)
	view, err := trace.NewView(b.Bytes(), true)
	require.NoError(t, err)
	table, err := slots.New(view.SlotCount())
	require.NoError(t, err)
	defer table.Close()

	summary, err := e.Run(view, table)
	require.NoError(t, err)

	assert.Equal(t, uint64(4), summary.Allocations)
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, timestamps)
	assert.Equal(t, uint64(2), summary.LiveSlots)

	// Live blocks are addressable for their recorded size.
	for _, slot := range []uint64{0, 1} {
		addr, err := table.Get(slot)
		require.NoError(t, err)
		require.NotZero(t, addr)
		block := unsafe.Slice((*byte)(unsafe.Pointer(addr)), 32)
		block[31] = 0xff
		libc.Deallocate(addr)
	}
}
