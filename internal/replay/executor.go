// Package replay re-issues recorded allocator calls in trace order.
package replay

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/yairfalse/tapio-replay/internal/alloc"
	"github.com/yairfalse/tapio-replay/internal/hooks"
	"github.com/yairfalse/tapio-replay/internal/slots"
	"github.com/yairfalse/tapio-replay/internal/trace"
)

// Source is an ordered, randomly addressable sequence of operations.
type Source interface {
	OperationCount() uint64
	Op(i uint64) (trace.Op, error)
}

// Options tunes an Executor.
type Options struct {
	// ProgressInterval logs progress every N operations. Zero disables it.
	ProgressInterval uint64
	// MeterProvider receives replay metrics. Nil uses the global provider.
	MeterProvider metric.MeterProvider
}

// Summary describes a replay run.
type Summary struct {
	// Operations is the number of records applied.
	Operations uint64 `json:"operations"`
	// Allocations counts alloc and realloc records, the activity figure
	// reported at the end of a run.
	Allocations uint64 `json:"allocations"`
	// ByKind breaks Operations down per record kind.
	ByKind map[trace.Kind]uint64 `json:"by_kind"`
	// NullAllocations counts alloc and realloc calls with a non-zero size
	// that returned null. The null address is stored in the slot as is.
	NullAllocations uint64 `json:"null_allocations"`
	// LiveSlots is the number of slots owning an allocation at the end.
	LiveSlots uint64 `json:"live_slots"`
	// Duration is the wall time of the replay loop.
	Duration time.Duration `json:"duration"`
	// Stats is the allocator snapshot taken after the last record.
	Stats alloc.Stats `json:"stats"`
}

// Executor re-issues recorded allocator calls in trace order.
type Executor struct {
	allocator alloc.Allocator
	hooks     hooks.Hooks
	logger    *zap.Logger
	progress  uint64
	metrics   *metrics
}

// NewExecutor builds an executor. A nil hooks value binds the no-op hooks.
func NewExecutor(allocator alloc.Allocator, h hooks.Hooks, logger *zap.Logger, opts Options) *Executor {
	if h == nil {
		h = hooks.Noop
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	provider := opts.MeterProvider
	if provider == nil {
		provider = otel.GetMeterProvider()
	}

	return &Executor{
		allocator: allocator,
		hooks:     h,
		logger:    logger,
		progress:  opts.ProgressInterval,
		metrics:   newMetrics(provider.Meter(meterName), logger),
	}
}

// Run applies every operation of src, strictly in order, against table.
//
// Failures stop the replay at the offending record and are returned as
// *OpError. An alloc into a live slot wraps ErrDoubleAllocation; range and
// decoding problems wrap the slots and trace package errors.
//
// Run pins the calling goroutine to its OS thread so every allocator call
// comes from the same thread, as it would in a single-threaded program.
func (e *Executor) Run(src Source, table *slots.Table) (*Summary, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	summary := &Summary{ByKind: make(map[trace.Kind]uint64, 3)}
	count := src.OperationCount()

	e.logger.Info("Starting replay",
		zap.Uint64("operations", count),
		zap.Uint64("slots", table.Len()))

	start := time.Now()
	err := e.replay(src, table, count, summary)
	summary.Duration = time.Since(start)
	summary.LiveSlots = table.Live()

	e.metrics.record(context.Background(), summary)

	if err != nil {
		e.logger.Error("Replay failed",
			zap.Uint64("applied", summary.Operations),
			zap.Error(err))
		return summary, err
	}

	summary.Stats = e.allocator.Stats()

	e.logger.Info("Replay finished",
		zap.Uint64("operations", summary.Operations),
		zap.Uint64("allocations", summary.Allocations),
		zap.Uint64("null_allocations", summary.NullAllocations),
		zap.Uint64("live_slots", summary.LiveSlots),
		zap.Duration("duration", summary.Duration))

	return summary, nil
}

func (e *Executor) replay(src Source, table *slots.Table, count uint64, summary *Summary) error {
	for i := uint64(0); i < count; i++ {
		op, err := src.Op(i)
		if err != nil {
			return &OpError{Index: i, Err: err}
		}

		if err := e.apply(op, table, summary); err != nil {
			return &OpError{Index: i, Op: op, Err: err}
		}

		summary.Operations++
		summary.ByKind[op.Kind]++
		if op.Kind != trace.KindFree {
			summary.Allocations++
		}

		if e.progress > 0 && summary.Operations%e.progress == 0 {
			e.logger.Info("Replay progress",
				zap.Uint64("applied", summary.Operations),
				zap.Uint64("total", count))
		}
	}
	return nil
}

func (e *Executor) apply(op trace.Op, table *slots.Table, summary *Summary) error {
	current, err := table.Get(op.Slot)
	if err != nil {
		return err
	}

	switch op.Kind {
	case trace.KindAlloc:
		if current != slots.Empty {
			return ErrDoubleAllocation
		}
		e.hooks.OverrideNextTimestamp(op.Timestamp)
		addr := e.allocator.Allocate(op.Size)
		e.checkNull(op, addr, summary)
		return table.Set(op.Slot, addr)

	case trace.KindFree:
		e.hooks.OverrideNextTimestamp(op.Timestamp)
		e.allocator.Deallocate(current)
		return table.Set(op.Slot, slots.Empty)

	case trace.KindRealloc:
		e.hooks.OverrideNextTimestamp(op.Timestamp)
		addr := e.allocator.Reallocate(current, op.Size)
		e.checkNull(op, addr, summary)
		return table.Set(op.Slot, addr)

	default:
		return trace.ErrUnknownKind
	}
}

func (e *Executor) checkNull(op trace.Op, addr uintptr, summary *Summary) {
	if addr != 0 || op.Size == 0 {
		return
	}
	summary.NullAllocations++
	e.logger.Warn("Allocator returned null",
		zap.Stringer("kind", op.Kind),
		zap.Uint64("slot", op.Slot),
		zap.Uint64("size", op.Size))
}
