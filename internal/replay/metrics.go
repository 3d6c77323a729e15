package replay

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/yairfalse/tapio-replay/internal/trace"
)

// meterName scopes the replay instruments.
const meterName = "github.com/yairfalse/tapio-replay/internal/replay"

type metrics struct {
	operations      metric.Int64Counter
	nullAllocations metric.Int64Counter
	duration        metric.Float64Histogram
	liveSlots       metric.Int64Gauge
}

// newMetrics registers the replay instruments. Instruments that fail to
// register stay nil and are skipped when recording.
func newMetrics(meter metric.Meter, logger *zap.Logger) *metrics {
	m := &metrics{}
	var err error

	m.operations, err = meter.Int64Counter(
		"replay_operations_total",
		metric.WithDescription("Trace operations replayed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		logger.Debug("Failed to create operations counter", zap.Error(err))
		m.operations = nil
	}

	m.nullAllocations, err = meter.Int64Counter(
		"replay_null_allocations_total",
		metric.WithDescription("Allocations or reallocations that returned null"),
		metric.WithUnit("1"),
	)
	if err != nil {
		logger.Debug("Failed to create null allocations counter", zap.Error(err))
		m.nullAllocations = nil
	}

	m.duration, err = meter.Float64Histogram(
		"replay_duration_seconds",
		metric.WithDescription("Wall time spent replaying a trace"),
		metric.WithUnit("s"),
	)
	if err != nil {
		logger.Debug("Failed to create duration histogram", zap.Error(err))
		m.duration = nil
	}

	m.liveSlots, err = meter.Int64Gauge(
		"replay_live_slots",
		metric.WithDescription("Slots still owning an allocation when replay ended"),
		metric.WithUnit("1"),
	)
	if err != nil {
		logger.Debug("Failed to create live slots gauge", zap.Error(err))
		m.liveSlots = nil
	}

	return m
}

// record publishes the totals of a finished or failed run.
func (m *metrics) record(ctx context.Context, s *Summary) {
	if m.operations != nil {
		for _, kind := range []trace.Kind{trace.KindAlloc, trace.KindFree, trace.KindRealloc} {
			if n := s.ByKind[kind]; n > 0 {
				m.operations.Add(ctx, int64(n), metric.WithAttributes(attribute.String("kind", kind.String())))
			}
		}
	}
	if m.nullAllocations != nil && s.NullAllocations > 0 {
		m.nullAllocations.Add(ctx, int64(s.NullAllocations))
	}
	if m.duration != nil {
		m.duration.Record(ctx, s.Duration.Seconds())
	}
	if m.liveSlots != nil {
		m.liveSlots.Record(ctx, int64(s.LiveSlots))
	}
}
