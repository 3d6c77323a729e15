// Package hooks binds the optional callbacks a memory-profiling agent may
// export into the process.
//
// An agent loaded into the replayer (for example through LD_PRELOAD) can
// export two C functions:
//
//	void memory_profiler_set_marker(uint32_t marker);
//	void memory_profiler_override_next_timestamp(uint64_t timestamp);
//
// Resolve looks both up once. A missing symbol is bound to a no-op, so
// callers invoke Hooks unconditionally.
package hooks

import "go.uber.org/zap"

const (
	// MarkerSymbol is the exported name of the marker hook.
	MarkerSymbol = "memory_profiler_set_marker"
	// TimestampSymbol is the exported name of the timestamp override hook.
	TimestampSymbol = "memory_profiler_override_next_timestamp"
)

// Hooks is the agent-facing surface of a replay.
type Hooks interface {
	// SetMarker forwards a marker to the agent.
	SetMarker(marker uint32)
	// OverrideNextTimestamp tells the agent which recorded timestamp to
	// attribute to the next allocator call.
	OverrideNextTimestamp(timestamp uint64)
}

// Bound reports which hooks were found in the process.
type Bound struct {
	Marker    bool
	Timestamp bool
}

// Funcs adapts two plain functions to Hooks. Nil fields are no-ops.
type Funcs struct {
	Marker    func(marker uint32)
	Timestamp func(timestamp uint64)
}

// SetMarker calls f.Marker if set.
func (f Funcs) SetMarker(marker uint32) {
	if f.Marker != nil {
		f.Marker(marker)
	}
}

// OverrideNextTimestamp calls f.Timestamp if set.
func (f Funcs) OverrideNextTimestamp(timestamp uint64) {
	if f.Timestamp != nil {
		f.Timestamp(timestamp)
	}
}

// Noop ignores every call.
var Noop Hooks = Funcs{}

// Resolve binds the agent hooks exported by the process, falling back to
// no-ops for any that are absent.
func Resolve(logger *zap.Logger) (Hooks, Bound) {
	hooks, bound := resolve()
	if logger != nil {
		logger.Debug("Resolved profiler hooks",
			zap.Bool(MarkerSymbol, bound.Marker),
			zap.Bool(TimestampSymbol, bound.Timestamp))
	}
	return hooks, bound
}
