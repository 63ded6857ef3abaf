package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	fills           atomic.Uint64
	arbitragePasses atomic.Uint64
	ladderRebuilds  atomic.Uint64
	runsCompleted   atomic.Uint64
	framesDropped   atomic.Uint64

	// Gauges
	activeSubscribers atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordFill records one executed fill.
func (m *Metrics) RecordFill() {
	m.fills.Add(1)
}

// RecordArbitragePass records one completed arbitrage pass.
func (m *Metrics) RecordArbitragePass() {
	m.arbitragePasses.Add(1)
}

// RecordLadderRebuild records one full book rebuild by a curve maker.
func (m *Metrics) RecordLadderRebuild() {
	m.ladderRebuilds.Add(1)
}

// RecordRunCompleted records one finished simulation run.
func (m *Metrics) RecordRunCompleted() {
	m.runsCompleted.Add(1)
}

// RecordFrameDropped records a snapshot frame dropped on a slow subscriber.
func (m *Metrics) RecordFrameDropped() {
	m.framesDropped.Add(1)
}

// IncrementSubscribers increments active feed subscribers by 1.
func (m *Metrics) IncrementSubscribers() {
	m.activeSubscribers.Add(1)
}

// DecrementSubscribers decrements active feed subscribers by 1.
func (m *Metrics) DecrementSubscribers() {
	m.activeSubscribers.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	Fills             uint64
	ArbitragePasses   uint64
	LadderRebuilds    uint64
	RunsCompleted     uint64
	FramesDropped     uint64
	ActiveSubscribers int32
	Timestamp         time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Fills:             m.fills.Load(),
		ArbitragePasses:   m.arbitragePasses.Load(),
		LadderRebuilds:    m.ladderRebuilds.Load(),
		RunsCompleted:     m.runsCompleted.Load(),
		FramesDropped:     m.framesDropped.Load(),
		ActiveSubscribers: m.activeSubscribers.Load(),
		Timestamp:         time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.fills.Store(0)
	m.arbitragePasses.Store(0)
	m.ladderRebuilds.Store(0)
	m.runsCompleted.Store(0)
	m.framesDropped.Store(0)
	m.activeSubscribers.Store(0)
}
