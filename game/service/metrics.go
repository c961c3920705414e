package service

import (
	"sync/atomic"
	"time"

	"github.com/wricardo/mcp-training/plantmerge/game/engine"
)

// Metrics records gameplay counters for the /api/metrics endpoint
type Metrics struct {
	startedAt time.Time

	SessionsCreated int64
	SessionsDeleted int64
	Moves           int64
	MovesRejected   int64
	PositionUpdates int64
	ModeSwitches    int64
	PickUps         int64
	Merges          int64
	Swaps           int64
	Rejections      int64
	Victories       int64
	Resets          int64
}

// MetricsSnapshot is a read-only copy of the counters
type MetricsSnapshot struct {
	UptimeSeconds   int64 `json:"uptime_seconds"`
	ActiveSessions  int   `json:"active_sessions"`
	SessionsCreated int64 `json:"sessions_created"`
	SessionsDeleted int64 `json:"sessions_deleted"`
	Moves           int64 `json:"moves"`
	MovesRejected   int64 `json:"moves_rejected"`
	PositionUpdates int64 `json:"position_updates"`
	ModeSwitches    int64 `json:"mode_switches"`
	PickUps         int64 `json:"pick_ups"`
	Merges          int64 `json:"merges"`
	Swaps           int64 `json:"swaps"`
	Rejections      int64 `json:"rejections"`
	Victories       int64 `json:"victories"`
	Resets          int64 `json:"resets"`
}

func newMetrics() *Metrics {
	return &Metrics{startedAt: time.Now()}
}

func (m *Metrics) IncMove(ok bool) {
	if ok {
		atomic.AddInt64(&m.Moves, 1)
	} else {
		atomic.AddInt64(&m.MovesRejected, 1)
	}
}

func (m *Metrics) IncOutcome(kind engine.OutcomeKind) {
	switch kind {
	case engine.PickedUp:
		atomic.AddInt64(&m.PickUps, 1)
	case engine.Merged:
		atomic.AddInt64(&m.Merges, 1)
	case engine.Swapped:
		atomic.AddInt64(&m.Swaps, 1)
	case engine.Rejected:
		atomic.AddInt64(&m.Rejections, 1)
	}
}

func (m *Metrics) inc(counter *int64) { atomic.AddInt64(counter, 1) }

// Snapshot returns a copy for HTTP output
func (m *Metrics) Snapshot(activeSessions int) MetricsSnapshot {
	return MetricsSnapshot{
		UptimeSeconds:   int64(time.Since(m.startedAt).Seconds()),
		ActiveSessions:  activeSessions,
		SessionsCreated: atomic.LoadInt64(&m.SessionsCreated),
		SessionsDeleted: atomic.LoadInt64(&m.SessionsDeleted),
		Moves:           atomic.LoadInt64(&m.Moves),
		MovesRejected:   atomic.LoadInt64(&m.MovesRejected),
		PositionUpdates: atomic.LoadInt64(&m.PositionUpdates),
		ModeSwitches:    atomic.LoadInt64(&m.ModeSwitches),
		PickUps:         atomic.LoadInt64(&m.PickUps),
		Merges:          atomic.LoadInt64(&m.Merges),
		Swaps:           atomic.LoadInt64(&m.Swaps),
		Rejections:      atomic.LoadInt64(&m.Rejections),
		Victories:       atomic.LoadInt64(&m.Victories),
		Resets:          atomic.LoadInt64(&m.Resets),
	}
}
