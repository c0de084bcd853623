// Package runtime owns the one piece of mutable state in the kernel:
// the RuntimeTracker (spec.md §3). It is mutated only by the decision
// driver (C8), exactly once per committed decision, strictly after the
// tick's pure computation (spec.md §5).
package runtime

import (
	"sync"
	"time"

	"github.com/aosanya/liftkernel/internal/kernel"
	"github.com/sirupsen/logrus"
)

// PumpRuntime is one pump's running-state bookkeeping.
type PumpRuntime struct {
	StartedAt               *time.Time
	CumulativeRuntimeSeconds int64
}

// Snapshot is the immutable view handed to the pure stages of a tick
// (specialists, coordinator, validator). It must never be mutated by
// its consumers.
type Snapshot struct {
	Pumps                map[string]PumpRuntime
	LastEmptyBelow05mAt *time.Time
}

// IsRunning reports whether the snapshot shows the pump as started.
func (s Snapshot) IsRunning(pumpID string) bool {
	pr, ok := s.Pumps[pumpID]
	return ok && pr.StartedAt != nil
}

// HeldRunning reports whether the pump must stay running this tick
// because it hasn't completed its minimum runtime hold yet.
func (s Snapshot) HeldRunning(pumpID string, minHold time.Duration, now time.Time) bool {
	pr, ok := s.Pumps[pumpID]
	if !ok || pr.StartedAt == nil {
		return false
	}
	return now.Sub(*pr.StartedAt) < minHold
}

// Tracker owns the mutable RuntimeTracker state. Grounded on the
// teacher's internal/runtime/manager.go: a map guarded by a mutex,
// snapshot-for-readers, single-writer commit.
type Tracker struct {
	mu                  sync.RWMutex
	pumps               map[string]PumpRuntime
	lastEmptyBelow05mAt *time.Time
	logger              *logrus.Logger
}

// NewTracker builds an empty tracker for the given pump ids.
func NewTracker(pumpIDs []string, logger *logrus.Logger) *Tracker {
	pumps := make(map[string]PumpRuntime, len(pumpIDs))
	for _, id := range pumpIDs {
		pumps[id] = PumpRuntime{}
	}
	return &Tracker{pumps: pumps, logger: logger}
}

// Snapshot returns a read-only copy for the pure stages of a tick.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cp := make(map[string]PumpRuntime, len(t.pumps))
	for k, v := range t.pumps {
		cp[k] = v
	}
	var lastEmpty *time.Time
	if t.lastEmptyBelow05mAt != nil {
		v := *t.lastEmptyBelow05mAt
		lastEmpty = &v
	}
	return Snapshot{Pumps: cp, LastEmptyBelow05mAt: lastEmpty}
}

// Commit applies the spec.md §4.8 step-7 mutation: for each pump, a
// false→true transition sets StartedAt; a true→true transition adds
// 900s of cumulative runtime; a true→false transition resets. It also
// records the daily-emptying observation. This is the only write path.
func (t *Tracker) Commit(commands []kernel.PumpCommand, state kernel.SystemState, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, cmd := range commands {
		prev := t.pumps[cmd.PumpID]
		wasRunning := prev.StartedAt != nil

		switch {
		case !wasRunning && cmd.Start:
			started := now
			t.pumps[cmd.PumpID] = PumpRuntime{StartedAt: &started, CumulativeRuntimeSeconds: prev.CumulativeRuntimeSeconds}
		case wasRunning && cmd.Start:
			t.pumps[cmd.PumpID] = PumpRuntime{StartedAt: prev.StartedAt, CumulativeRuntimeSeconds: prev.CumulativeRuntimeSeconds + 900}
		case wasRunning && !cmd.Start:
			t.pumps[cmd.PumpID] = PumpRuntime{}
		default:
			// already stopped, stays stopped
		}
	}

	if state.L1M < 0.5 {
		observed := state.Timestamp
		t.lastEmptyBelow05mAt = &observed
	}

	if t.logger != nil {
		t.logger.WithField("tick", state.Timestamp).Debug("runtime tracker committed")
	}
}
