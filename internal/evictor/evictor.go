package evictor

import (
	"log/slog"
	"sort"
	"syscall"
	"time"

	"github.com/loykin/proclife/internal/lifecycle"
	"github.com/loykin/proclife/internal/registry"
)

// DefaultIdleThreshold is how long a cached process must sit idle before it
// becomes an eviction victim.
const DefaultIdleThreshold = 300 * time.Second

// Terminator delivers a termination signal to a process.
type Terminator interface {
	Terminate(pid int32) error
}

// SignalTerminator sends SIGTERM to the process group.
type SignalTerminator struct{}

func (SignalTerminator) Terminate(pid int32) error {
	return syscall.Kill(int(pid), syscall.SIGTERM)
}

// Evictor terminates idle cached processes when the host runs short on
// memory. Termination is advisory: records stay tracked until the reap pass
// observes the exit.
type Evictor struct {
	term          Terminator
	idleThreshold time.Duration
	logger        *slog.Logger
}

func New(term Terminator, idleThreshold time.Duration, logger *slog.Logger) *Evictor {
	if term == nil {
		term = SignalTerminator{}
	}
	if idleThreshold <= 0 {
		idleThreshold = DefaultIdleThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Evictor{term: term, idleThreshold: idleThreshold, logger: logger}
}

// Sweep ranks records least-recently-active last, then terminates cached
// records idle beyond the threshold. The ranking pass runs up front so that
// a future cap on eviction count picks the least active victims first.
// Returns the pids signalled.
func (e *Evictor) Sweep(records []*registry.Record, now time.Time) []int32 {
	ranked := make([]*registry.Record, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].LastActive.After(ranked[j].LastActive)
	})

	var evicted []int32
	for i := len(ranked) - 1; i >= 0; i-- {
		rec := ranked[i]
		if rec.State != lifecycle.StateCached {
			continue
		}
		idle := rec.Idle(now)
		if idle <= e.idleThreshold {
			continue
		}
		if err := e.term.Terminate(rec.PID); err != nil {
			e.logger.Warn("eviction signal failed", "pid", rec.PID, "name", rec.Name, "error", err)
			continue
		}
		e.logger.Info("evicting idle cached process",
			"pid", rec.PID, "name", rec.Name, "idle", idle.Round(time.Second))
		evicted = append(evicted, rec.PID)
	}
	return evicted
}
