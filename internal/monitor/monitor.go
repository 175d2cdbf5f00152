package monitor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/loykin/proclife/internal/lifecycle"
	"github.com/loykin/proclife/internal/metrics"
	"github.com/loykin/proclife/internal/registry"
	"github.com/loykin/proclife/internal/scoring"
	"github.com/loykin/proclife/internal/store"
)

// Probe is the signal-collection surface the monitor polls each pass.
type Probe interface {
	Refresh(rec *registry.Record, now time.Time)
	FocusedPID() int32
	ParentPID(pid int32) int32
	MemoryPressure() bool
	Prune(pids []int32)
}

// Enforcer applies lifecycle directives to the host.
type Enforcer interface {
	Apply(rec *registry.Record, target lifecycle.State) error
	Tune(rec *registry.Record, pressured bool)
	Reset(rec *registry.Record)
}

// Sweeper terminates eviction victims under memory pressure.
type Sweeper interface {
	Sweep(records []*registry.Record, now time.Time) []int32
}

// ErrOverrideQueueFull is returned when a priority override cannot be queued.
var ErrOverrideQueueFull = errors.New("override queue full")

type override struct {
	pid      int32
	priority int
	reply    chan error
}

// Monitor drives the scoring/enforcement/eviction pipeline on a fixed
// interval. The registry and all record fields are owned by the loop
// goroutine; priority overrides enter through a queue drained at tick
// boundaries, and signal delivery only flips flags consulted there.
type Monitor struct {
	interval time.Duration
	reg      *registry.Registry
	probe    Probe
	engine   *scoring.Engine
	enforcer Enforcer
	sweeper  Sweeper
	st       store.Store // nil disables event history
	logger   *slog.Logger

	overrides chan override
	dumpReq   atomic.Bool
	stopReq   atomic.Bool
	published atomic.Value // []ProcessStatus, rebuilt after each tick

	now func() time.Time
}

func New(interval time.Duration, reg *registry.Registry, probe Probe, enforcer Enforcer, sweeper Sweeper, st store.Store, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		interval:  interval,
		reg:       reg,
		probe:     probe,
		engine:    scoring.NewEngine(),
		enforcer:  enforcer,
		sweeper:   sweeper,
		st:        st,
		logger:    logger,
		overrides: make(chan override, 64),
		now:       time.Now,
	}
}

// Registry exposes the tracked process set for launch/attach wiring.
func (m *Monitor) Registry() *registry.Registry { return m.reg }

// RequestPriority queues a manual override to be applied at the next tick
// boundary and waits for the result. Out-of-range values are rejected
// immediately; unknown pids are rejected when the queue drains.
func (m *Monitor) RequestPriority(pid int32, priority int) error {
	if priority < -20 || priority > 20 {
		metrics.IncOverride("rejected")
		return registry.ErrPriorityRange
	}
	ov := override{pid: pid, priority: priority, reply: make(chan error, 1)}
	select {
	case m.overrides <- ov:
	default:
		metrics.IncOverride("dropped")
		return ErrOverrideQueueFull
	}
	select {
	case err := <-ov.reply:
		if err != nil {
			metrics.IncOverride("rejected")
		} else {
			metrics.IncOverride("applied")
		}
		return err
	case <-time.After(2 * m.interval):
		return errors.New("override not applied before timeout")
	}
}

// RequestDump asks the loop to log a diagnostic dump at the next boundary.
func (m *Monitor) RequestDump() { m.dumpReq.Store(true) }

// RequestStop asks the loop to shut down after the in-flight tick.
func (m *Monitor) RequestStop() { m.stopReq.Store(true) }

// Run polls until a shutdown signal or ctx cancellation. SIGUSR1 triggers a
// diagnostic dump; SIGTERM and SIGINT trigger graceful shutdown. Signals
// never touch the registry directly: they set flags consulted at the top of
// the next tick.
func (m *Monitor) Run(ctx context.Context) error {
	sigCh := make(chan os.Signal, 4)
	signal.Notify(sigCh, syscall.SIGUSR1, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info("monitor running", "interval", m.interval, "tracked", m.reg.Len())
	for {
		select {
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGUSR1:
				m.dumpReq.Store(true)
			default:
				m.stopReq.Store(true)
			}
		case <-ctx.Done():
			m.stopReq.Store(true)
		case <-ticker.C:
			if m.stopReq.Load() {
				m.shutdown()
				return nil
			}
			m.Tick()
		}
		// A signal may arrive while no tick is pending; honor shutdown
		// promptly without waiting a full interval.
		if m.stopReq.Load() {
			m.shutdown()
			return nil
		}
	}
}

// Tick runs one full monitoring pass: drain overrides, refresh signals,
// score, enforce, evict under pressure, reap.
func (m *Monitor) Tick() {
	started := m.now()
	m.drainOverrides()
	if m.dumpReq.Swap(false) {
		m.dump(started)
	}

	pressured := m.probe.MemoryPressure()
	metrics.SetMemoryPressure(pressured)

	var focus scoring.Focus
	if fpid := m.probe.FocusedPID(); fpid != 0 {
		focus = scoring.Focus{PID: fpid, ParentPID: m.probe.ParentPID(fpid)}
	}

	records := m.reg.All()
	for _, rec := range records {
		m.probe.Refresh(rec, started)
	}

	for _, rec := range records {
		imp := m.engine.Score(rec, focus, pressured, started)
		rec.ImportanceScore = imp
		target := lifecycle.StateFor(imp)
		from := rec.State
		if err := m.enforcer.Apply(rec, target); err != nil {
			metrics.IncEnforcementFailure("transition")
		}
		if from != target {
			metrics.RecordTransition(from.String(), target.String())
			m.recordEvent(store.Event{
				Type:       store.EventTransition,
				PID:        rec.PID,
				Name:       rec.Name,
				FromState:  from.String(),
				ToState:    target.String(),
				Importance: imp,
				OccurredAt: started,
			})
		}
		m.enforcer.Tune(rec, pressured)
	}

	if pressured {
		for _, pid := range m.sweeper.Sweep(records, started) {
			metrics.IncEviction()
			if rec := m.reg.FindByPID(pid); rec != nil {
				m.recordEvent(store.Event{
					Type:       store.EventEviction,
					PID:        rec.PID,
					Name:       rec.Name,
					FromState:  rec.State.String(),
					Importance: rec.ImportanceScore,
					OccurredAt: started,
				})
			}
		}
	}

	reaped := m.reg.Reap()
	if len(reaped) > 0 {
		metrics.AddReaps(len(reaped))
		pids := make([]int32, 0, len(reaped))
		for _, rec := range reaped {
			pids = append(pids, rec.PID)
			m.logger.Info("reaped process", "pid", rec.PID, "name", rec.Name, "state", rec.State.String())
			m.recordEvent(store.Event{
				Type:       store.EventReap,
				PID:        rec.PID,
				Name:       rec.Name,
				FromState:  rec.State.String(),
				Importance: rec.ImportanceScore,
				OccurredAt: started,
			})
		}
		m.probe.Prune(pids)
	}

	m.publishSnapshot()
	metrics.SetTracked(m.reg.Len())
	metrics.ObserveTick(m.now().Sub(started).Seconds())
}

func (m *Monitor) drainOverrides() {
	for {
		select {
		case ov := <-m.overrides:
			ov.reply <- m.reg.SetRequestedPriority(ov.pid, ov.priority)
		default:
			return
		}
	}
}

func (m *Monitor) dump(now time.Time) {
	records := m.reg.All()
	m.logger.Info("diagnostic dump", "tracked", len(records))
	for _, rec := range records {
		m.logger.Info("tracked process",
			"pid", rec.PID,
			"name", rec.Name,
			"state", rec.State.String(),
			"score", rec.ImportanceScore,
			"last_active", rec.LastActive.Format(time.RFC3339),
		)
	}
}

// shutdown returns every tracked process to the default resource group and
// clears OOM overrides before the loop exits.
func (m *Monitor) shutdown() {
	records := m.reg.All()
	m.logger.Info("shutting down, resetting resource controls", "tracked", len(records))
	for _, rec := range records {
		m.enforcer.Reset(rec)
	}
	if m.st != nil {
		_ = m.st.Close()
	}
}

func (m *Monitor) recordEvent(e store.Event) {
	if m.st == nil {
		return
	}
	if err := m.st.RecordEvent(context.Background(), e); err != nil {
		m.logger.Warn("event store write failed", "type", string(e.Type), "pid", e.PID, "error", err)
	}
}
