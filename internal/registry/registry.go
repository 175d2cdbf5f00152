package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

)

// DefaultMaxProcesses bounds the number of tracked processes.
const DefaultMaxProcesses = 128

var (
	ErrCapacity      = errors.New("registry at capacity")
	ErrNotFound      = errors.New("process not tracked")
	ErrPriorityRange = errors.New("requested priority out of range [-20,20]")
	ErrUnknownGroup  = errors.New("unknown launch group (use foreground or background)")
)

// Spawner creates a new OS process from an argument vector and returns its pid.
type Spawner interface {
	Spawn(argv []string) (int32, error)
}

// Prober answers liveness and identity questions about host processes.
// Implementations must be fail-soft: a vanished pid yields zero values.
type Prober interface {
	Alive(pid int32) bool
	Identity(pid int32) (name, cmdline string)
	ListPIDs() []int32
}

// Registry owns the set of tracked process records. All mutation happens on
// the monitoring loop; the lock exists so status snapshots can be taken from
// other goroutines (HTTP handlers, diagnostic dumps).
type Registry struct {
	mu      sync.RWMutex
	records map[int32]*Record
	max     int

	spawner Spawner
	prober  Prober
	logger  *slog.Logger
}

func New(spawner Spawner, prober Prober, maxProcs int, logger *slog.Logger) *Registry {
	if maxProcs <= 0 {
		maxProcs = DefaultMaxProcesses
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		records: make(map[int32]*Record),
		max:     maxProcs,
		spawner: spawner,
		prober:  prober,
		logger:  logger,
	}
}

// AttachExisting enumerates live host processes and creates a BACKGROUND
// record for each one not already tracked, the manager's own process
// included. Hitting the capacity bound leaves the remainder untracked and
// logs a warning.
func (g *Registry) AttachExisting(now time.Time) int {
	pids := g.prober.ListPIDs()
	attached := 0
	skipped := 0
	g.mu.Lock()
	for _, pid := range pids {
		if _, ok := g.records[pid]; ok {
			continue
		}
		name, cmdline := g.prober.Identity(pid)
		if name == "" {
			// kernel threads and vanished pids
			continue
		}
		if len(g.records) >= g.max {
			skipped++
			continue
		}
		g.records[pid] = newRecord(pid, name, cmdline, StateBackground, false, now)
		attached++
	}
	g.mu.Unlock()
	if skipped > 0 {
		g.logger.Warn("registry capacity reached during attach",
			"max", g.max, "untracked", skipped)
	}
	return attached
}

// Launch validates the group, spawns the command, and tracks the new process.
// The group is checked before anything is spawned; a spawn failure leaves the
// registry unmodified.
func (g *Registry) Launch(group string, argv []string, now time.Time) (*Record, error) {
	var initial State
	switch group {
	case "foreground":
		initial = StateForeground
	case "background":
		initial = StateBackground
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, group)
	}
	if len(argv) == 0 {
		return nil, errors.New("launch requires a command")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.records) >= g.max {
		return nil, ErrCapacity
	}
	pid, err := g.spawner.Spawn(argv)
	if err != nil {
		return nil, fmt.Errorf("spawn %s: %w", argv[0], err)
	}
	name, cmdline := g.prober.Identity(pid)
	if name == "" {
		name = argv[0]
	}
	rec := newRecord(pid, name, cmdline, initial, true, now)
	g.records[pid] = rec
	g.logger.Info("launched process", "pid", pid, "command", argv[0], "group", group)
	return rec, nil
}

// Reap removes records whose processes have exited or vanished and returns
// them. The scan completes before any removal so remaining records are
// neither skipped nor visited twice.
func (g *Registry) Reap() []*Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	var dead []*Record
	for pid, rec := range g.records {
		if !g.prober.Alive(pid) {
			dead = append(dead, rec)
		}
	}
	for _, rec := range dead {
		delete(g.records, rec.PID)
	}
	return dead
}

// FindByPID returns the record for pid, or nil.
func (g *Registry) FindByPID(pid int32) *Record {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.records[pid]
}

// All returns the tracked records ordered by pid.
func (g *Registry) All() []*Record {
	g.mu.RLock()
	out := make([]*Record, 0, len(g.records))
	for _, rec := range g.records {
		out = append(out, rec)
	}
	g.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}

// Len returns the number of tracked records.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.records)
}

// SetRequestedPriority applies a manual priority override. Values outside
// [-20,20] and unknown pids are rejected without mutation; 0 clears the
// override.
func (g *Registry) SetRequestedPriority(pid int32, priority int) error {
	if priority < -20 || priority > 20 {
		return fmt.Errorf("%w: %d", ErrPriorityRange, priority)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	rec, ok := g.records[pid]
	if !ok {
		return fmt.Errorf("%w: pid %d", ErrNotFound, pid)
	}
	rec.RequestedPriority = priority
	return nil
}

func newRecord(pid int32, name, cmdline string, initial State, launched bool, now time.Time) *Record {
	return &Record{
		PID:        pid,
		Name:       name,
		Cmdline:    cmdline,
		State:      initial,
		LastActive: now,
		launched:   launched,
	}
}
