// Package proclife implements an importance-based process lifecycle manager.
// It continuously scores tracked processes from live signals (CPU, memory,
// focus, audio/GPU/network activity), maps scores onto Android-style
// lifecycle states, and enforces each state through cgroup assignment, OOM
// kill priorities, CPU weights and memory ceilings. Under memory pressure it
// evicts idle cached processes.
package proclife

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/loykin/proclife/internal/cgroup"
	"github.com/loykin/proclife/internal/collector"
	cfg "github.com/loykin/proclife/internal/config"
	"github.com/loykin/proclife/internal/evictor"
	"github.com/loykin/proclife/internal/lifecycle"
	"github.com/loykin/proclife/internal/monitor"
	"github.com/loykin/proclife/internal/oomadj"
	"github.com/loykin/proclife/internal/registry"
	"github.com/loykin/proclife/internal/store"
	"github.com/loykin/proclife/internal/store/sqlite"
)

// Re-export core types for external consumers.

type Config = cfg.Config

type Monitor = monitor.Monitor

type ProcessStatus = monitor.ProcessStatus

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config { return cfg.Default() }

// LoadConfig reads a TOML configuration file over the defaults.
func LoadConfig(path string) (Config, error) { return cfg.Load(path) }

// New wires a Monitor from configuration: collector, registry, cgroup and
// OOM enforcement, evictor and the optional event store. The lifecycle
// control groups are created up front; a failure there is non-fatal since
// per-process assignment retries every pass.
func New(c Config, logger *slog.Logger) (*Monitor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	col := collector.New(c.ProcRoot, c.LowMemoryPct, c.ServiceNames)
	reg := registry.New(registry.ExecSpawner{}, col, c.MaxProcesses, logger)

	cg := cgroup.New(c.CgroupRoot)
	for s := lifecycle.StateForeground; s <= lifecycle.StateCached; s++ {
		if err := cg.Ensure(lifecycle.CgroupFor(s)); err != nil {
			logger.Warn("cgroup setup failed", "cgroup", lifecycle.CgroupFor(s), "error", err)
		}
	}
	enf := lifecycle.NewEnforcer(cg, oomadj.New(c.ProcRoot), logger)
	ev := evictor.New(nil, c.EvictIdle, logger)

	var st store.Store
	if c.StorePath != "" {
		db, err := sqlite.New(c.StorePath)
		if err != nil {
			return nil, fmt.Errorf("open event store: %w", err)
		}
		if err := db.EnsureSchema(context.Background()); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("prepare event store: %w", err)
		}
		st = db
	}

	return monitor.New(c.Interval, reg, col, enf, ev, st, logger), nil
}
