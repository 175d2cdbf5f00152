package lifecycle

import (
	"log/slog"

	"github.com/loykin/proclife/internal/registry"
)

// CgroupController is the external control-group surface the enforcer
// drives. Failures are advisory: they are logged and retried naturally on
// the next pass.
type CgroupController interface {
	Assign(group string, pid int32) error
	SetCPUWeight(group string, weight int) error
	SetMemoryLimit(group string, limitBytes int64) error
}

// OOMAdjuster writes per-process OOM kill priorities.
type OOMAdjuster interface {
	SetScore(pid int32, score int) error
}

// Resource tuning thresholds.
const (
	busyCPUPercent = 50.0
	cpuBoostNum    = 12 // x1.2 applied as 12/10 to stay integral
	cpuBoostDen    = 10
	memCeilingNum  = 3 // x1.5 ceiling over average resident usage
	memCeilingDen  = 2
)

// Enforcer applies lifecycle-state directives to the host: control-group
// membership, OOM kill priority, CPU weight and memory ceilings.
type Enforcer struct {
	cg     CgroupController
	oom    OOMAdjuster
	logger *slog.Logger
}

func NewEnforcer(cg CgroupController, oom OOMAdjuster, logger *slog.Logger) *Enforcer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enforcer{cg: cg, oom: oom, logger: logger}
}

// Apply transitions rec to target. It performs no external writes when the
// record is already enforced in that state. The state field is updated even
// when a write fails so the record always reflects intended policy; the
// failed directive is left uncached so the next pass retries it, and the
// failure is returned as a non-fatal warning.
func (e *Enforcer) Apply(rec *registry.Record, target State) error {
	group := CgroupFor(target)
	score := OOMScoreFor(target)
	if rec.State == target && rec.CgroupPath == group && rec.OOMScore == score {
		return nil
	}
	from := rec.State
	rec.State = target

	var firstErr error
	if rec.CgroupPath != group {
		if err := e.cg.Assign(group, rec.PID); err != nil {
			e.logger.Warn("cgroup assignment failed",
				"pid", rec.PID, "name", rec.Name, "cgroup", group, "error", err)
			firstErr = err
		} else {
			rec.CgroupPath = group
		}
	}
	if rec.OOMScore != score {
		if err := e.oom.SetScore(rec.PID, score); err != nil {
			e.logger.Warn("oom score write failed",
				"pid", rec.PID, "name", rec.Name, "score", score, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		} else {
			rec.OOMScore = score
		}
	}
	if from != target {
		e.logger.Debug("state transition",
			"pid", rec.PID, "name", rec.Name, "from", from.String(), "to", target.String())
	}
	return firstErr
}

// Tune recomputes CPU weight and memory ceiling for rec. It runs every pass
// regardless of whether the state changed. Under memory pressure, processes
// in BACKGROUND or less-important states get a ceiling of 1.5x their average
// resident usage; without pressure any previous ceiling is cleared.
func (e *Enforcer) Tune(rec *registry.Record, pressured bool) {
	weight := CPUWeightFor(rec.State)
	if rec.CPUHistory.Average() > busyCPUPercent {
		weight = weight * cpuBoostNum / cpuBoostDen
	}
	if err := e.cg.SetCPUWeight(rec.CgroupPath, weight); err != nil {
		e.logger.Warn("cpu weight write failed",
			"pid", rec.PID, "cgroup", rec.CgroupPath, "weight", weight, "error", err)
	}

	if pressured && rec.State >= StateBackground {
		limit := int64(rec.MemHistory.Average()) * 1024 * memCeilingNum / memCeilingDen
		if limit > 0 && limit != rec.MemLimitBytes {
			if err := e.cg.SetMemoryLimit(rec.CgroupPath, limit); err != nil {
				e.logger.Warn("memory limit write failed",
					"pid", rec.PID, "cgroup", rec.CgroupPath, "limit", limit, "error", err)
			}
			rec.MemLimitBytes = limit
		}
	} else if rec.MemLimitBytes != 0 {
		if err := e.cg.SetMemoryLimit(rec.CgroupPath, 0); err != nil {
			e.logger.Warn("memory limit clear failed",
				"pid", rec.PID, "cgroup", rec.CgroupPath, "error", err)
		}
		rec.MemLimitBytes = 0
	}
}

// Reset returns rec to the default resource group with a neutral OOM score
// and no memory ceiling. Used during shutdown cleanup.
func (e *Enforcer) Reset(rec *registry.Record) {
	if err := e.cg.Assign("", rec.PID); err != nil {
		e.logger.Warn("cgroup reset failed", "pid", rec.PID, "error", err)
	}
	if err := e.oom.SetScore(rec.PID, 0); err != nil {
		e.logger.Warn("oom score reset failed", "pid", rec.PID, "error", err)
	}
	if rec.MemLimitBytes != 0 {
		_ = e.cg.SetMemoryLimit(rec.CgroupPath, 0)
		rec.MemLimitBytes = 0
	}
	rec.CgroupPath = ""
	rec.OOMScore = 0
}
