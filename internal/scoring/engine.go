package scoring

import (
	"time"

	"github.com/loykin/proclife/internal/registry"
)

// Signal contribution weights. Each term is additive and applies only while
// its condition holds.
const (
	focusedBoost = 100.0
	relatedBoost = 90.0
	serviceBoost = 50.0
	audioBoost   = 80.0
	gpuBoost     = 40.0
	networkBoost = 20.0
	idleBoost    = 30.0
	recentFg     = 25.0

	gpuWindow     = 5 * time.Second
	networkWindow = 10 * time.Second
	idleWindow    = 30 * time.Second
	fgWindow      = 60 * time.Second

	cpuDivisor = 5.0

	// Heavy residents are penalized while the host is short on memory.
	pressurePenalty = 20.0
	heavyMemoryKB   = 500_000

	rawDivisor = 150.0
)

// Focus identifies the process currently holding user focus and its parent.
type Focus struct {
	PID       int32
	ParentPID int32
}

// Engine computes per-process importance values each monitoring pass.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Score computes the blended importance for rec in [-20,20]; lower values
// mean more important. It refreshes rec.LastForeground when rec holds focus.
func (e *Engine) Score(rec *registry.Record, focus Focus, pressured bool, now time.Time) float64 {
	raw := e.Raw(rec, focus, pressured, now)
	importance := Normalize(raw)
	return Blend(importance, rec.RequestedPriority)
}

// Raw accumulates the unnormalized signal total.
func (e *Engine) Raw(rec *registry.Record, focus Focus, pressured bool, now time.Time) float64 {
	var raw float64

	if focus.PID != 0 && rec.PID == focus.PID {
		raw += focusedBoost
		rec.LastForeground = now
	} else if focus.PID != 0 && (rec.PID == focus.ParentPID || rec.ParentPID == focus.PID) {
		raw += relatedBoost
	}
	if rec.IsSystemService {
		raw += serviceBoost
	}
	if rec.IsPlayingAudio {
		raw += audioBoost
	}
	if within(rec.LastGPUActivity, now, gpuWindow) {
		raw += gpuBoost
	}
	if within(rec.LastNetworkActivity, now, networkWindow) {
		raw += networkBoost
	}
	if idle := rec.Idle(now); idle < idleWindow {
		raw += idleBoost * (1 - idle.Seconds()/idleWindow.Seconds())
	}
	if !rec.LastForeground.IsZero() {
		if since := now.Sub(rec.LastForeground); since < fgWindow {
			raw += recentFg * (1 - since.Seconds()/fgWindow.Seconds())
		}
	}
	raw += rec.CPUHistory.Average() / cpuDivisor
	if pressured && rec.MemHistory.Average() > heavyMemoryKB {
		raw -= pressurePenalty
	}
	return raw
}

// Normalize maps a raw signal total onto the inverted importance range:
// a maximal raw score yields -20 (most important), zero yields +20.
func Normalize(raw float64) float64 {
	n := raw / rawDivisor
	if n > 1 {
		n = 1
	}
	if n < 0 {
		n = 0
	}
	return 20 - 40*n
}

// Blend folds a manual priority override into the computed importance.
// The override carries double weight but never fully replaces the signal.
func Blend(importance float64, requested int) float64 {
	if requested == 0 {
		return importance
	}
	return (importance + 2*float64(requested)) / 3
}

func within(t, now time.Time, window time.Duration) bool {
	return !t.IsZero() && now.Sub(t) <= window
}
