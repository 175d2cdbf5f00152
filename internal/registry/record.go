package registry

import (
	"time"
)

// Record tracks one live process. Identity fields (PID, Name, Cmdline) are
// immutable after creation; the rest is refreshed every monitoring pass.
type Record struct {
	PID     int32
	Name    string
	Cmdline string

	State State

	// Rolling resource history with independent cursors.
	CPUHistory FloatRing
	MemHistory UintRing // resident memory in KB

	// Last observed activity per signal source.
	LastNetworkActivity time.Time
	LastDiskActivity    time.Time
	LastGPUActivity     time.Time

	ImportanceScore   float64
	RequestedPriority int // manual override in [-20,20]; 0 means none

	IsSystemService bool
	IsPlayingAudio  bool

	LastActive     time.Time
	LastForeground time.Time

	// Cache of the last enforced directives; the kernel is the source of truth.
	CgroupPath    string
	OOMScore      int
	MemLimitBytes int64 // 0 means no ceiling applied

	ParentPID int32
	launched  bool
}

// Idle returns how long the process has been without observed activity.
func (r *Record) Idle(now time.Time) time.Duration {
	return now.Sub(r.LastActive)
}

// Launched reports whether this process was spawned by the manager
// (as opposed to discovered via attach).
func (r *Record) Launched() bool { return r.launched }
