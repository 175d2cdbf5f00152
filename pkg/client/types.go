package client

import "time"

// PriorityRequest represents a manual priority override request.
type PriorityRequest struct {
	PID      int32 `json:"pid"`
	Priority int   `json:"priority"`
}

// ProcessStatus represents the status of a single tracked process.
type ProcessStatus struct {
	PID               int32     `json:"pid"`
	Name              string    `json:"name"`
	Cmdline           string    `json:"cmdline"`
	State             string    `json:"state"`
	Importance        float64   `json:"importance"`
	RequestedPriority int       `json:"requested_priority,omitempty"`
	SystemService     bool      `json:"system_service,omitempty"`
	PlayingAudio      bool      `json:"playing_audio,omitempty"`
	CgroupPath        string    `json:"cgroup_path,omitempty"`
	OOMScore          int       `json:"oom_score"`
	LastActive        time.Time `json:"last_active"`
}
