package monitor

import "time"

// ProcessStatus is a read-only view of one tracked process for diagnostic
// consumers (HTTP API, CLI).
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

// Snapshot returns the status of all tracked processes as of the last
// completed tick. Safe to call from any goroutine: it reads a published
// copy, never live record fields.
func (m *Monitor) Snapshot() []ProcessStatus {
	v := m.published.Load()
	if v == nil {
		return nil
	}
	return v.([]ProcessStatus)
}

// publishSnapshot rebuilds the read-only status view at the end of a tick.
func (m *Monitor) publishSnapshot() {
	records := m.reg.All()
	out := make([]ProcessStatus, 0, len(records))
	for _, rec := range records {
		out = append(out, ProcessStatus{
			PID:               rec.PID,
			Name:              rec.Name,
			Cmdline:           rec.Cmdline,
			State:             rec.State.String(),
			Importance:        rec.ImportanceScore,
			RequestedPriority: rec.RequestedPriority,
			SystemService:     rec.IsSystemService,
			PlayingAudio:      rec.IsPlayingAudio,
			CgroupPath:        rec.CgroupPath,
			OOMScore:          rec.OOMScore,
			LastActive:        rec.LastActive,
		})
	}
	m.published.Store(out)
}
