package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/loykin/proclife/internal/registry"
)

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func idleRecord(pid int32, idleFor time.Duration) *registry.Record {
	return &registry.Record{PID: pid, LastActive: epoch.Add(-idleFor)}
}

func TestNormalizeRange(t *testing.T) {
	tests := []struct {
		raw  float64
		want float64
	}{
		{raw: 0, want: 20},
		{raw: 75, want: 0},
		{raw: 150, want: -20},
		{raw: 300, want: -20},   // clamped above
		{raw: -50, want: 20},    // clamped below
		{raw: 37.5, want: 10},
	}
	for _, tt := range tests {
		if got := Normalize(tt.raw); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Normalize(%v) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeAlwaysInBand(t *testing.T) {
	for raw := -500.0; raw <= 500; raw += 7.3 {
		got := Normalize(raw)
		if got < -20 || got > 20 {
			t.Fatalf("Normalize(%v) = %v, outside [-20,20]", raw, got)
		}
	}
}

func TestBlend(t *testing.T) {
	tests := []struct {
		name       string
		importance float64
		requested  int
		want       float64
	}{
		{name: "no override", importance: 12, requested: 0, want: 12},
		{name: "pull toward negative", importance: 15, requested: -15, want: -5},
		{name: "pull toward positive", importance: -18, requested: 18, want: 6},
		{name: "agreement", importance: -20, requested: -20, want: -20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Blend(tt.importance, tt.requested); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Blend(%v,%d) = %v, want %v", tt.importance, tt.requested, got, tt.want)
			}
		})
	}
}

func TestFocusedServiceSaturates(t *testing.T) {
	e := NewEngine()
	rec := idleRecord(42, 0)
	rec.IsSystemService = true

	got := e.Score(rec, Focus{PID: 42}, false, epoch)
	// focused 100 + service 50 + fresh idle 30 + recent fg 25 > 150, so the
	// normalized result pins at the most important end.
	if got != -20 {
		t.Fatalf("Score = %v, want -20", got)
	}
	if !rec.LastForeground.Equal(epoch) {
		t.Fatal("focus did not refresh LastForeground")
	}
}

func TestFullyIdleScoresLeastImportant(t *testing.T) {
	e := NewEngine()
	rec := idleRecord(7, 10*time.Minute)
	if got := e.Score(rec, Focus{}, false, epoch); got != 20 {
		t.Fatalf("Score = %v, want 20", got)
	}
}

func TestRelatedProcessBoost(t *testing.T) {
	e := NewEngine()
	parent := idleRecord(10, time.Hour)
	child := idleRecord(11, time.Hour)
	child.ParentPID = 10

	focus := Focus{PID: 11, ParentPID: 10}
	if raw := e.Raw(parent, focus, false, epoch); raw != 90 {
		t.Fatalf("parent of focused: raw = %v, want 90", raw)
	}
	focus = Focus{PID: 10}
	if raw := e.Raw(child, focus, false, epoch); raw != 90 {
		t.Fatalf("child of focused: raw = %v, want 90", raw)
	}
}

func TestSignalWindows(t *testing.T) {
	e := NewEngine()
	tests := []struct {
		name string
		prep func(rec *registry.Record)
		want float64
	}{
		{
			name: "gpu inside window",
			prep: func(r *registry.Record) { r.LastGPUActivity = epoch.Add(-4 * time.Second) },
			want: 40,
		},
		{
			name: "gpu outside window",
			prep: func(r *registry.Record) { r.LastGPUActivity = epoch.Add(-6 * time.Second) },
			want: 0,
		},
		{
			name: "network inside window",
			prep: func(r *registry.Record) { r.LastNetworkActivity = epoch.Add(-9 * time.Second) },
			want: 20,
		},
		{
			name: "network outside window",
			prep: func(r *registry.Record) { r.LastNetworkActivity = epoch.Add(-11 * time.Second) },
			want: 0,
		},
		{
			name: "audio",
			prep: func(r *registry.Record) { r.IsPlayingAudio = true },
			want: 80,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := idleRecord(1, time.Hour)
			tt.prep(rec)
			if raw := e.Raw(rec, Focus{}, false, epoch); math.Abs(raw-tt.want) > 1e-9 {
				t.Fatalf("raw = %v, want %v", raw, tt.want)
			}
		})
	}
}

func TestIdleDecay(t *testing.T) {
	e := NewEngine()
	tests := []struct {
		idleFor time.Duration
		want    float64
	}{
		{idleFor: 0, want: 30},
		{idleFor: 15 * time.Second, want: 15},
		{idleFor: 30 * time.Second, want: 0},
		{idleFor: time.Minute, want: 0},
	}
	for _, tt := range tests {
		rec := idleRecord(1, tt.idleFor)
		if raw := e.Raw(rec, Focus{}, false, epoch); math.Abs(raw-tt.want) > 1e-9 {
			t.Errorf("idle %v: raw = %v, want %v", tt.idleFor, raw, tt.want)
		}
	}
}

func TestRecentForegroundDecay(t *testing.T) {
	e := NewEngine()
	rec := idleRecord(1, time.Hour)
	rec.LastForeground = epoch.Add(-30 * time.Second)
	if raw := e.Raw(rec, Focus{}, false, epoch); math.Abs(raw-12.5) > 1e-9 {
		t.Fatalf("raw = %v, want 12.5", raw)
	}
	rec.LastForeground = epoch.Add(-2 * time.Minute)
	if raw := e.Raw(rec, Focus{}, false, epoch); raw != 0 {
		t.Fatalf("raw = %v, want 0 past the window", raw)
	}
}

func TestCPUContribution(t *testing.T) {
	e := NewEngine()
	rec := idleRecord(1, time.Hour)
	rec.CPUHistory.Push(50)
	rec.CPUHistory.Push(30)
	// average 40, divided by 5
	if raw := e.Raw(rec, Focus{}, false, epoch); math.Abs(raw-8) > 1e-9 {
		t.Fatalf("raw = %v, want 8", raw)
	}
}

func TestPressurePenaltyNeedsBothConditions(t *testing.T) {
	e := NewEngine()
	heavy := idleRecord(1, time.Hour)
	heavy.MemHistory.Push(600_000)

	if raw := e.Raw(heavy, Focus{}, false, epoch); raw != 0 {
		t.Fatalf("no pressure: raw = %v, want 0", raw)
	}
	if raw := e.Raw(heavy, Focus{}, true, epoch); raw != -20 {
		t.Fatalf("pressured heavy: raw = %v, want -20", raw)
	}

	light := idleRecord(2, time.Hour)
	light.MemHistory.Push(100_000)
	if raw := e.Raw(light, Focus{}, true, epoch); raw != 0 {
		t.Fatalf("pressured light: raw = %v, want 0", raw)
	}
}
