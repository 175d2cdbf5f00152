package lifecycle

import "testing"

func TestStateFor(t *testing.T) {
	tests := []struct {
		importance float64
		want       State
	}{
		{importance: 20, want: StateCached},
		{importance: 10.01, want: StateCached},
		{importance: 10, want: StateBackground}, // boundary belongs to the lower band
		{importance: 0.5, want: StateBackground},
		{importance: 0, want: StateService},
		{importance: -9.99, want: StateService},
		{importance: -10, want: StateVisible},
		{importance: -14.99, want: StateVisible},
		{importance: -15, want: StateForeground},
		{importance: -20, want: StateForeground},
	}
	for _, tt := range tests {
		if got := StateFor(tt.importance); got != tt.want {
			t.Errorf("StateFor(%v) = %v, want %v", tt.importance, got, tt.want)
		}
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateForeground, "foreground"},
		{StateVisible, "visible"},
		{StateService, "service"},
		{StateBackground, "background"},
		{StateCached, "cached"},
		{State(-1), "unknown"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestOOMScoreFor(t *testing.T) {
	tests := []struct {
		s    State
		want int
	}{
		{StateForeground, -900},
		{StateVisible, -800},
		{StateService, -500},
		{StateBackground, 0},
		{StateCached, 500},
	}
	for _, tt := range tests {
		if got := OOMScoreFor(tt.s); got != tt.want {
			t.Errorf("OOMScoreFor(%v) = %d, want %d", tt.s, got, tt.want)
		}
	}
}

func TestCPUWeightFor(t *testing.T) {
	tests := []struct {
		s    State
		want int
	}{
		{StateForeground, 100},
		{StateVisible, 75},
		{StateService, 50},
		{StateBackground, 25},
		{StateCached, 10},
	}
	for _, tt := range tests {
		if got := CPUWeightFor(tt.s); got != tt.want {
			t.Errorf("CPUWeightFor(%v) = %d, want %d", tt.s, got, tt.want)
		}
	}
}
