package lifecycle

import "github.com/loykin/proclife/internal/registry"

// State is a tracked process lifecycle state, ordered most- to least-important.
// The underlying type lives in internal/registry (Record carries a State, and
// this package imports registry for the enforcer); these aliases keep the
// canonical names here.
type State = registry.State

const (
	StateForeground = registry.StateForeground
	StateVisible    = registry.StateVisible
	StateService    = registry.StateService
	StateBackground = registry.StateBackground
	StateCached     = registry.StateCached
)

// Importance thresholds mapping a blended importance value to a state.
// Lower importance means the process matters more.
const (
	cachedAbove     = 10.0
	backgroundAbove = 0.0
	serviceAbove    = -10.0
	visibleAbove    = -15.0
)

// StateFor maps an importance value onto a lifecycle state.
func StateFor(importance float64) State {
	switch {
	case importance > cachedAbove:
		return StateCached
	case importance > backgroundAbove:
		return StateBackground
	case importance > serviceAbove:
		return StateService
	case importance > visibleAbove:
		return StateVisible
	default:
		return StateForeground
	}
}

var oomScores = [...]int{
	StateForeground: -900,
	StateVisible:    -800,
	StateService:    -500,
	StateBackground: 0,
	StateCached:     500,
}

var cpuWeights = [...]int{
	StateForeground: 100,
	StateVisible:    75,
	StateService:    50,
	StateBackground: 25,
	StateCached:     10,
}

// OOMScoreFor returns the oom_score_adj value enforced for a state.
func OOMScoreFor(s State) int { return oomScores[s] }

// CPUWeightFor returns the base cgroup CPU weight for a state.
func CPUWeightFor(s State) int { return cpuWeights[s] }

// CgroupFor returns the control-group name (relative to the cgroup root)
// that processes in state s are assigned to.
func CgroupFor(s State) string { return s.String() }
