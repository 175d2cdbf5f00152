package registry

// State is a tracked process lifecycle state, ordered most- to least-important.
// It is defined here rather than in internal/lifecycle so Record can carry a
// State without importing lifecycle, which itself imports this package; the
// lifecycle package re-exports these names as aliases.
type State int

const (
	StateForeground State = iota
	StateVisible
	StateService
	StateBackground
	StateCached
)

var stateNames = [...]string{
	StateForeground: "foreground",
	StateVisible:    "visible",
	StateService:    "service",
	StateBackground: "background",
	StateCached:     "cached",
}

func (s State) String() string {
	if s < StateForeground || s > StateCached {
		return "unknown"
	}
	return stateNames[s]
}
