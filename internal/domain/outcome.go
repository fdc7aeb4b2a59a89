package domain

// Outcome reports whether a write against an existing record took effect.
// Writes addressed to a missing id are not errors; they return OutcomeNotFound.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeNotFound
)

// String returns the outcome name
func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Applied reports whether the write changed stored state.
func (o Outcome) Applied() bool {
	return o == OutcomeApplied
}
