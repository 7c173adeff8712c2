package foodlog

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseInFlight
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseInFlight:
		return "in_flight"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// OpState is the lifecycle of one mutating or fetching operation. Err is set only in
// PhaseFailed.
type OpState struct {
	Phase Phase
	Err   error
}

func (s OpState) Busy() bool {
	return s.Phase == PhaseInFlight
}
