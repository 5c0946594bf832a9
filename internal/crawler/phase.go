package crawler

// Phase is a Scheduler lifecycle state.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseSeeding
	PhaseRunning
	PhaseDraining
	PhaseSuspended
	PhaseTerminated
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSeeding:
		return "seeding"
	case PhaseRunning:
		return "running"
	case PhaseDraining:
		return "draining"
	case PhaseSuspended:
		return "suspended"
	case PhaseTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
