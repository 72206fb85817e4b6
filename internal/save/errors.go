package save

// Phase names the stage of a load at which a failure occurred. Callers react
// differently depending on the phase: read and decode failures touch
// nothing, restore failures were rolled back, and a rollback failure means
// the running state can no longer be trusted.
type Phase string

const (
	PhaseRead     Phase = "read"
	PhaseDecode   Phase = "decode"
	PhaseSnapshot Phase = "snapshot"
	PhaseRestore  Phase = "restore"
	PhaseRollback Phase = "rollback"
)

// PhaseError wraps a load failure with the phase that produced it.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return string(e.Phase) + " phase: " + e.Err.Error()
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}
