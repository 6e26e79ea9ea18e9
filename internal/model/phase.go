package model

// Phase is the lifecycle state of one scan run. Transitions only move
// forward; a fresh Analyze call restarts from PhaseIdle.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseRunning   Phase = "running"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// Terminal reports whether the phase is an end state.
func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}
