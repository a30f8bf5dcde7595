// Package lifecycle implements the invocation state machine and the mapping
// from remote run state to CI outcome.
package lifecycle

import (
	"fmt"

	"github.com/dwsmith1983/qatech-run/pkg/types"
)

// Phase is a step of a single invocation.
type Phase string

// Phase values, in the order an invocation normally walks them.
const (
	PhaseConfiguring    Phase = "CONFIGURING"
	PhaseTriggering     Phase = "TRIGGERING"
	PhaseCreated        Phase = "CREATED"
	PhaseCreationFailed Phase = "CREATION_FAILED"
	PhasePolling        Phase = "POLLING"
	PhaseTerminal       Phase = "TERMINAL"
)

// Transition table: from -> allowed tos
var validTransitions = map[Phase][]Phase{
	PhaseConfiguring:    {PhaseTriggering, PhaseTerminal},
	PhaseTriggering:     {PhaseCreated, PhaseCreationFailed, PhaseTerminal},
	PhaseCreated:        {PhasePolling, PhaseTerminal},
	PhaseCreationFailed: {PhaseTerminal},
	PhasePolling:        {PhaseTerminal},
	PhaseTerminal:       {},
}

// CanTransition checks if moving from one phase to another is valid.
func CanTransition(from, to Phase) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, p := range allowed {
		if p == to {
			return true
		}
	}
	return false
}

// Transition validates a phase change, returning an error if it is invalid.
func Transition(from, to Phase) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}
	return nil
}

// IsTerminal returns true if the remote run state is final.
func IsTerminal(state types.RunState) bool {
	return state == types.RunCompleted || state == types.RunError || state == types.RunCancelled
}

// Outcome is the CI-facing verdict of an invocation. OutcomeCreated marks a
// run that was started but not awaited.
type Outcome string

// Outcome values.
const (
	OutcomePending Outcome = "pending"
	OutcomeCreated Outcome = "created"
	OutcomePassed  Outcome = "passed"
	OutcomeWarning Outcome = "warning"
	OutcomeFailed  Outcome = "failed"
)

// Classify maps a status snapshot to an Outcome. Non-terminal states are
// pending. ERROR and CANCELLED fail regardless of the result field. A
// completed run with an unknown or null result is treated as failed.
func Classify(s types.RunStatus) Outcome {
	if !IsTerminal(s.Status) {
		return OutcomePending
	}
	if s.Status != types.RunCompleted {
		return OutcomeFailed
	}
	switch s.ResultOrEmpty() {
	case types.ResultPassed:
		return OutcomePassed
	case types.ResultSkipped:
		return OutcomeWarning
	default:
		return OutcomeFailed
	}
}
