package lifecycle

import (
	"testing"

	"github.com/dwsmith1983/qatech-run/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		from  Phase
		to    Phase
		valid bool
	}{
		{PhaseConfiguring, PhaseTriggering, true},
		{PhaseConfiguring, PhaseTerminal, true},
		{PhaseConfiguring, PhasePolling, false},
		{PhaseTriggering, PhaseCreated, true},
		{PhaseTriggering, PhaseCreationFailed, true},
		{PhaseTriggering, PhaseTerminal, true},
		{PhaseTriggering, PhasePolling, false},
		{PhaseCreated, PhasePolling, true},
		{PhaseCreated, PhaseTerminal, true},
		{PhaseCreationFailed, PhasePolling, false},
		{PhaseCreationFailed, PhaseTerminal, true},
		{PhasePolling, PhaseTerminal, true},
		{PhasePolling, PhaseTriggering, false},
		{PhaseTerminal, PhaseConfiguring, false},
		{Phase("BOGUS"), PhaseTerminal, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.valid, CanTransition(tt.from, tt.to))
			err := Transition(tt.from, tt.to)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(types.RunCompleted))
	assert.True(t, IsTerminal(types.RunError))
	assert.True(t, IsTerminal(types.RunCancelled))
	assert.False(t, IsTerminal(types.RunInitiated))
	assert.False(t, IsTerminal(types.RunRunning))
	assert.False(t, IsTerminal(types.RunState("")))
}

func result(r types.RunResult) *types.RunResult { return &r }

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		status types.RunStatus
		want   Outcome
	}{
		{"initiated", types.RunStatus{Status: types.RunInitiated}, OutcomePending},
		{"running", types.RunStatus{Status: types.RunRunning}, OutcomePending},
		{"passed", types.RunStatus{Status: types.RunCompleted, Result: result(types.ResultPassed)}, OutcomePassed},
		{"failed", types.RunStatus{Status: types.RunCompleted, Result: result(types.ResultFailed)}, OutcomeFailed},
		{"skipped", types.RunStatus{Status: types.RunCompleted, Result: result(types.ResultSkipped)}, OutcomeWarning},
		{"completed without result", types.RunStatus{Status: types.RunCompleted}, OutcomeFailed},
		{"error", types.RunStatus{Status: types.RunError}, OutcomeFailed},
		{"error with passed result", types.RunStatus{Status: types.RunError, Result: result(types.ResultPassed)}, OutcomeFailed},
		{"cancelled", types.RunStatus{Status: types.RunCancelled}, OutcomeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.status))
		})
	}
}
