// Package types defines the public domain types for QA.tech run triggering.
package types

// TriggerSource identifies the CI system that requested a run.
type TriggerSource string

// TriggerGitHub is the only trigger source this client sends.
const TriggerGitHub TriggerSource = "GITHUB"

// RunState is the server-reported lifecycle state of a run.
type RunState string

// RunState values reported by the run status endpoint.
const (
	RunInitiated RunState = "INITIATED"
	RunRunning   RunState = "RUNNING"
	RunCompleted RunState = "COMPLETED"
	RunError     RunState = "ERROR"
	RunCancelled RunState = "CANCELLED"
)

// RunResult is the verdict of a completed run. Only meaningful when the
// state is RunCompleted.
type RunResult string

// RunResult values reported for completed runs.
const (
	ResultPassed  RunResult = "PASSED"
	ResultFailed  RunResult = "FAILED"
	ResultSkipped RunResult = "SKIPPED"
)
