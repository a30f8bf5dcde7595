package types

// Environment overrides the target environment of one application.
type Environment struct {
	URL  string `json:"url" yaml:"url"`
	Name string `json:"name" yaml:"name"`
}

// Application carries per-application overrides sent with a run request.
type Application struct {
	Environment Environment `json:"environment" yaml:"environment"`
}

// Payload is the run-creation request body.
type Payload struct {
	Trigger          TriggerSource          `json:"trigger"`
	Actor            string                 `json:"actor"`
	Branch           string                 `json:"branch"`
	CommitHash       string                 `json:"commitHash"`
	Repository       string                 `json:"repository"`
	TestPlanShortID  string                 `json:"testPlanShortId,omitempty"`
	TestPlanShortIDs []string               `json:"testPlanShortIds,omitempty"`
	Applications     map[string]Application `json:"applications,omitempty"`
}

// TestPlan identifies the test plan a run was scoped to.
type TestPlan struct {
	Name    string `json:"name"`
	ShortID string `json:"short_id"`
}

// RunDetails describes a run created by the trigger call.
type RunDetails struct {
	ID        string    `json:"id"`
	ShortID   string    `json:"shortId"`
	URL       string    `json:"url,omitempty"`
	TestCount *int      `json:"testCount,omitempty"`
	TestPlan  *TestPlan `json:"testPlan,omitempty"`
}

// APIResponse is the trigger response. Older API versions answer with a bare
// Success flag, current versions with Run. A response carrying neither means
// the server did not create a run.
type APIResponse struct {
	Success *bool       `json:"success,omitempty"`
	Run     *RunDetails `json:"run,omitempty"`
}

// RunStatus is one snapshot of a run's state as returned by the status endpoint.
type RunStatus struct {
	ID      string     `json:"id"`
	ShortID string     `json:"short_id"`
	Status  RunState   `json:"status"`
	Result  *RunResult `json:"result"`
}

// ResultOrEmpty returns the run result, or "" when the server reported null.
func (s RunStatus) ResultOrEmpty() RunResult {
	if s.Result == nil {
		return ""
	}
	return *s.Result
}
