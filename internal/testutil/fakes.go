// Package testutil provides shared test doubles for the run controller.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dwsmith1983/qatech-run/pkg/types"
)

// Reporter records everything a CI host would receive.
type Reporter struct {
	mu        sync.Mutex
	outputs   map[string]string
	warnings  []string
	failures  []string
	OutputErr error // returned by every SetOutput call when set
}

// NewReporter creates an empty Reporter.
func NewReporter() *Reporter {
	return &Reporter{outputs: make(map[string]string)}
}

func (r *Reporter) SetOutput(name, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.OutputErr != nil {
		return r.OutputErr
	}
	r.outputs[name] = value
	return nil
}

func (r *Reporter) Warning(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, msg)
}

func (r *Reporter) SetFailed(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, msg)
}

// Output returns a recorded output and whether it was set.
func (r *Reporter) Output(name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.outputs[name]
	return v, ok
}

// Outputs returns a copy of all recorded outputs.
func (r *Reporter) Outputs() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.outputs))
	for k, v := range r.outputs {
		out[k] = v
	}
	return out
}

func (r *Reporter) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.warnings...)
}

func (r *Reporter) Failures() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.failures...)
}

// Failed reports whether SetFailed was called.
func (r *Reporter) Failed() bool {
	return len(r.Failures()) > 0
}

// TriggerCall captures the arguments of one TriggerRun call.
type TriggerCall struct {
	URL     string
	Token   string
	Payload types.Payload
}

// StubTrigger returns a canned response. PanicValue, when non-nil, is
// raised instead of returning. Hang makes the call block until ctx is done,
// like a server that never answers.
type StubTrigger struct {
	mu         sync.Mutex
	Response   *types.APIResponse
	Err        error
	PanicValue interface{}
	Hang       bool
	calls      []TriggerCall
}

func (s *StubTrigger) TriggerRun(ctx context.Context, url, token string, payload types.Payload) (*types.APIResponse, error) {
	s.mu.Lock()
	s.calls = append(s.calls, TriggerCall{URL: url, Token: token, Payload: payload})
	s.mu.Unlock()
	if s.PanicValue != nil {
		panic(s.PanicValue)
	}
	if s.Hang {
		<-ctx.Done()
		return nil, fmt.Errorf("qatech trigger: request failed: %w", ctx.Err())
	}
	return s.Response, s.Err
}

func (s *StubTrigger) Calls() []TriggerCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]TriggerCall(nil), s.calls...)
}

// StatusStep is one scripted FetchStatus answer.
type StatusStep struct {
	Status *types.RunStatus
	Err    error
}

// StubStatus answers FetchStatus from a script. Once the script is used up
// the last step repeats.
type StubStatus struct {
	mu    sync.Mutex
	Steps []StatusStep
	calls []string
}

// NewStubStatus scripts a sequence of successful snapshots.
func NewStubStatus(statuses ...types.RunStatus) *StubStatus {
	s := &StubStatus{}
	for i := range statuses {
		st := statuses[i]
		s.Steps = append(s.Steps, StatusStep{Status: &st})
	}
	return s
}

func (s *StubStatus) FetchStatus(_ context.Context, base, projectID, shortID, token string) (*types.RunStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, fmt.Sprintf("%s|%s|%s|%s", base, projectID, shortID, token))
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("stub status: no steps scripted")
	}
	i := len(s.calls) - 1
	if i >= len(s.Steps) {
		i = len(s.Steps) - 1
	}
	step := s.Steps[i]
	if step.Err != nil {
		return nil, step.Err
	}
	st := *step.Status
	return &st, nil
}

// Calls returns "base|project|shortId|token" for each call.
func (s *StubStatus) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Sleeper records requested sleeps without blocking. When Cancel is set it
// is invoked on the Nth sleep (1-based, CancelAt) to simulate an external
// cancellation.
type Sleeper struct {
	mu       sync.Mutex
	slept    []time.Duration
	Cancel   context.CancelFunc
	CancelAt int
}

func (s *Sleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.slept = append(s.slept, d)
	n := len(s.slept)
	s.mu.Unlock()
	if s.Cancel != nil && n >= s.CancelAt {
		s.Cancel()
	}
	return ctx.Err()
}

func (s *Sleeper) Slept() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.slept...)
}

// Status builds a RunStatus snapshot; an empty result means null.
func Status(shortID string, state types.RunState, result types.RunResult) types.RunStatus {
	st := types.RunStatus{ID: "id-" + shortID, ShortID: shortID, Status: state}
	if result != "" {
		st.Result = &result
	}
	return st
}

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }
