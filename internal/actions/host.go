// Package actions adapts the GitHub Actions runner: inputs, outputs,
// annotations, commit context and the failure marker.
package actions

import (
	"fmt"
	"io"
	"os"

	"github.com/sethvargo/go-githubactions"
)

// Host is the GitHub Actions side of an invocation.
type Host struct {
	action *githubactions.Action
	getenv func(string) string
	failed bool
}

// NewHost creates a Host writing workflow commands to out and reading its
// environment through getenv (os.Getenv when nil).
func NewHost(out io.Writer, getenv func(string) string) *Host {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &Host{
		action: githubactions.New(
			githubactions.WithWriter(out),
			githubactions.WithGetenv(getenv),
		),
		getenv: getenv,
	}
}

// Input returns the trimmed value of a workflow input.
func (h *Host) Input(name string) string {
	return h.action.GetInput(name)
}

// Context returns the workflow run context (actor, ref, sha, repository).
func (h *Host) Context() (*githubactions.GitHubContext, error) {
	return h.action.Context()
}

// SetOutput records a step output. The runner's GITHUB_OUTPUT file is used
// when present; without it the set-output command is emitted instead. A
// GITHUB_OUTPUT path that does not exist is an error.
func (h *Host) SetOutput(name, value string) error {
	if path := h.getenv("GITHUB_OUTPUT"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("opening GITHUB_OUTPUT: %w", err)
		}
	}
	h.action.SetOutput(name, value)
	return nil
}

// Warning emits a warning annotation.
func (h *Host) Warning(msg string) {
	h.action.Warningf("%s", msg)
}

// SetFailed emits an error annotation and marks the step as failed.
func (h *Host) SetFailed(msg string) {
	h.failed = true
	h.action.Errorf("%s", msg)
}

// Failed reports whether SetFailed was called.
func (h *Host) Failed() bool { return h.failed }

// ExitCode is the process exit status matching the failure marker.
func (h *Host) ExitCode() int {
	if h.failed {
		return 1
	}
	return 0
}
