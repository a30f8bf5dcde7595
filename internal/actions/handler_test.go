package actions

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandler_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, nil))

	logger.Debug("starting", "step", 1)
	logger.Info("QA.tech run success: true")
	logger.Warn("run skipped", "shortId", "abc")
	logger.Error("error during fetch operation", "error", errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"::debug::starting step=1",
		"QA.tech run success: true",
		"::warning::run skipped shortId=abc",
		"::error::error during fetch operation error=boom",
	}, lines)
}

func TestHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, slog.LevelInfo))

	logger.Debug("hidden")
	logger.Info("shown")
	assert.Equal(t, "shown\n", buf.String())
}

func TestHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, nil)).With("invocation", "01J").WithGroup("run")

	logger.Info("polling", "status", "RUNNING", slog.Group("plan", "name", "Smoke tests"))
	assert.Equal(t, "polling invocation=01J run.status=RUNNING run.plan.name=\"Smoke tests\"\n", buf.String())
}

func TestHandler_EscapesAnnotations(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, nil))

	logger.Warn("multi\nline")
	assert.Equal(t, "::warning::multi%0Aline\n", buf.String())
}

func TestHandler_InfoNeverBecomesACommand(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, nil))

	logger.Info("::add-mask::secret")
	logger.Info("first line\n  ::set-output name=x::y")
	logger.Info("QA.tech run abc status: RUNNING")

	assert.Equal(t, "%3A%3Aadd-mask::secret\nfirst line\n  %3A%3Aset-output name=x::y\nQA.tech run abc status: RUNNING\n", buf.String())
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.False(t, strings.HasPrefix(strings.TrimSpace(line), "::"), line)
	}
}
