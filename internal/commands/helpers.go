// Package commands implements the CLI subcommands for the qatech-run binary.
package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/dwsmith1983/qatech-run/internal/actions"
	"github.com/dwsmith1983/qatech-run/internal/trigger"
)

// Version is stamped at build time.
var Version = "dev"

// ExitError carries a process exit code out of a command without printing
// anything further; the reason was already reported.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// env is the process environment a command runs against.
type env struct {
	out    io.Writer
	getenv func(string) string
}

func (e env) logger() *slog.Logger {
	var level slog.Leveler = slog.LevelInfo
	if e.getenv("RUNNER_DEBUG") == "1" || e.getenv("ACTIONS_STEP_DEBUG") == "true" {
		level = slog.LevelDebug
	}
	return slog.New(actions.NewHandler(e.out, level))
}

func newClient(logger *slog.Logger) *trigger.Client {
	return trigger.NewClient(
		trigger.WithLogger(logger),
		trigger.WithUserAgent("qatech-run/"+Version),
	)
}
