package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dwsmith1983/qatech-run/internal/commands"
)

var version = "dev"

func main() {
	commands.Version = version

	root := &cobra.Command{
		Use:   "qatech-run",
		Short: "Trigger QA.tech test runs from CI and wait for their outcome",
		Long: `qatech-run starts a QA.tech test run for the current commit. In blocking
mode it polls the run until it completes and fails the CI step when the run
fails, errors or is cancelled.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(
		commands.NewRunCmd(),
		commands.NewStatusCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		var exitErr *commands.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
