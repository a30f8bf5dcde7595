package commands

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dwsmith1983/qatech-run/internal/actions"
	"github.com/dwsmith1983/qatech-run/internal/config"
	"github.com/dwsmith1983/qatech-run/internal/controller"
	"github.com/dwsmith1983/qatech-run/internal/telemetry"
)

// NewRunCmd creates the run command, the action entrypoint.
func NewRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Trigger a QA.tech run and report the outcome to GitHub Actions",
		Long: `Reads the action inputs from INPUT_* variables (optionally defaulted from a
YAML file), starts a QA.tech test run for the current commit and, when the
blocking input is true, waits for the run to finish.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := env{out: cmd.OutOrStdout(), getenv: os.Getenv}
			if code := runAction(cmd.Context(), e, configPath); code != 0 {
				return &ExitError{Code: code}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML file with default input values")
	return cmd
}

func runAction(ctx context.Context, e env, configPath string) int {
	host := actions.NewHost(e.out, e.getenv)
	logger := e.logger()

	shutdown, err := telemetry.Setup(ctx, e.getenv, "qatech-run", Version)
	if err != nil {
		logger.Warn("telemetry disabled", "error", err)
		shutdown = func(context.Context) error { return nil }
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	in, err := config.Load(configPath, host)
	if err != nil {
		host.SetFailed("Action failed: " + err.Error())
		return host.ExitCode()
	}

	client := newClient(logger)
	ctrl := controller.New(client, client, host, controller.WithLogger(logger))
	ctrl.Run(ctx, *in)
	return host.ExitCode()
}
