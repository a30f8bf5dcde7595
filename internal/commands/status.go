package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dwsmith1983/qatech-run/internal/actions"
	"github.com/dwsmith1983/qatech-run/internal/config"
	"github.com/dwsmith1983/qatech-run/internal/lifecycle"
	"github.com/dwsmith1983/qatech-run/internal/trigger"
	"github.com/dwsmith1983/qatech-run/pkg/types"
)

type statusFlags struct {
	configPath string
	projectID  string
	apiToken   string
	apiURL     string
}

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	var f statusFlags

	cmd := &cobra.Command{
		Use:   "status [run-short-id]",
		Short: "Show the current status of a QA.tech run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := env{out: cmd.OutOrStdout(), getenv: os.Getenv}
			return runStatus(cmd.Context(), e, f, args[0])
		},
	}
	cmd.Flags().StringVar(&f.configPath, "config", "", "YAML file with default input values")
	cmd.Flags().StringVar(&f.projectID, "project-id", "", "QA.tech project id")
	cmd.Flags().StringVar(&f.apiToken, "api-token", "", "QA.tech API token (defaults to QATECH_API_TOKEN)")
	cmd.Flags().StringVar(&f.apiURL, "api-url", "", "API base URL override")
	return cmd
}

func runStatus(ctx context.Context, e env, f statusFlags, shortID string) error {
	in, err := config.Load(f.configPath, actions.NewHost(e.out, e.getenv))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if f.projectID != "" {
		in.ProjectID = f.projectID
	}
	if f.apiToken != "" {
		in.APIToken = f.apiToken
	}
	if in.APIToken == "" {
		in.APIToken = e.getenv("QATECH_API_TOKEN")
	}
	if f.apiURL != "" {
		in.APIURL = f.apiURL
	}

	base := in.APIURL
	if base == "" {
		base = trigger.DefaultBaseURL
	}
	if !trigger.ValidateURL(base) {
		return fmt.Errorf("invalid API URL: %s", base)
	}
	projectID, err := config.Required(config.InputProjectID, in.ProjectID)
	if err != nil {
		return err
	}
	token, err := config.Required(config.InputAPIToken, in.APIToken)
	if err != nil {
		return err
	}

	st, err := newClient(e.logger()).FetchStatus(ctx, base, projectID, shortID, token)
	if err != nil {
		return err
	}

	printStatus(e, shortID, *st)
	if lifecycle.Classify(*st) == lifecycle.OutcomeFailed {
		return &ExitError{Code: 1}
	}
	return nil
}

func printStatus(e env, shortID string, st types.RunStatus) {
	result := string(st.ResultOrEmpty())
	if result == "" {
		result = "-"
	}

	paint := color.New(color.FgCyan)
	switch lifecycle.Classify(st) {
	case lifecycle.OutcomePassed:
		paint = color.New(color.FgGreen)
	case lifecycle.OutcomeWarning:
		paint = color.New(color.FgYellow)
	case lifecycle.OutcomeFailed:
		paint = color.New(color.FgRed)
	}

	fmt.Fprintf(e.out, "Run:    %s\n", shortID)
	_, _ = paint.Fprintf(e.out, "Status: %s\n", st.Status)
	_, _ = paint.Fprintf(e.out, "Result: %s\n", result)
}
