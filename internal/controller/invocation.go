package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dwsmith1983/qatech-run/internal/config"
	"github.com/dwsmith1983/qatech-run/internal/lifecycle"
	"github.com/dwsmith1983/qatech-run/internal/payload"
	"github.com/dwsmith1983/qatech-run/internal/trigger"
	"github.com/dwsmith1983/qatech-run/pkg/types"
)

// Output names set on the CI host.
const (
	OutputSuccess    = "success"
	OutputRunCreated = "run_created"
	OutputRunShortID = "run_short_id"
	OutputRunURL     = "run_url"
	OutputRunStatus  = "run_status"
	OutputRunResult  = "run_result"
)

// settings are the validated inputs of one invocation.
type settings struct {
	baseURL   string
	projectID string
	token     string
	payload   types.Payload
	blocking  bool
	timeout   time.Duration // zero means no deadline
}

type invocation struct {
	c       *Controller
	logger  *slog.Logger
	span    trace.Span
	phase   lifecycle.Phase
	outcome lifecycle.Outcome
}

func (inv *invocation) transition(to lifecycle.Phase) error {
	if err := lifecycle.Transition(inv.phase, to); err != nil {
		return err
	}
	inv.logger.Debug("phase change", "from", inv.phase, "to", to)
	inv.phase = to
	return nil
}

func (inv *invocation) safeExecute(ctx context.Context, in config.Inputs) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = errUnexpected
		}
	}()
	return inv.execute(ctx, in)
}

func (inv *invocation) execute(ctx context.Context, in config.Inputs) error {
	inv.logger.Debug("Starting the action")

	s, err := inv.configure(in)
	if err != nil {
		return err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := inv.transition(lifecycle.PhaseTriggering); err != nil {
		return err
	}
	if body, err := json.Marshal(s.payload); err == nil {
		inv.logger.Debug("Triggering QA.tech run", "payload", string(body))
	}

	resp, err := inv.c.trigger.TriggerRun(ctx, trigger.RunCreationURL(s.baseURL, s.projectID), s.token, s.payload)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return errors.New("timed out waiting for run to be created")
		}
		return err
	}
	return inv.handleResponse(ctx, s, resp)
}

// configure resolves and validates inputs. Nothing here touches the network.
func (inv *invocation) configure(in config.Inputs) (*settings, error) {
	base := in.APIURL
	if base == "" {
		base = inv.c.opts.DefaultBaseURL
	}
	if !trigger.ValidateURL(base) {
		return nil, &Failure{Message: "Invalid API URL: " + base}
	}

	projectID, err := config.Required(config.InputProjectID, in.ProjectID)
	if err != nil {
		return nil, err
	}
	token, err := config.Required(config.InputAPIToken, in.APIToken)
	if err != nil {
		return nil, err
	}

	if in.TestPlanShortID != "" && in.TestPlanShortIDs != "" {
		return nil, fmt.Errorf("only one of %s and %s may be set", config.InputTestPlanShortID, config.InputTestPlanShortIDs)
	}
	apps, err := payload.ParseApplications(in.Applications)
	if err != nil {
		return nil, err
	}
	blocking, err := config.ParseBool(config.InputBlocking, in.Blocking)
	if err != nil {
		return nil, err
	}
	timeout, err := config.ParseTimeout(in.Timeout)
	if err != nil {
		return nil, err
	}

	sel := payload.Selector{
		ShortID:  in.TestPlanShortID,
		ShortIDs: payload.ParseTestPlans(in.TestPlanShortIDs),
	}
	return &settings{
		baseURL:   base,
		projectID: projectID,
		token:     token,
		payload:   payload.Build(in.Source, sel, apps),
		blocking:  blocking,
		timeout:   timeout,
	}, nil
}

func (inv *invocation) handleResponse(ctx context.Context, s *settings, resp *types.APIResponse) error {
	switch {
	case resp.Success != nil:
		if err := inv.setOutput(OutputSuccess, strconv.FormatBool(*resp.Success)); err != nil {
			return err
		}
		inv.logger.Info(fmt.Sprintf("QA.tech run success: %t", *resp.Success))
		inv.outcome = lifecycle.OutcomeCreated
		return inv.transition(lifecycle.PhaseTerminal)

	case resp.Run != nil:
		if err := inv.transition(lifecycle.PhaseCreated); err != nil {
			return err
		}
		run := *resp.Run
		inv.span.SetAttributes(attribute.String("qatech.run.short_id", run.ShortID))
		if err := inv.recordRun(run); err != nil {
			return err
		}
		if !s.blocking {
			inv.outcome = lifecycle.OutcomeCreated
			return inv.transition(lifecycle.PhaseTerminal)
		}
		if err := inv.transition(lifecycle.PhasePolling); err != nil {
			return err
		}
		return inv.poll(ctx, s, run)

	default:
		if err := inv.transition(lifecycle.PhaseCreationFailed); err != nil {
			return err
		}
		if err := inv.setOutput(OutputRunCreated, "false"); err != nil {
			return err
		}
		return &Failure{Message: "No run details returned from API"}
	}
}

func (inv *invocation) recordRun(run types.RunDetails) error {
	if err := inv.setOutput(OutputRunCreated, "true"); err != nil {
		return err
	}
	if err := inv.setOutput(OutputRunShortID, run.ShortID); err != nil {
		return err
	}
	if run.URL != "" {
		if err := inv.setOutput(OutputRunURL, run.URL); err != nil {
			return err
		}
	}

	attrs := []any{"shortId", run.ShortID}
	if run.URL != "" {
		attrs = append(attrs, "url", run.URL)
	}
	if run.TestCount != nil {
		attrs = append(attrs, "testCount", *run.TestCount)
	}
	if run.TestPlan != nil {
		attrs = append(attrs, "testPlan", run.TestPlan.Name)
	}
	inv.logger.Info(fmt.Sprintf("QA.tech run started with ID: %s, Short ID: %s", run.ID, run.ShortID), attrs...)
	return nil
}

func (inv *invocation) setOutput(name, value string) error {
	if err := inv.c.reporter.SetOutput(name, value); err != nil {
		return fmt.Errorf("setting output %s: %w", name, err)
	}
	return nil
}
