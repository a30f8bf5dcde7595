package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/dwsmith1983/qatech-run/internal/lifecycle"
	"github.com/dwsmith1983/qatech-run/pkg/types"
)

// poll checks the run status until it is terminal. There is no iteration cap:
// the loop ends on a terminal status, an API error, or ctx being done.
func (inv *invocation) poll(ctx context.Context, s *settings, run types.RunDetails) error {
	for {
		st, err := inv.c.status.FetchStatus(ctx, s.baseURL, s.projectID, run.ShortID, s.token)
		if err != nil {
			return inv.interrupted(ctx, run, err)
		}

		result := st.ResultOrEmpty()
		inv.logger.Info(fmt.Sprintf("QA.tech run %s status: %s, result: %s", run.ShortID, st.Status, displayResult(result)))

		outcome := lifecycle.Classify(*st)
		if outcome == lifecycle.OutcomePending {
			if err := inv.c.sleep(ctx, inv.c.opts.PollInterval); err != nil {
				return inv.interrupted(ctx, run, err)
			}
			continue
		}

		if err := inv.transition(lifecycle.PhaseTerminal); err != nil {
			return err
		}
		return inv.finish(run, *st, outcome)
	}
}

func (inv *invocation) finish(run types.RunDetails, st types.RunStatus, outcome lifecycle.Outcome) error {
	inv.outcome = outcome
	if err := inv.setOutput(OutputRunStatus, string(st.Status)); err != nil {
		return err
	}
	if st.Result != nil {
		if err := inv.setOutput(OutputRunResult, string(*st.Result)); err != nil {
			return err
		}
	}

	switch outcome {
	case lifecycle.OutcomePassed:
		inv.logger.Info(fmt.Sprintf("QA.tech run %s passed", run.ShortID))
		return nil
	case lifecycle.OutcomeWarning:
		inv.c.reporter.Warning(fmt.Sprintf("QA.tech run %s was skipped", run.ShortID))
		return nil
	}

	var msg string
	switch {
	case st.Status != types.RunCompleted:
		msg = fmt.Sprintf("QA.tech run %s ended with status %s", run.ShortID, st.Status)
	case st.ResultOrEmpty() == types.ResultFailed:
		msg = fmt.Sprintf("QA.tech run %s failed", run.ShortID)
	default:
		msg = fmt.Sprintf("QA.tech run %s completed with unexpected result %s", run.ShortID, displayResult(st.ResultOrEmpty()))
	}
	if run.URL != "" {
		msg += ". View results: " + run.URL
	}
	return &Failure{Message: msg}
}

// interrupted maps an error that stopped polling. A passed invocation
// deadline is reported as a timeout rather than as the raw context error.
func (inv *invocation) interrupted(ctx context.Context, run types.RunDetails, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("timed out waiting for run %s", run.ShortID)
	}
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return fmt.Errorf("polling run %s: %w", run.ShortID, err)
	}
	return err
}

func displayResult(r types.RunResult) string {
	if r == "" {
		return "null"
	}
	return string(r)
}
