// Package controller drives one run invocation: resolve inputs, create the
// run, optionally wait for it to finish, and report the outcome to the CI
// host.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dwsmith1983/qatech-run/internal/config"
	"github.com/dwsmith1983/qatech-run/internal/lifecycle"
	"github.com/dwsmith1983/qatech-run/internal/metrics"
	"github.com/dwsmith1983/qatech-run/internal/trigger"
	"github.com/dwsmith1983/qatech-run/pkg/types"
)

// DefaultPollInterval is the delay between two status checks.
const DefaultPollInterval = 20 * time.Second

// Triggerer creates runs.
type Triggerer interface {
	TriggerRun(ctx context.Context, url, token string, payload types.Payload) (*types.APIResponse, error)
}

// StatusFetcher reads the status of a run.
type StatusFetcher interface {
	FetchStatus(ctx context.Context, base, projectID, shortID, token string) (*types.RunStatus, error)
}

// Reporter is the CI host receiving outputs, warnings and the failure marker.
type Reporter interface {
	SetOutput(name, value string) error
	Warning(msg string)
	SetFailed(msg string)
}

// SleepFunc blocks for d, returning early with ctx.Err() if ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Options are the constants an invocation runs with.
type Options struct {
	DefaultBaseURL string
	PollInterval   time.Duration
}

// DefaultOptions returns the production constants.
func DefaultOptions() Options {
	return Options{
		DefaultBaseURL: trigger.DefaultBaseURL,
		PollInterval:   DefaultPollInterval,
	}
}

// Failure is an outcome failure whose message is reported verbatim. Any
// other error is reported as "Action failed: {message}".
type Failure struct {
	Message string
}

func (f *Failure) Error() string { return f.Message }

var errUnexpected = &Failure{Message: "An unexpected error occurred"}

// Controller runs invocations. It holds no per-invocation state, so one
// Controller may serve several sequential invocations.
type Controller struct {
	trigger  Triggerer
	status   StatusFetcher
	reporter Reporter
	sleep    SleepFunc
	opts     Options
	logger   *slog.Logger
	tracer   trace.Tracer
	newID    func() string
}

// Option configures a Controller.
type Option func(*Controller)

// WithSleep replaces the inter-poll sleep (useful for testing).
func WithSleep(fn SleepFunc) Option {
	return func(c *Controller) { c.sleep = fn }
}

// WithOptions replaces the default constants.
func WithOptions(o Options) Option {
	return func(c *Controller) { c.opts = o }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New creates a Controller.
func New(t Triggerer, s StatusFetcher, r Reporter, opts ...Option) *Controller {
	c := &Controller{
		trigger:  t,
		status:   s,
		reporter: r,
		sleep:    Sleep,
		opts:     DefaultOptions(),
		logger:   slog.Default(),
		tracer:   otel.Tracer("github.com/dwsmith1983/qatech-run/internal/controller"),
		newID:    func() string { return ulid.Make().String() },
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Run executes one invocation with the given inputs. It never returns an
// error or panics: every failure ends up in Reporter.SetFailed.
func (c *Controller) Run(ctx context.Context, in config.Inputs) lifecycle.Outcome {
	ctx, span := c.tracer.Start(ctx, "qatech.Invocation")
	defer span.End()

	inv := &invocation{
		c:      c,
		logger: c.logger.With("invocation", c.newID()),
		phase:  lifecycle.PhaseConfiguring,
		span:   span,
	}

	err := inv.safeExecute(ctx, in)
	if err != nil {
		inv.outcome = lifecycle.OutcomeFailed
		msg := failureMessage(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)
		c.reporter.SetFailed(msg)
	}
	if inv.phase != lifecycle.PhaseTerminal {
		_ = inv.transition(lifecycle.PhaseTerminal)
	}

	span.SetAttributes(attribute.String("qatech.outcome", string(inv.outcome)))
	metrics.RunsFinished.Add(ctx, 1, metrics.OutcomeAttr(string(inv.outcome)))
	return inv.outcome
}

func failureMessage(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Message
	}
	return "Action failed: " + err.Error()
}
