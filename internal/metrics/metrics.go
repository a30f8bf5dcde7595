// Package metrics exposes runtime counters as OpenTelemetry instruments.
// Instruments are bound to the global meter provider, so they record nothing
// until telemetry.Setup installs an exporting provider.
package metrics

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("github.com/dwsmith1983/qatech-run")

var (
	TriggersTotal      = counter("qatech.triggers", "Run-creation requests sent")
	TriggersFailed     = counter("qatech.triggers.failed", "Run-creation requests that failed")
	StatusChecksTotal  = counter("qatech.status_checks", "Run status requests sent")
	StatusChecksFailed = counter("qatech.status_checks.failed", "Run status requests that failed")
	RunsFinished       = counter("qatech.runs.finished", "Invocations that reached a terminal outcome")
)

// OutcomeAttr tags RunsFinished with the CI outcome.
func OutcomeAttr(outcome string) metric.AddOption {
	return metric.WithAttributes(attribute.String("outcome", outcome))
}

func counter(name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		otel.Handle(err)
	}
	return c
}
