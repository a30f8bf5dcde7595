package trigger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dwsmith1983/qatech-run/internal/metrics"
	"github.com/dwsmith1983/qatech-run/pkg/types"
)

// TriggerRun posts payload to the run-creation endpoint at url.
func (c *Client) TriggerRun(ctx context.Context, url, token string, payload types.Payload) (*types.APIResponse, error) {
	ctx, span := c.tracer.Start(ctx, "qatech.TriggerRun")
	defer span.End()
	span.SetAttributes(attribute.String("http.url", url))

	metrics.TriggersTotal.Add(ctx, 1)

	resp, err := c.triggerRun(ctx, url, token, payload)
	if err != nil {
		metrics.TriggersFailed.Add(ctx, 1)
		recordSpanError(span, err)
		c.logger.Error("error during fetch operation", "url", url, "error", err)
		return nil, err
	}
	return resp, nil
}

func (c *Client) triggerRun(ctx context.Context, url, token string, payload types.Payload) (*types.APIResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("qatech trigger: marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("qatech trigger: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	respBody, err := c.do(req, token, "qatech trigger")
	if err != nil {
		return nil, err
	}

	var result types.APIResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("qatech trigger: parsing response: %w", err)
	}
	return &result, nil
}
