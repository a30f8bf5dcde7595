package trigger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dwsmith1983/qatech-run/internal/metrics"
	"github.com/dwsmith1983/qatech-run/pkg/types"
)

// FetchStatus reads the current status of the run identified by shortID.
func (c *Client) FetchStatus(ctx context.Context, base, projectID, shortID, token string) (*types.RunStatus, error) {
	ctx, span := c.tracer.Start(ctx, "qatech.FetchStatus")
	defer span.End()
	span.SetAttributes(attribute.String("qatech.run.short_id", shortID))

	metrics.StatusChecksTotal.Add(ctx, 1)

	status, err := c.fetchStatus(ctx, StatusURL(base, projectID, shortID), token)
	if err != nil {
		metrics.StatusChecksFailed.Add(ctx, 1)
		recordSpanError(span, err)
		c.logger.Error("error getting run status", "shortId", shortID, "error", err)
		return nil, err
	}
	span.SetAttributes(attribute.String("qatech.run.status", string(status.Status)))
	return status, nil
}

func (c *Client) fetchStatus(ctx context.Context, url, token string) (*types.RunStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("qatech status: creating request: %w", err)
	}

	respBody, err := c.do(req, token, "qatech status")
	if err != nil {
		return nil, err
	}

	var result types.RunStatus
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("qatech status: parsing response: %w", err)
	}
	if result.Status == "" {
		return nil, fmt.Errorf("qatech status: response missing status field")
	}
	return &result, nil
}
