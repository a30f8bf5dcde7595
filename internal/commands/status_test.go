package commands

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func statusServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/projects/p1/runs/abc", r.URL.Path)
		assert.Equal(t, "Bearer env-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunStatus_Passed(t *testing.T) {
	srv := statusServer(t, `{"id":"run-1","short_id":"abc","status":"COMPLETED","result":"PASSED"}`)

	var out bytes.Buffer
	e := testEnv(&out, map[string]string{"QATECH_API_TOKEN": "env-token"})
	err := runStatus(context.Background(), e, statusFlags{projectID: "p1", apiURL: srv.URL}, "abc")

	require.NoError(t, err)
	assert.Equal(t, "Run:    abc\nStatus: COMPLETED\nResult: PASSED\n", out.String())
}

func TestRunStatus_RunningHasNoResult(t *testing.T) {
	srv := statusServer(t, `{"id":"run-1","short_id":"abc","status":"RUNNING","result":null}`)

	var out bytes.Buffer
	e := testEnv(&out, map[string]string{"QATECH_API_TOKEN": "env-token", "INPUT_PROJECT_ID": "p1"})
	err := runStatus(context.Background(), e, statusFlags{apiURL: srv.URL}, "abc")

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Result: -")
}

func TestRunStatus_FailedExitsNonZero(t *testing.T) {
	srv := statusServer(t, `{"id":"run-1","short_id":"abc","status":"CANCELLED","result":null}`)

	var out bytes.Buffer
	e := testEnv(&out, nil)
	err := runStatus(context.Background(), e, statusFlags{projectID: "p1", apiToken: "env-token", apiURL: srv.URL}, "abc")

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.Code)
}

func TestRunStatus_MissingToken(t *testing.T) {
	var out bytes.Buffer
	err := runStatus(context.Background(), testEnv(&out, nil), statusFlags{projectID: "p1"}, "abc")
	require.Error(t, err)
	assert.Equal(t, "Input required and not supplied: api_token", err.Error())
}

func TestRunStatus_InvalidURL(t *testing.T) {
	var out bytes.Buffer
	err := runStatus(context.Background(), testEnv(&out, nil), statusFlags{projectID: "p1", apiToken: "t", apiURL: "nope"}, "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid API URL")
}
