package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv(out *bytes.Buffer, vars map[string]string) env {
	return env{out: out, getenv: func(k string) string { return vars[k] }}
}

func actionVars(t *testing.T, apiURL string) map[string]string {
	t.Helper()
	output := filepath.Join(t.TempDir(), "output")
	require.NoError(t, os.WriteFile(output, nil, 0o644))
	return map[string]string{
		"INPUT_PROJECT_ID":  "test-project",
		"INPUT_API_TOKEN":   "test-token",
		"INPUT_API_URL":     apiURL,
		"GITHUB_ACTOR":      "testUser",
		"GITHUB_REF":        "refs/heads/main",
		"GITHUB_SHA":        "abc123",
		"GITHUB_REPOSITORY": "test-owner/test-repo",
		"GITHUB_OUTPUT":     output,
	}
}

func TestRunAction_NonBlocking(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/projects/test-project/runs", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"run":{"id":"run-1","shortId":"abc"}}`))
	}))
	defer srv.Close()

	vars := actionVars(t, srv.URL)
	var out bytes.Buffer
	code := runAction(context.Background(), testEnv(&out, vars), "")

	assert.Equal(t, 0, code)
	assert.Equal(t, "test-repo", body["repository"])
	assert.Equal(t, "GITHUB", body["trigger"])

	data, err := os.ReadFile(vars["GITHUB_OUTPUT"])
	require.NoError(t, err)
	assert.Contains(t, string(data), "run_created<<")
	assert.Contains(t, string(data), "\nabc\n")
	assert.NotContains(t, out.String(), "::error::")
}

func TestRunAction_BlockingFailedRun(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/projects/test-project/runs", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"run":{"id":"run-1","shortId":"abc","url":"https://app.qa.tech/r/abc"}}`))
	})
	mux.HandleFunc("GET /api/projects/test-project/runs/abc", func(w http.ResponseWriter, r *http.Request) {
		polls.Add(1)
		_, _ = w.Write([]byte(`{"id":"run-1","short_id":"abc","status":"COMPLETED","result":"FAILED"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	vars := actionVars(t, srv.URL)
	vars["INPUT_BLOCKING"] = "true"
	var out bytes.Buffer
	code := runAction(context.Background(), testEnv(&out, vars), "")

	assert.Equal(t, 1, code)
	assert.Equal(t, int32(1), polls.Load())
	assert.Contains(t, out.String(), "::error::QA.tech run abc failed. View results: https://app.qa.tech/r/abc")
}

func TestRunAction_MissingProject(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	vars := actionVars(t, srv.URL)
	delete(vars, "INPUT_PROJECT_ID")
	var out bytes.Buffer
	code := runAction(context.Background(), testEnv(&out, vars), "")

	assert.Equal(t, 1, code)
	assert.Equal(t, int32(0), calls.Load())
	assert.Contains(t, out.String(), "::error::Action failed: Input required and not supplied: project_id")
}

func TestRunAction_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("invalid token"))
	}))
	defer srv.Close()

	var out bytes.Buffer
	code := runAction(context.Background(), testEnv(&out, actionVars(t, srv.URL)), "")

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "::error::error during fetch operation")
	assert.Contains(t, out.String(), "::error::Action failed: HTTP error! status: 401 - invalid token")
}

func TestRunAction_BadConfigFile(t *testing.T) {
	var out bytes.Buffer
	code := runAction(context.Background(), testEnv(&out, actionVars(t, "")), filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "::error::Action failed: reading config")
}

func TestNewRunCmd_ExitError(t *testing.T) {
	cmd := NewRunCmd()
	assert.Equal(t, "run", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("config"))

	err := &ExitError{Code: 1}
	assert.Equal(t, "exit status 1", err.Error())
}
