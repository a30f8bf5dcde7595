// Package config loads invocation inputs from the runner environment and an
// optional YAML defaults file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-githubactions"
	"gopkg.in/yaml.v3"

	"github.com/dwsmith1983/qatech-run/internal/payload"
)

// Input names, as declared in action.yml.
const (
	InputProjectID        = "project_id"
	InputAPIToken         = "api_token"
	InputAPIURL           = "api_url"
	InputTestPlanShortID  = "test_plan_short_id"
	InputTestPlanShortIDs = "test_plan_short_ids"
	InputApplications     = "applications"
	InputBlocking         = "blocking"
	InputTimeout          = "timeout"
)

// Environment is the runner side of an invocation: named inputs (trimmed,
// "" when unset) and the workflow run context.
type Environment interface {
	Input(name string) string
	Context() (*githubactions.GitHubContext, error)
}

// Inputs holds raw, unvalidated input values. Validation happens when the
// controller resolves them.
type Inputs struct {
	ProjectID        string `yaml:"project_id"`
	APIToken         string `yaml:"api_token"`
	APIURL           string `yaml:"api_url"`
	TestPlanShortID  string `yaml:"test_plan_short_id"`
	TestPlanShortIDs string `yaml:"test_plan_short_ids"`
	Applications     string `yaml:"applications"`
	Blocking         string `yaml:"blocking"`
	Timeout          string `yaml:"timeout"`

	Source payload.Source `yaml:"-"`
}

// Load reads defaults from the YAML file at path (skipped when path is
// empty), overlays every non-empty input from src, and attaches the commit
// context of the workflow run.
func Load(path string, src Environment) (*Inputs, error) {
	var in Inputs
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &in); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
		in.trim()
	}

	overlay(&in.ProjectID, src.Input(InputProjectID))
	overlay(&in.APIToken, src.Input(InputAPIToken))
	overlay(&in.APIURL, src.Input(InputAPIURL))
	overlay(&in.TestPlanShortID, src.Input(InputTestPlanShortID))
	overlay(&in.TestPlanShortIDs, src.Input(InputTestPlanShortIDs))
	overlay(&in.Applications, src.Input(InputApplications))
	overlay(&in.Blocking, src.Input(InputBlocking))
	overlay(&in.Timeout, src.Input(InputTimeout))

	gh, err := src.Context()
	if err != nil {
		return nil, fmt.Errorf("reading workflow context: %w", err)
	}
	in.Source = SourceFromContext(gh)
	return &in, nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (in *Inputs) trim() {
	for _, p := range []*string{
		&in.ProjectID, &in.APIToken, &in.APIURL, &in.TestPlanShortID,
		&in.TestPlanShortIDs, &in.Applications, &in.Blocking, &in.Timeout,
	} {
		*p = strings.TrimSpace(*p)
	}
}

// SourceFromContext extracts the commit a run is requested for. The
// repository is the name part of "owner/name".
func SourceFromContext(gh *githubactions.GitHubContext) payload.Source {
	repo := gh.Repository
	if i := strings.LastIndex(repo, "/"); i >= 0 {
		repo = repo[i+1:]
	}
	return payload.Source{
		Actor:      gh.Actor,
		Ref:        gh.Ref,
		SHA:        gh.SHA,
		Repository: repo,
	}
}

// RequiredError reports a required input that was not supplied.
type RequiredError struct {
	Name string
}

func (e *RequiredError) Error() string {
	return "Input required and not supplied: " + e.Name
}

// Required returns value, or a *RequiredError naming the input when empty.
func Required(name, value string) (string, error) {
	if value == "" {
		return "", &RequiredError{Name: name}
	}
	return value, nil
}

// ParseBool parses a boolean input. Empty means false; accepted spellings
// follow the YAML 1.2 core schema.
func ParseBool(name, value string) (bool, error) {
	switch value {
	case "", "false", "False", "FALSE":
		return false, nil
	case "true", "True", "TRUE":
		return true, nil
	default:
		return false, fmt.Errorf("input does not meet YAML 1.2 \"Core Schema\" specification: %s\nSupport boolean input list: `true | True | TRUE | false | False | FALSE`", name)
	}
}

// ParseTimeout parses the timeout input. Empty or zero means no deadline;
// a bare integer is read as seconds.
func ParseTimeout(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		secs, convErr := strconv.Atoi(value)
		if convErr != nil {
			return 0, fmt.Errorf("invalid timeout %q: %w", value, err)
		}
		d = time.Duration(secs) * time.Second
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", value)
	}
	return d, nil
}
