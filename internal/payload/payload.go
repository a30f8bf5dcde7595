// Package payload assembles run-creation request bodies from CI context and
// user-supplied overrides.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dwsmith1983/qatech-run/pkg/types"
)

// ErrMissingApplications is returned when the applications document has no
// top-level "applications" property.
var ErrMissingApplications = errors.New(`applications input must be a JSON object with a top-level "applications" property`)

// Source identifies the commit a run is requested for.
type Source struct {
	Actor      string
	Ref        string
	SHA        string
	Repository string
}

// Selector scopes a run to test plans. Callers set at most one of ShortID
// or ShortIDs; the controller rejects inputs that supply both.
type Selector struct {
	ShortID  string
	ShortIDs []string
}

// ParseTestPlans splits a comma-delimited list of test plan short ids.
// Tokens are trimmed and empty tokens dropped; order and duplicates are kept.
func ParseTestPlans(input string) []string {
	var ids []string
	for _, tok := range strings.Split(input, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			ids = append(ids, tok)
		}
	}
	return ids
}

// ParseApplications decodes an applications override document. Empty input
// yields a nil map.
func ParseApplications(input string) (map[string]types.Application, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}

	var doc struct {
		Applications *map[string]types.Application `json:"applications"`
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(input)))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid applications JSON: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid applications JSON: trailing data after document")
	}
	if doc.Applications == nil {
		return nil, ErrMissingApplications
	}
	return *doc.Applications, nil
}

// Build returns the request body for src. Optional fields are left empty, and
// therefore omitted on the wire, unless they carry a value.
func Build(src Source, sel Selector, apps map[string]types.Application) types.Payload {
	p := types.Payload{
		Trigger:    types.TriggerGitHub,
		Actor:      src.Actor,
		Branch:     src.Ref,
		CommitHash: src.SHA,
		Repository: src.Repository,
	}

	switch {
	case strings.TrimSpace(sel.ShortID) != "":
		p.TestPlanShortID = strings.TrimSpace(sel.ShortID)
	case len(sel.ShortIDs) > 0:
		p.TestPlanShortIDs = append([]string(nil), sel.ShortIDs...)
	}

	if len(apps) > 0 {
		p.Applications = apps
	}
	return p
}
