package trigger

import (
	"net/url"
	"strings"
)

// DefaultBaseURL is the public QA.tech API endpoint.
const DefaultBaseURL = "https://app.qa.tech"

// ValidateURL reports whether candidate is an absolute URL with a host. This
// is stricter than generic URL parsing: host-less absolute URLs such as
// "mailto:a@b" or "file:///x" parse fine but are rejected here.
func ValidateURL(candidate string) bool {
	u, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	return u.IsAbs() && u.Host != ""
}

// RunCreationURL returns the endpoint that creates runs for a project.
func RunCreationURL(base, projectID string) string {
	return strings.TrimRight(base, "/") + "/api/projects/" + url.PathEscape(projectID) + "/runs"
}

// StatusURL returns the endpoint that reports the status of one run.
func StatusURL(base, projectID, shortID string) string {
	return RunCreationURL(base, projectID) + "/" + url.PathEscape(shortID)
}
