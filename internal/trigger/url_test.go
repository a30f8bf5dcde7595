package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://app.qa.tech", true},
		{"https://custom.qa.tech/", true},
		{"http://localhost:8080", true},
		{"invalid-url", false},
		{"", false},
		{"/relative/path", false},
		{"https://", false},
		{"://missing-scheme", false},
		{"http://bad host", false},
		{"mailto:a@b", false},
		{"file:///x", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateURL(tt.in))
		})
	}
}

func TestRunCreationURL(t *testing.T) {
	assert.Equal(t, "https://app.qa.tech/api/projects/test-project/runs", RunCreationURL(DefaultBaseURL, "test-project"))
	assert.Equal(t, "https://custom.qa.tech/api/projects/p1/runs", RunCreationURL("https://custom.qa.tech/", "p1"))
}

func TestStatusURL(t *testing.T) {
	assert.Equal(t, "https://app.qa.tech/api/projects/p1/runs/abc123", StatusURL(DefaultBaseURL, "p1", "abc123"))
}
