package ingest_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/hfguide/hfguide/pkg/usecase/ingest"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "collapses whitespace",
			input:    "multiple   spaces\n\tand  lines",
			expected: "multiple spaces and lines",
		},
		{
			name:     "strips urls",
			input:    "see https://example.org/guideline for details",
			expected: "see for details",
		},
		{
			name:     "trims",
			input:    "  padded  ",
			expected: "padded",
		},
		{
			name:     "empty",
			input:    " \n ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Equal(t, ingest.CleanText(tt.input), tt.expected)
		})
	}
}
