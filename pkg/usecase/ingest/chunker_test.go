package ingest_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/hfguide/hfguide/pkg/usecase/ingest"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple sentences",
			input:    "Diuretics relieve congestion. Beta blockers reduce mortality.",
			expected: []string{"Diuretics relieve congestion.", "Beta blockers reduce mortality."},
		},
		{
			name:     "abbreviation does not split",
			input:    "Start low dose, e.g. 1.25 mg daily. Titrate every two weeks.",
			expected: []string{"Start low dose, e.g. 1.25 mg daily.", "Titrate every two weeks."},
		},
		{
			name:     "decimal number does not split",
			input:    "Target dose is 2.5 mg twice daily in most patients.",
			expected: []string{"Target dose is 2.5 mg twice daily in most patients."},
		},
		{
			name:     "question and exclamation",
			input:    "Is the patient congested? Check daily weight!",
			expected: []string{"Is the patient congested?", "Check daily weight!"},
		},
		{
			name:     "figure reference does not split",
			input:    "See Fig. 3 for the titration schedule. Continue monitoring.",
			expected: []string{"See Fig. 3 for the titration schedule.", "Continue monitoring."},
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Equal(t, ingest.SplitSentences(tt.input), tt.expected)
		})
	}
}

func TestChunkerBudget(t *testing.T) {
	c := ingest.NewChunker(50)

	text := "First sentence here. Second sentence here. Third sentence is a bit longer than the rest."
	chunks := c.Split(text)

	gt.A(t, chunks).Longer(1)
	for _, chunk := range chunks {
		// A chunk may exceed the budget only when it is a single sentence.
		if len(chunk) > 50 {
			gt.Equal(t, len(ingest.SplitSentences(chunk)), 1)
		}
	}
}

func TestChunkerOversizedSentence(t *testing.T) {
	c := ingest.NewChunker(20)

	long := "This single sentence is far longer than the configured chunk budget allows."
	chunks := c.Split(long)

	gt.A(t, chunks).Length(1)
	gt.Equal(t, chunks[0], long)
}

func TestChunkerLossless(t *testing.T) {
	c := ingest.NewChunker(80)

	text := "Assess volume status at every visit. Adjust loop diuretics to the lowest effective dose. " +
		"Measure electrolytes within one week of any change. Refer for advanced therapy evaluation when symptoms persist."

	chunks := c.Split(text)
	gt.Equal(t, strings.Join(chunks, " "), text)
}

func TestChunkerEmptyInput(t *testing.T) {
	c := ingest.NewChunker(100)
	gt.A(t, c.Split("")).Length(0)
	gt.A(t, c.Split("   \n\t ")).Length(0)
}
