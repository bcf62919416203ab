package lyrics

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Already clean",
			input:    "line one\nline two",
			expected: "line one\nline two",
		},
		{
			name:     "CRLF line endings",
			input:    "line one\r\nline two",
			expected: "line one\nline two",
		},
		{
			name:     "Bare CR line endings",
			input:    "line one\rline two",
			expected: "line one\nline two",
		},
		{
			name:     "Excess blank lines collapsed",
			input:    "verse one\n\n\n\n\nverse two",
			expected: "verse one\n\nverse two",
		},
		{
			name:     "Single blank line preserved",
			input:    "verse one\n\nverse two",
			expected: "verse one\n\nverse two",
		},
		{
			name:     "Surrounding whitespace trimmed",
			input:    "  \n\nhello world\n\n  ",
			expected: "hello world",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	input := "verse one\r\n\r\n\r\n\r\nverse two\r\n  "

	once, err := Normalize(input)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	twice, err := Normalize(once)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if once != twice {
		t.Errorf("Expected idempotent normalization, got %q then %q", once, twice)
	}
}

func TestNormalize_RejectsEmpty(t *testing.T) {
	inputs := []string{"", "   ", "\n\n\n", "\r\n \r\n"}

	for _, input := range inputs {
		_, err := Normalize(input)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Expected ValidationError for %q, got %v", input, err)
		}
	}
}

func TestNormalize_RejectsOversized(t *testing.T) {
	input := strings.Repeat("a very long line of lyrics text\n", 1000) // ~32k chars

	_, err := Normalize(input)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError for oversized input, got %v", err)
	}
	if !strings.Contains(verr.Reason, "too long") {
		t.Errorf("Expected 'too long' reason, got %q", verr.Reason)
	}
}

func TestNormalize_AtLimit(t *testing.T) {
	input := strings.Repeat("a", maxLyricsChars)

	got, err := Normalize(input)
	if err != nil {
		t.Fatalf("Expected input at the limit to pass, got %v", err)
	}
	if len(got) != maxLyricsChars {
		t.Errorf("Expected %d chars, got %d", maxLyricsChars, len(got))
	}
}

func TestNormalize_LimitCountsCharactersNotBytes(t *testing.T) {
	// 15,000 characters but 30,000 bytes: must pass.
	input := strings.Repeat("é", 15000)

	got, err := Normalize(input)
	if err != nil {
		t.Fatalf("Expected multi-byte input under the limit to pass, got %v", err)
	}
	if got != input {
		t.Error("Expected input returned unchanged")
	}

	// One character over the limit must still be rejected.
	_, err = Normalize(strings.Repeat("é", maxLyricsChars+1))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError over the limit, got %v", err)
	}
}
