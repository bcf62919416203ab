package lyrics

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxLyricsChars caps lyrics accepted for annotation, counted in
// characters so non-Latin scripts aren't penalized for byte width.
// Anything larger is not a song, it's a scraping accident.
const maxLyricsChars = 20000

var excessNewlinesRe = regexp.MustCompile(`\n{3,}`)

// ValidationError reports lyrics text rejected before any downstream work
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid lyrics: %s", e.Reason)
}

// Normalize canonicalizes lyrics text: line endings become LF, runs of
// three or more newlines collapse to one blank line, and surrounding
// whitespace is trimmed. Empty or oversized results are rejected.
// Normalize is idempotent.
func Normalize(text string) (string, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = excessNewlinesRe.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	if text == "" {
		return "", &ValidationError{Reason: "empty after normalization"}
	}
	if chars := utf8.RuneCountInString(text); chars > maxLyricsChars {
		return "", &ValidationError{Reason: fmt.Sprintf("too long (%d chars, max %d)", chars, maxLyricsChars)}
	}

	return text, nil
}
