package meaning

import (
	"errors"
	"fmt"
)

// Line types in an annotation. Lyric lines carry the original text,
// Meaning lines explain the lyric directly above them, and Stanza lines
// summarize the preceding group of pairs.
const (
	LineTypeLyric   = "Lyric"
	LineTypeMeaning = "Meaning"
	LineTypeStanza  = "Stanza"
)

// AnnotationLine is one entry in the line-by-line annotation. Field names
// are capitalized on the wire to match the established payload shape.
type AnnotationLine struct {
	LineNo int    `json:"LineNo"`
	Line   string `json:"Line"`
	Type   string `json:"Type"`
}

// Annotation is the full annotated-lyrics payload
type Annotation struct {
	SongID *int64           `json:"songId"`
	Title  string           `json:"title,omitempty"`
	Artist string           `json:"artist,omitempty"`
	Lyrics string           `json:"lyrics,omitempty"`
	Lines  []AnnotationLine `json:"lyricsMeaning"`
}

// ErrNoInput is returned when a request provides neither lyrics nor a
// song name to retrieve them with
var ErrNoInput = errors.New("meaning: provide either lyrics or song_name")

// Generation error kinds
type ErrorKind string

const (
	KindTransport       ErrorKind = "transport"
	KindRateLimited     ErrorKind = "rate_limited"
	KindEmptyResponse   ErrorKind = "empty_response"
	KindInvalidJSON     ErrorKind = "invalid_json"
	KindSchemaViolation ErrorKind = "schema_violation"
)

// GenerationError classifies a failed model invocation. The kind is set
// where the failure is observed, at the API call boundary, not derived
// later from error text.
type GenerationError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed (%s): %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("generation failed (%s): %s", e.Kind, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err is a rate-limited generation failure
func IsRateLimited(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr) && genErr.Kind == KindRateLimited
}
