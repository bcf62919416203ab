package meaning

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceOpenRe     = regexp.MustCompile("^```[a-zA-Z]*")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// parseAnnotation decodes model output into an Annotation, repairing the
// two failure shapes models actually produce: markdown code fences around
// the JSON, and trailing commas inside it. Anything still unparseable
// after both repairs is an invalid-JSON failure; JSON that parses but
// lacks a lyricsMeaning array is a schema violation.
func parseAnnotation(raw string) (*Annotation, error) {
	cleaned := strings.TrimSpace(raw)

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimSpace(fenceOpenRe.ReplaceAllString(cleaned, ""))
		if strings.HasSuffix(cleaned, "```") {
			cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, "```"))
		}
	}

	fields, err := decodeObject(cleaned)
	if err != nil {
		repaired := trailingCommaRe.ReplaceAllString(cleaned, "$1")
		fields, err = decodeObject(repaired)
		if err != nil {
			if json.Valid([]byte(repaired)) {
				return nil, &GenerationError{Kind: KindSchemaViolation, Message: "payload must be a JSON object", Err: err}
			}
			return nil, &GenerationError{Kind: KindInvalidJSON, Message: "model returned invalid JSON", Err: err}
		}
		cleaned = repaired
	}

	rawLines, ok := fields["lyricsMeaning"]
	if !ok {
		return nil, &GenerationError{Kind: KindSchemaViolation, Message: "missing lyricsMeaning"}
	}
	if !isJSONArray(rawLines) {
		return nil, &GenerationError{Kind: KindSchemaViolation, Message: "lyricsMeaning must be an array"}
	}

	var annotation Annotation
	if err := json.Unmarshal([]byte(cleaned), &annotation); err != nil {
		return nil, &GenerationError{Kind: KindSchemaViolation, Message: "payload does not match annotation shape", Err: err}
	}

	return &annotation, nil
}

func decodeObject(s string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "[")
}
