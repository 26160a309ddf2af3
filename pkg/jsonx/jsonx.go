package jsonx

import (
	"encoding/json"
	"strings"

	"github.com/sweetpotato0/docqa/pkg/errors"
)

// Decode tries to unmarshal the raw model output into T after stripping
// fences. Failures are reported as errors.MalformedOutputError carrying the
// raw output.
func Decode[T any](raw string) (*T, error) {
	clean := Sanitize(raw)
	var out T
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return nil, errors.Malformed("decode JSON", raw, err)
	}
	return &out, nil
}

// Sanitize removes markdown code fences that models wrap around JSON payloads.
func Sanitize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = trimmed[3:]
		trimmed = strings.TrimPrefix(trimmed, "json")
		trimmed = strings.TrimPrefix(trimmed, "JSON")
		if idx := strings.Index(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
	}
	return strings.TrimSpace(trimmed)
}
