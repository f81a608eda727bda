package ocr

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeReceiptPayload turns a provider response into the raw field map.
// The response is either a clean JSON object (schema-enforced mode) or
// freeform text with a JSON object embedded somewhere in it, possibly inside
// Markdown fences. The first '{' through the last '}' is treated as the
// payload.
func decodeReceiptPayload(raw string) (map[string]any, error) {
	s := stripFences(raw)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("%w (response: %.120q)", ErrExtractionFailed, raw)
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(s[start:end+1]), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return fields, nil
}

// stripFences removes ```json ... ``` or ``` ... ``` wrappers the model may
// add despite being told not to.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Drop the opening fence line (``` or ```json).
	if idx := strings.Index(s, "\n"); idx != -1 {
		s = s[idx+1:]
	} else {
		return s
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
