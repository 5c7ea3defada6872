package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"mein-essen/domain"
)

// StripFences removes a surrounding ```json ... ``` (or bare ```) block.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 && !strings.ContainsAny(text[:nl], "{[") {
		text = text[nl+1:]
	} else {
		text = strings.TrimPrefix(text, "json")
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// ExtractJSON returns the outermost JSON object or array found in text.
func ExtractJSON(text string) string {
	text = StripFences(text)
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	closer := byte('}')
	if text[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(text, closer)
	if end < start {
		return text[start:]
	}
	return text[start : end+1]
}

// DecodeJSON parses model output into v after removing fences and prose.
func DecodeJSON(text string, v interface{}) error {
	raw := ExtractJSON(text)
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %v - Raw response: %s", domain.ErrModelInvalidJSON, err, text)
	}
	return nil
}
