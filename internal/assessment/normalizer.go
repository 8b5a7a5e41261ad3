package assessment

import (
	"encoding/json"
	"strings"
)

// Normalize extracts a key/value mapping from a model completion that is
// nominally JSON but may be wrapped in prose or code fences. Recovery
// stages, in order: parse the whole text, parse the interior of a ```json
// fence, parse the span between the first "{" and the last "}". If every
// stage fails the result is an empty map; callers must treat each field as
// optional and apply explicit defaults.
func Normalize(text string) map[string]any {
	if m, ok := tryParse(text); ok {
		return m
	}

	if idx := strings.Index(text, "```json"); idx >= 0 {
		interior := text[idx+len("```json"):]
		if end := strings.Index(interior, "```"); end >= 0 {
			if m, ok := tryParse(interior[:end]); ok {
				return m
			}
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if m, ok := tryParse(text[start : end+1]); ok {
			return m
		}
	}

	return map[string]any{}
}

func tryParse(text string) (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &m); err != nil {
		return nil, false
	}
	if m == nil {
		return nil, false
	}
	return m, true
}

// Field accessors over the normalized map. Every read applies the caller's
// default; the untyped map never escapes this package.

func stringField(m map[string]any, key, fallback string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return fallback
}

func floatField(m map[string]any, key string, fallback float64) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return fallback
}

func intField(m map[string]any, key string, fallback int) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}

func stringSliceField(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func mapSliceField(m map[string]any, key string) []map[string]any {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if mm, ok := item.(map[string]any); ok {
			out = append(out, mm)
		}
	}
	return out
}
