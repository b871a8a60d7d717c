// Package llmjson decodes structured JSON out of language-model output.
// Models wrap JSON in markdown fences or stray prose often enough that every
// guard stage needs the same cleanup before unmarshalling.
package llmjson

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripFences removes optional markdown code fences (```json ... ```) that
// some models put around JSON output.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"```json", "```"} {
		if after, ok := strings.CutPrefix(s, prefix); ok {
			s = after
			break
		}
	}
	if before, ok := strings.CutSuffix(s, "```"); ok {
		s = before
	}
	return strings.TrimSpace(s)
}

// Decode strips fences and unmarshals content into T. When the content is
// not a bare JSON value it falls back to the first balanced object found in
// the text, so a model that prepends a sentence of prose still parses.
func Decode[T any](content string) (T, error) {
	var v T
	cleaned := StripFences(content)
	if err := json.Unmarshal([]byte(cleaned), &v); err == nil {
		return v, nil
	}

	obj, ok := firstObject(cleaned)
	if !ok {
		return v, fmt.Errorf("llmjson: no JSON object in model output")
	}
	if err := json.Unmarshal([]byte(obj), &v); err != nil {
		return v, fmt.Errorf("llmjson: decode model output: %w", err)
	}
	return v, nil
}

// firstObject returns the first balanced {...} substring, tracking strings
// and escapes so braces inside values do not break the balance.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}
