package completion

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var thinkTagPattern = regexp.MustCompile(`(?s)^\s*<think>.*?</think>\s*`)

// ErrNoJSON means the model answered without a parsable JSON value.
var ErrNoJSON = errors.New("no valid JSON found in response")

// ExtractJSON pulls the JSON value out of a model response that may carry
// <think> blocks, markdown fences or surrounding prose.
func ExtractJSON(response string) (json.RawMessage, error) {
	cleaned := thinkTagPattern.ReplaceAllString(response, "")

	objStart := strings.IndexByte(cleaned, '{')
	arrStart := strings.IndexByte(cleaned, '[')

	if objStart >= 0 && (arrStart < 0 || objStart < arrStart) {
		if s, ok := balanced(cleaned, '{', '}'); ok && json.Valid([]byte(s)) {
			return json.RawMessage(s), nil
		}
	}
	if arrStart >= 0 {
		if s, ok := balanced(cleaned, '[', ']'); ok && json.Valid([]byte(s)) {
			return json.RawMessage(s), nil
		}
	}

	trimmed := strings.TrimSpace(cleaned)
	if trimmed != "" && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed), nil
	}
	return nil, ErrNoJSON
}

func balanced(s string, open, closing byte) (string, bool) {
	start := strings.IndexByte(s, open)
	if start == -1 {
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
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
