// Package jsonx decodes JSON objects out of free-form model output.
package jsonx

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	json5 "github.com/yosuke-furukawa/json5/encoding/json5"
)

var (
	// ErrNoJSON is returned when the text contains no JSON object.
	ErrNoJSON = errors.New("no JSON object found")
	// ErrInvalidJSON is returned when the located object does not parse.
	ErrInvalidJSON = errors.New("invalid JSON")
)

// Extract returns the outermost JSON object in text, after removing a
// surrounding Markdown code fence if there is one.
func Extract(text string) (string, error) {
	s := stripFence(strings.TrimSpace(text))
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", ErrNoJSON
	}
	return s[start : end+1], nil
}

// Decode extracts the JSON object from text and unmarshals it into v.
// Strict JSON is tried first; JSON5 covers trailing commas, comments and
// single-quoted strings that models sometimes emit.
func Decode(text string, v any) error {
	obj, err := Extract(text)
	if err != nil {
		return err
	}
	strictErr := json.Unmarshal([]byte(obj), v)
	if strictErr == nil {
		return nil
	}
	if err := json5.Unmarshal([]byte(obj), v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, strictErr)
	}
	return nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop the language tag line, e.g. ```json
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.Contains(s[:nl], "{") {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
