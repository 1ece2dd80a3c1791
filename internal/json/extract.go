// Package json provides JSON extraction utilities for parsing LLM responses.
//
// Models asked for a JSON object often wrap it in a code fence or surround
// it with commentary. Extraction strips fences and then scans for the first
// balanced object, skipping braces that appear inside string literals.
package json

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON finds and returns the JSON object portion of a response string.
func extractJSON(response string) (string, error) {
	response = stripMarkdownCodeBlocks(response)

	if json.Valid([]byte(response)) && strings.HasPrefix(response, "{") {
		return response, nil
	}

	for start := strings.IndexByte(response, '{'); start != -1; {
		end := matchingBrace(response, start)
		if end == -1 {
			break
		}
		candidate := response[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
		next := strings.IndexByte(response[start+1:], '{')
		if next == -1 {
			break
		}
		start += next + 1
	}

	preview := response
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	return "", fmt.Errorf("failed to extract valid JSON from response: %q", preview)
}

// matchingBrace returns the index of the brace closing the object opened at
// start, or -1 when the object is unbalanced.
func matchingBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// stripMarkdownCodeBlocks removes a surrounding code fence, with or without
// a language tag.
func stripMarkdownCodeBlocks(response string) string {
	trimmed := strings.TrimSpace(response)

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		if nl := strings.IndexByte(trimmed, '\n'); nl != -1 && !strings.ContainsAny(trimmed[:nl], "{}") {
			trimmed = trimmed[nl+1:]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	return trimmed
}

// ExtractJSONFromResponse extracts and parses JSON from an LLM response.
func ExtractJSONFromResponse[T any](response string) (T, error) {
	var result T
	jsonStr, err := extractJSON(response)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return result, nil
}

// ExtractJSON extracts the raw JSON object from a response string.
func ExtractJSON(response string) (string, error) {
	return extractJSON(response)
}

// StripCodeFence removes a surrounding markdown code fence from text that is
// not JSON, such as a bare SQL statement.
func StripCodeFence(response string) string {
	return stripMarkdownCodeBlocks(response)
}
