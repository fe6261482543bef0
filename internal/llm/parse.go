package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// jsonArrayPattern finds the first JSON array embedded anywhere in the reply,
// including across newlines. Models often wrap the array in prose or a
// markdown fence despite instructions not to.
var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// codeFencePattern matches markdown code fence markers, with or without a
// language tag.
var codeFencePattern = regexp.MustCompile("```(?:json)?\\s*")

// ParseStringArray extracts a list of strings from a model reply that was
// asked for a JSON array.
//
// It strips markdown code fences, locates the first JSON array in the
// remaining text, and unmarshals it. If no well-formed array can be found,
// it falls back to treating each non-empty line as one entry, stripping
// common list decorations (quotes, dashes, bullets, trailing commas).
// Replies with nothing salvageable yield an empty slice, never an error:
// the caller's fallback path handles empty results.
func ParseStringArray(reply string) []string {
	cleaned := stripCodeFences(reply)

	if match := jsonArrayPattern.FindString(cleaned); match != "" {
		var items []string
		if err := json.Unmarshal([]byte(match), &items); err == nil {
			return trimNonEmpty(items)
		}
	}

	// Fallback: one entry per line, with list decorations removed.
	var items []string
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		line = strings.Trim(line, `-•"',`)
		line = strings.TrimSpace(line)

		// Skip empty lines and structural leftovers from a malformed array.
		if line == "" || strings.HasPrefix(line, "[") || strings.HasPrefix(line, "]") {
			continue
		}
		items = append(items, line)
	}
	return items
}

// stripCodeFences removes all markdown code fence markers (``` or ```json)
// from the reply.
func stripCodeFences(reply string) string {
	return strings.TrimSpace(codeFencePattern.ReplaceAllString(reply, ""))
}

// trimNonEmpty trims whitespace from each item and drops empty entries.
func trimNonEmpty(items []string) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
