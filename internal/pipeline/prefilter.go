package pipeline

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Prefilter returns the subset of searchStrings that appear in text.
// Both sides are NFC-normalized and lower-cased before comparison, so
// "Company.COM" in the page matches the search string "company.com".
// Matched strings keep their original casing and their order in
// searchStrings.
//
// An empty result means the page should be treated as irrelevant and
// the expensive inference stages skipped.
func Prefilter(text string, searchStrings []string) []string {
	normalized := strings.ToLower(norm.NFC.String(text))

	var matched []string
	for _, ss := range searchStrings {
		needle := strings.ToLower(norm.NFC.String(ss))
		if needle == "" {
			continue
		}
		if strings.Contains(normalized, needle) {
			matched = append(matched, ss)
		}
	}
	return matched
}
