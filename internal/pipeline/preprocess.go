package pipeline

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// strippedTags lists elements that are almost always boilerplate or
// spam on dark-web pages. Their entire subtree is discarded.
var strippedTags = map[string]bool{
	"script": true, "style": true, "noscript": true,
	"form": true, "input": true, "button": true,
	"nav": true, "footer": true, "header": true,
	"iframe": true, "object": true, "embed": true,
	"svg": true, "canvas": true,
	"aside": true,
}

var (
	multiSpacePattern   = regexp.MustCompile(`[ \t]+`)
	multiNewlinePattern = regexp.MustCompile(`\n{3,}`)
)

// CleanHTML converts raw HTML into plain text suitable for analysis.
// Boilerplate elements (scripts, styles, forms, site chrome, embedded
// content) and comments are dropped, visible text is extracted with
// newlines between block elements, and whitespace is normalized.
// Plain-text input passes through with just the whitespace cleanup.
//
// Design decision: the html.Parse tokenizer from golang.org/x/net/html
// is lenient like a browser, which matters here because scraped onion
// pages are frequently malformed. A strict XML parser would reject a
// large share of real input.
func CleanHTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		// html.Parse almost never fails on real-world input; fall
		// back to treating the payload as plain text.
		return normalizeWhitespace(raw)
	}

	var sb strings.Builder
	collectText(doc, &sb)
	return normalizeWhitespace(sb.String())
}

// collectText walks the parsed tree appending visible text, skipping
// stripped subtrees and comments.
func collectText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.CommentNode:
		return
	case html.ElementNode:
		if strippedTags[n.Data] {
			return
		}
	case html.TextNode:
		sb.WriteString(n.Data)
		sb.WriteString("\n")
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

// normalizeWhitespace collapses runs of spaces, drops blank lines, and
// limits consecutive newlines to two.
func normalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(multiSpacePattern.ReplaceAllString(line, " "))
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	result := strings.Join(cleaned, "\n")
	return strings.TrimSpace(multiNewlinePattern.ReplaceAllString(result, "\n\n"))
}
