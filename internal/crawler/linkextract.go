package crawler

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// onionLinkPattern matches .onion URLs inside href values. The host part
// is deliberately loose (any v2/v3 length, subdomains) because engines
// present results in many forms; checksum validation happens during the
// discovery union, see Discover.
var onionLinkPattern = regexp.MustCompile(`https?://[a-z0-9\.]+\.onion[^\s"'<>]*`)

// extractOnionLinks parses an engine results page and returns the .onion
// URLs found in anchor hrefs, in document order.
//
// Links whose URL contains "search" are discarded: on results pages those
// are almost always the engine's own pagination and re-query links, and
// following them would crawl the engine instead of the results.
//
// Design decision: We walk the parsed DOM for anchors rather than running
// the regex over the whole document because engines routinely embed onion
// addresses in visible text, ads, and scripts that are not actual result
// links.
func extractOnionLinks(page string) []string {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		// html.Parse is extremely tolerant; a hard failure means the
		// input is not HTML at all.
		return nil
	}

	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				for _, link := range onionLinkPattern.FindAllString(attr.Val, -1) {
					if strings.Contains(link, "search") {
						continue
					}
					links = append(links, link)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return links
}
