package crawler

import (
	"strings"

	"github.com/pramath6095/dark-web-leak-ai/internal/tor"
)

// NormalizeURL canonicalizes a discovered URL for deduplication.
// Trailing slash variants of the same page ("...onion/path/" vs
// "...onion/path") must collapse to one key, otherwise the same page is
// fetched twice and pollutes duplicate-ratio accounting downstream.
func NormalizeURL(rawURL string) string {
	return strings.TrimRight(strings.TrimSpace(rawURL), "/")
}

// validOnionURL reports whether the host of a discovered link is a v3
// onion address with a valid checksum. The link extractor matches hosts
// loosely, so checksum validation here is what keeps truncated v2
// addresses and corrupted scrapes out of the fetch queue.
func validOnionURL(link string) bool {
	// Bare v3 hosts, with or without scheme and path.
	if _, err := tor.NormalizeAddress(link); err == nil {
		return true
	}

	// Subdomain-prefixed hosts ("www.<addr>.onion") still carry the
	// real address as their suffix.
	host := onionHost(link)
	candidates := tor.ExtractV3Addresses(host)
	if len(candidates) == 0 {
		return false
	}
	addr := candidates[len(candidates)-1]
	return strings.HasSuffix(host, addr) && tor.IsValidV3Address(addr)
}

// onionHost strips the scheme and everything after the host part.
func onionHost(link string) string {
	host := strings.ToLower(strings.TrimSpace(link))
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	if idx := strings.IndexAny(host, "/?#"); idx != -1 {
		host = host[:idx]
	}
	return host
}
