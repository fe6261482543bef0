// Package crawler discovers and fetches .onion pages through Tor.
//
// Discovery fans a search query out to multiple dark-web search engines
// concurrently and unions the extracted .onion links. Fetching performs a
// short HEAD liveness probe before each full GET. Every concurrent task
// runs on its own Tor circuit via per-stream SOCKS5 credentials, and every
// request carries a randomized browser fingerprint.
//
// URLs are normalized (trailing slash stripped) and deduplicated
// process-wide through SeenSet before a fetch is ever scheduled, so the
// same page is downloaded at most once per run regardless of how many
// queries or engines surface it.
package crawler
