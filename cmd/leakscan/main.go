// Package main provides the entry point for the leakscan CLI.
//
// leakscan monitors the dark web for leaked data about a target
// organization. It generates search queries with an LLM, crawls onion
// search engines and pages through Tor with per-request circuit
// isolation, and runs each scraped page through a multi-stage
// relevance pipeline.
//
// Usage:
//
//	leakscan serve --profile target.yaml
//	leakscan report --target "Acme Corporation"
//
// See --help for all available options.
package main

// main is the entry point for leakscan.
func main() {
	Execute()
}
