// Package tor provides Tor network connectivity with per-stream
// circuit isolation.
//
// Every concurrent crawl task is assigned a distinct stream identifier.
// The identifier parameterizes the SOCKS5 proxy credentials, which the
// Tor daemon uses (IsolateSOCKSAuth, on by default) to route streams
// with different credentials over different circuits. Two tasks with
// different stream IDs therefore never share an anonymization path.
//
// The package supports both an external Tor daemon and an embedded one
// managed through tornago.
package tor
