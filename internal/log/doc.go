// Package log provides structured logging with automatic redaction of
// sensitive values.
//
// Monitoring output routinely brushes against credentials, API keys,
// and onion hostnames. The SecureHandler wrapper sanitizes log
// attributes before they reach any underlying slog handler, so no
// component has to remember to redact on its own.
package log
