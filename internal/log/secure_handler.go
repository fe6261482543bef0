package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// sensitiveKeys are attribute keys whose values are always masked.
var sensitiveKeys = map[string]bool{
	"authorization":       true,
	"cookie":              true,
	"proxy-authorization": true,
	"password":            true,
	"passwd":              true,
	"secret":              true,
	"token":               true,
	"api_key":             true,
	"apikey":              true,
	"api-key":             true,
	"access_token":        true,
	"hf_api_key":          true,
	"generation_api_key":  true,
	"credential":          true,
	"credentials":         true,
	"session":             true,
	"session_id":          true,
}

// sensitiveKeywords mask any key containing one of these substrings.
// The bare "key" keyword is deliberately excluded: it produces false
// positives ("primary_key", "keyboard").
var sensitiveKeywords = []string{
	"password", "passwd", "secret", "token", "auth", "credential",
}

// sensitivePatterns mask values regardless of key name.
var sensitivePatterns = []*regexp.Regexp{
	// JWT tokens
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),
	// Bearer / Basic auth values
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
	// Long bare API keys
	regexp.MustCompile(`^[a-zA-Z0-9]{40,}$`),
}

// onionHostPattern matches v2/v3 onion hostnames inside values.
// Discovered onion addresses identify the sites being monitored; they
// are masked in log output so that logs can be shared without exposing
// the crawl trail. Components that need the address persist it through
// the store, not through logs.
var onionHostPattern = regexp.MustCompile(`[a-z2-7]{16,56}\.onion`)

// MaskValue replaces sensitive values in log output.
const MaskValue = "***REDACTED***"

// onionMask replaces onion hostnames in log output.
const onionMask = "[onion]"

// SecureHandler wraps an slog.Handler and sanitizes every attribute
// before delegating. It works with any underlying handler (text, JSON)
// and with libraries that accept a *slog.Logger.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler wraps handler with sanitization. A nil handler
// falls back to slog.Default().Handler().
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled delegates to the underlying handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's attributes and passes it on.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a handler with the given attributes added, sanitized.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitized := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitized[i] = h.sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(sanitized)}
}

// WithGroup returns a handler with the given group name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

func (h *SecureHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitized := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			sanitized[i] = h.sanitizeAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitized...)}
	}

	keyLower := strings.ToLower(a.Key)
	if sensitiveKeys[keyLower] || containsSensitiveKeyword(keyLower) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		val := a.Value.String()
		if isSensitiveValue(val) {
			return slog.String(a.Key, MaskValue)
		}
		if masked := onionHostPattern.ReplaceAllString(val, onionMask); masked != val {
			return slog.String(a.Key, masked)
		}
	}

	return a
}

func containsSensitiveKeyword(key string) bool {
	for _, kw := range sensitiveKeywords {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}

func isSensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// NewSecureLogger returns a text-format logger with sanitization.
// verbose selects Debug level; otherwise Info.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	textHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewSecureHandler(textHandler))
}

// NewSecureJSONLogger returns a JSON-format logger with sanitization,
// for structured log aggregation.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewSecureHandler(jsonHandler))
}
