package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// piiKeys contains attribute keys that carry document content or other
// personal data. Their values are always masked.
var piiKeys = map[string]bool{
	// Document content
	"term":          true,
	"terms":         true,
	"text":          true,
	"original":      true,
	"original_text": true,
	"canonical":     true,
	"match":         true,

	// Alias maps tie replacements back to originals
	"alias_map": true,
	"aliases":   true,

	// Structured identifiers
	"email": true,
	"phone": true,
	"iban":  true,
	"ssn":   true,
	"nir":   true,
}

// piiPatterns contains regex patterns for values that are personal data
// regardless of the key they were logged under.
var piiPatterns = []*regexp.Regexp{
	// Email addresses
	regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`),

	// IBANs
	regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Za-z0-9 ]{11,30}$`),

	// French national phone numbers
	regexp.MustCompile(`^0[1-9](?:[ .\-]?[0-9]{2}){4}$`),

	// International phone numbers
	regexp.MustCompile(`^\+[0-9]{1,3}(?:[ .\-]?[0-9]{1,4}){3,6}$`),

	// French national identification numbers
	regexp.MustCompile(`^[12][0-9]{2}[0-9]{2}(?:[0-9]{2}|2[AB])[0-9]{3}[0-9]{3}[0-9]{2}$`),
}

// MaskValue is the string used to replace redacted values.
const MaskValue = "***REDACTED***"

// RedactingHandler wraps an slog.Handler to mask personal data.
// It intercepts log records and redacts attribute values that match
// PII key names or value patterns before passing them to the
// underlying handler.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Every component taking a *slog.Logger gets redaction for free
type RedactingHandler struct {
	// handler is the underlying slog handler that receives redacted records.
	handler slog.Handler
}

// NewRedactingHandler creates a new RedactingHandler wrapping the given
// handler. If handler is nil, slog.Default().Handler() is used.
func NewRedactingHandler(handler slog.Handler) *RedactingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &RedactingHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle redacts the record's attributes and passes it to the underlying
// handler.
func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	redacted := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		redacted.AddAttrs(h.redactAttr(a))
		return true
	})

	return h.handler.Handle(ctx, redacted)
}

// WithAttrs returns a new handler with the given attributes added,
// redacted first.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redactedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redactedAttrs[i] = h.redactAttr(a)
	}
	return &RedactingHandler{handler: h.handler.WithAttrs(redactedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{handler: h.handler.WithGroup(name)}
}

// redactAttr redacts a single attribute, recursively handling groups.
func (h *RedactingHandler) redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		redactedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			redactedAttrs[i] = h.redactAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redactedAttrs...)}
	}

	if piiKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString && isPIIValue(a.Value.String()) {
		return slog.String(a.Key, MaskValue)
	}

	return a
}

// isPIIValue checks if a value matches a personal-data pattern.
func isPIIValue(value string) bool {
	for _, pattern := range piiPatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// NewLogger creates a new slog.Logger with PII redaction and text
// output. Verbose selects Debug level; the default is Warn so normal
// runs stay quiet.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	return slog.New(NewRedactingHandler(textHandler))
}

// NewJSONLogger creates a new slog.Logger with PII redaction that
// outputs JSON format. Useful for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	jsonHandler := slog.NewJSONHandler(w, opts)
	return slog.New(NewRedactingHandler(jsonHandler))
}
