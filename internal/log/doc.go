// Package log provides logging with automatic redaction of personal
// data, built on top of the standard slog package.
//
// The anonymizer's whole purpose is keeping personal data local, so its
// own logs must not leak what it redacts from documents. The
// RedactingHandler masks attribute values whose keys commonly carry
// document content (terms, original texts, aliases mapped back to
// originals) and values that look like structured identifiers (emails,
// phone numbers, IBANs) regardless of key.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//	logger.Info("classified",
//	    "term", "Dupont", // masked
//	    "dict", "insee_surnames",
//	)
//	slog.SetDefault(logger)
package log
