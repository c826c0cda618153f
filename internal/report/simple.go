package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/hazyhaar/whiteout-ext/internal/model"
)

// SimpleWriter outputs a compact human-readable report for terminals.
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer) *SimpleWriter {
	return &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the result as plain text.
func (w *SimpleWriter) Write(result *model.ProcessResult) (int, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Session:  %s\n", result.SessionID)
	fmt.Fprintf(&b, "Language: %s\n", result.Language)
	fmt.Fprintf(&b, "Entities: %d\n", len(result.Entities))
	if result.RemoteDegraded {
		b.WriteString("Warning:  remote classification degraded, review low-confidence entities\n")
	}
	b.WriteString("\n")

	for _, e := range result.Entities {
		fmt.Fprintf(&b, "  [%-7s] %-8s %q -> %q\n",
			e.Type.String(),
			e.Confidence.String(),
			e.Text,
			e.Alias(),
		)
	}

	return io.WriteString(w.output, b.String())
}
