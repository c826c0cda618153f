package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/hazyhaar/whiteout-ext/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the result in Markdown format.
func (w *MarkdownWriter) Write(result *model.ProcessResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeSummary(md, result)
	w.writeEntities(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.ProcessResult) {
	md.H1("Anonymization Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Session", "`" + result.SessionID + "`"},
			{"Language", result.Language},
			{"Processed", result.ProcessedAt.Format("2006-01-02 15:04:05 MST")},
			{"Entities", strconv.Itoa(len(result.Entities))},
			{"Remote classification", w.remoteStatusText(result)},
		},
	})
	md.PlainText("")
}

// remoteStatusText returns the remote classification status.
func (w *MarkdownWriter) remoteStatusText(result *model.ProcessResult) string {
	if result.RemoteDegraded {
		return "⚠️ Degraded (local signals only for some terms)"
	}
	return "✅ Complete"
}

// writeSummary writes the entity type distribution.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, result *model.ProcessResult) {
	md.H2("Entity Summary")
	md.PlainText("")

	counts := result.EntityCountByType()

	rows := make([][]string, 0, len(entityTypeOrder)+1)
	for _, t := range entityTypeOrder {
		if counts[t.String()] == 0 {
			continue
		}
		rows = append(rows, []string{t.String(), strconv.Itoa(counts[t.String()])})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(len(result.Entities)) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Type", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(result.Entities) > 0 {
		w.writePieChart(md, counts)
	}

	w.writeAlert(md, result)
}

// entityTypeOrder fixes the display order of entity types.
var entityTypeOrder = []model.EntityType{
	model.EntityPerson,
	model.EntityCompany,
	model.EntityAddress,
	model.EntityCity,
	model.EntityEmail,
	model.EntityPhone,
	model.EntityIBAN,
	model.EntitySSN,
	model.EntityURL,
	model.EntityUnknown,
}

// writePieChart writes a mermaid pie chart for the type distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts map[string]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Entity Type Distribution"),
		piechart.WithShowData(true),
	)

	for _, t := range entityTypeOrder {
		if n := counts[t.String()]; n > 0 {
			chart.LabelAndIntValue(t.String(), uint64(n)) //nolint:gosec // count is non-negative
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the result state.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, result *model.ProcessResult) {
	lowCount := 0
	for _, e := range result.Entities {
		if e.Confidence == model.ConfidenceLow {
			lowCount++
		}
	}

	switch {
	case result.RemoteDegraded:
		md.Warningf(
			"The classification service was unreachable for part of this run. %d entities rely on local signals only; review before sharing.",
			len(result.Entities),
		)
	case lowCount > 0:
		md.Importantf(
			"%d low-confidence entities need review: they were surfaced rather than dropped and may be false positives.",
			lowCount,
		)
	case len(result.Entities) > 0:
		md.Tip("All entities carry corroborated confidence.")
	default:
		md.Note("No anonymizable entities detected.")
	}
	md.PlainText("")
}

// writeEntities writes all entities grouped by confidence.
func (w *MarkdownWriter) writeEntities(md *markdown.Markdown, result *model.ProcessResult) {
	md.H2("Entities")
	md.PlainText("")

	if len(result.Entities) == 0 {
		md.PlainText("No entities detected.")
		md.PlainText("")
		return
	}

	confidences := []struct {
		level  model.EntityConfidence
		header string
	}{
		{model.ConfidenceHigh, "### 🟢 High confidence"},
		{model.ConfidenceMedium, "### 🟡 Medium confidence"},
		{model.ConfidenceLow, "### 🔴 Low confidence (review required)"},
	}

	for _, c := range confidences {
		entities := filterByConfidence(result.Entities, c.level)
		if len(entities) == 0 {
			continue
		}

		md.PlainText(c.header)
		md.PlainText("")
		w.writeEntityTable(md, entities)
	}
}

func filterByConfidence(entities []model.Entity, c model.EntityConfidence) []model.Entity {
	out := make([]model.Entity, 0, len(entities))
	for _, e := range entities {
		if e.Confidence == c {
			out = append(out, e)
		}
	}
	return out
}

// writeEntityTable writes a table of entities with their aliases.
func (w *MarkdownWriter) writeEntityTable(md *markdown.Markdown, entities []model.Entity) {
	rows := make([][]string, len(entities))
	for i, e := range entities {
		sources := "-"
		if len(e.Sources) > 0 {
			sources = e.Sources[0]
			for _, s := range e.Sources[1:] {
				sources += ", " + s
			}
		}

		rows[i] = []string{
			"`" + truncateString(e.Text, 40) + "`",
			e.Type.String(),
			truncateString(e.Alias(), 40),
			truncateString(sources, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Original", "Type", "Alias", "Sources"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*This report contains original document content. Keep it as local as the document itself.*")
}

// truncateString truncates a string to maxLen bytes with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
