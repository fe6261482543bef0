package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
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

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *LeakReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeFindings(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with target information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *LeakReport) {
	md.H1("Dark Web Leak Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", report.TargetName},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages Analyzed", strconv.Itoa(report.TotalPages())},
			{"Relevant Findings", strconv.Itoa(report.RelevantCount())},
		},
	})
	md.PlainText("")
}

// writeSummary writes the classification summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *LeakReport) {
	md.H2("Classification Summary")
	md.PlainText("")

	labels := report.LabelCounts()
	if len(labels) == 0 {
		md.PlainText("No relevant pages were found.")
		md.PlainText("")
		return
	}

	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, strconv.Itoa(labels[name])})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Classification", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, names, labels)
	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of the label distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, names []string, labels map[string]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Finding Classification Distribution"),
		piechart.WithShowData(true),
	)
	for _, name := range names {
		chart.LabelAndIntValue(name, uint64(labels[name]))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert proportional to what was found.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *LeakReport) {
	labels := report.LabelCounts()
	switch {
	case labels["credential_leak"] > 0 || labels["database_dump"] > 0:
		md.Cautionf(
			"Leaked data detected! %d page(s) appear to expose credentials or database contents.",
			labels["credential_leak"]+labels["database_dump"],
		)
	case report.RelevantCount() > 0:
		md.Warningf(
			"%d page(s) reference the target and should be reviewed.",
			report.RelevantCount(),
		)
	default:
		md.Note("No relevant dark-web activity was detected for this target.")
	}
	md.PlainText("")
}

// writeFindings writes one section per relevant verdict.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, report *LeakReport) {
	relevant := report.Relevant()
	if len(relevant) == 0 {
		return
	}

	md.H2("Findings")
	md.PlainText("")

	for i, v := range relevant {
		md.H3(fmt.Sprintf("Finding %d: %s", i+1, v.ClassificationLabel))
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Property", "Value"},
			Rows: [][]string{
				{"Source", "`" + v.SourceURL + "`"},
				{"Confidence", fmt.Sprintf("%.4f", v.Confidence)},
				{"Similarity", fmt.Sprintf("%.4f", v.SimilarityScore)},
				{"Language", v.Language},
				{"Matched Strings", joinOrDash(v.MatchedStrings)},
			},
		})
		if v.Summary != "" {
			md.PlainText("")
			md.PlainText(v.Summary)
		}
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("Generated by leakscan.")
}

// joinOrDash renders a string list for a table cell.
func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	out := ""
	for i, v := range values {
		if i > 0 {
			out += ", "
		}
		out += "`" + v + "`"
	}
	return out
}
