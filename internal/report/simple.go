package report

import (
	"fmt"
	"io"
	"strings"
)

// SimpleWriter outputs a human-readable text report for terminal display.
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer) *SimpleWriter {
	return &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report as plain text.
func (w *SimpleWriter) Write(report *LeakReport) (int, error) {
	var sb strings.Builder

	sb.WriteString("Dark Web Leak Report\n")
	sb.WriteString("====================\n\n")
	fmt.Fprintf(&sb, "Target:            %s\n", report.TargetName)
	fmt.Fprintf(&sb, "Generated:         %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "Pages analyzed:    %d\n", report.TotalPages())
	fmt.Fprintf(&sb, "Relevant findings: %d\n\n", report.RelevantCount())

	relevant := report.Relevant()
	if len(relevant) == 0 {
		sb.WriteString("No relevant dark-web activity was detected.\n")
		return w.output.Write([]byte(sb.String()))
	}

	sb.WriteString("Findings\n")
	sb.WriteString("--------\n")
	for i, v := range relevant {
		fmt.Fprintf(&sb, "\n[%d] %s (confidence %.4f)\n", i+1, v.ClassificationLabel, v.Confidence)
		fmt.Fprintf(&sb, "    Source:   %s\n", v.SourceURL)
		fmt.Fprintf(&sb, "    Language: %s\n", v.Language)
		if len(v.MatchedStrings) > 0 {
			fmt.Fprintf(&sb, "    Matched:  %s\n", strings.Join(v.MatchedStrings, ", "))
		}
		if v.Summary != "" {
			fmt.Fprintf(&sb, "    Summary:  %s\n", v.Summary)
		}
	}

	return w.output.Write([]byte(sb.String()))
}
