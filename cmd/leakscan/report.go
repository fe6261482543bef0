package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pramath6095/dark-web-leak-ai/internal/config"
	"github.com/pramath6095/dark-web-leak-ai/internal/database"
	"github.com/pramath6095/dark-web-leak-ai/internal/report"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a leak report from stored verdicts",
		Long: `Report reads analysis verdicts from the local store and renders them
as a human-readable, JSON, or Markdown report.

Examples:
  # Print a plain-text report to stdout
  leakscan report --target "Acme Corporation"

  # Only relevant findings, rendered as Markdown
  leakscan report --target "Acme Corporation" --relevant-only --markdown

  # Write a JSON report to a file
  leakscan report --target "Acme Corporation" --json --output reports/acme.json`,
		Args: cobra.NoArgs,
		RunE: runReportCmd,
	}

	cmd.Flags().StringP("target", "t", "",
		"Target name shown in the report header")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory containing the SQLite store")
	cmd.Flags().BoolP("relevant-only", "r", false,
		"Include only pages judged relevant")
	cmd.Flags().IntP("limit", "l", 0,
		"Maximum number of verdicts to include (0 = all)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, _ []string) error {
	target, err := cmd.Flags().GetString("target")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	relevantOnly, err := cmd.Flags().GetBool("relevant-only")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	jsonReport, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownReport, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	if jsonReport && markdownReport {
		return errors.New("--json and --markdown are mutually exclusive")
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	store, err := database.Open(dbDir, opts)
	if err != nil {
		return fmt.Errorf("failed to open store (run 'leakscan serve' first?): %w", err)
	}
	defer store.Close() //nolint:errcheck

	verdicts, err := store.ListVerdicts(cmd.Context(), relevantOnly, limit)
	if err != nil {
		return fmt.Errorf("failed to list verdicts: %w", err)
	}

	leakReport := report.NewLeakReport(target, verdicts)
	return outputReport(leakReport, jsonReport, markdownReport, outputPath)
}

// outputReport renders the leak report in the requested format.
func outputReport(leakReport *report.LeakReport, jsonReport, markdownReport bool, outputPath string) error {
	// Determine output destination
	var output *os.File
	if outputPath != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(outputPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with secure permissions (0600)
		// Reports may contain sensitive information that should only be readable by the owner
		f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case jsonReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case markdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output)
	}

	_, err := writer.Write(leakReport)
	return err
}
