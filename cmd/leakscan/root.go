// Package main provides the entry point for the leakscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for leakscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leakscan",
		Short: "Dark web leak monitor for a target organization",
		Long: `leakscan monitors the dark web for leaked data about a target organization.

It generates search queries with an LLM, crawls onion search engines and
discovered pages through Tor (one isolated circuit per request), and runs
every scraped page through a multi-stage relevance pipeline before
recording verdicts.

By default, leakscan starts an embedded Tor daemon automatically.
Use --external-tor to use an existing Tor proxy instead.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
