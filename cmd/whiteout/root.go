package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for whiteout.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whiteout",
		Short: "Local-first text anonymizer for sensitive documents",
		Long: `Whiteout replaces personal information in text documents with aliases
before the text leaves your machine. Detection runs locally; only
isolated candidate terms, mixed with synthetic decoys, are sent to a
classification service on the local network. The full document never
leaves the process.

By default, whiteout reads a document, prints the anonymized text, and
remembers alias assignments per session so repeated runs stay consistent.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAnonymizeCmd())
	cmd.AddCommand(NewGraphCmd())
	cmd.AddCommand(NewInitCmd())
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
