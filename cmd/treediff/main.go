package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "treediff",
		Short: "Diff HTML documents into DOM patches",
		Long: `treediff compares two HTML documents and produces the minimal
sequence of DOM patches that transforms the first into the second.

The pipeline matches nodes between the documents, derives an abstract
edit script, and translates it into concrete positional patches that
an apply tool (or browser client) executes in order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		diffCmd(),
		applyCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
