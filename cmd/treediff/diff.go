package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/treediff-dev/treediff"
)

func diffCmd() *cobra.Command {
	var (
		script    bool
		compact   bool
		minHeight int
		threshold float64
	)

	cmd := &cobra.Command{
		Use:   "diff <old.html> <new.html>",
		Short: "Diff two HTML files",
		Long: `Diff two HTML files and print the resulting patches as JSON.

With --script the abstract edit script is printed instead, one
operation per line.

Examples:
  treediff diff old.html new.html
  treediff diff --script old.html new.html
  treediff diff --threshold=0.3 old.html new.html`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(args[0], args[1], script, compact, minHeight, threshold)
		},
	}

	cmd.Flags().BoolVar(&script, "script", false, "Print the abstract edit script instead of patches")
	cmd.Flags().BoolVar(&compact, "compact", false, "Print patches without indentation")
	cmd.Flags().IntVar(&minHeight, "min-height", 1, "Minimum subtree height for exact matching")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.5, "Similarity threshold for bottom-up matching")

	return cmd
}

func runDiff(oldPath, newPath string, script, compact bool, minHeight int, threshold float64) error {
	oldFile, err := os.Open(oldPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", oldPath, err)
	}
	defer oldFile.Close()

	newFile, err := os.Open(newPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", newPath, err)
	}
	defer newFile.Close()

	opts := []treediff.Option{
		treediff.WithMinHeight(minHeight),
		treediff.WithSimilarityThreshold(threshold),
	}
	ctx := context.Background()

	if script {
		ops, err := treediff.Script(ctx, oldFile, newFile, opts...)
		if err != nil {
			return err
		}
		for _, op := range ops {
			fmt.Println(op)
		}
		return nil
	}

	patches, err := treediff.Diff(ctx, oldFile, newFile, opts...)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(patches)
}
