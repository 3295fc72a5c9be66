package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/treediff-dev/treediff/pkg/htmltree"
	"github.com/treediff-dev/treediff/pkg/patch"
)

func applyCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "apply <doc.html> <patches.json>",
		Short: "Apply a patch file to an HTML document",
		Long: `Apply a JSON patch list (as produced by 'treediff diff') to an
HTML document and print the patched document.

Examples:
  treediff diff old.html new.html > patches.json
  treediff apply old.html patches.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(args[0], args[1], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the result to a file instead of stdout")

	return cmd
}

func runApply(docPath, patchPath, output string) error {
	docFile, err := os.Open(docPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", docPath, err)
	}
	defer docFile.Close()

	doc, err := html.Parse(docFile)
	if err != nil {
		return fmt.Errorf("parse %s: %w", docPath, err)
	}
	body := htmltree.FindBody(doc)
	if body == nil {
		return fmt.Errorf("%s: %w", docPath, htmltree.ErrNoBody)
	}

	patchData, err := os.ReadFile(patchPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", patchPath, err)
	}
	var patches []patch.Patch
	if err := json.Unmarshal(patchData, &patches); err != nil {
		return fmt.Errorf("parse %s: %w", patchPath, err)
	}

	if err := htmltree.Apply(body, patches); err != nil {
		return fmt.Errorf("apply patches: %w", err)
	}

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create %s: %w", output, err)
		}
		defer f.Close()
		out = f
	}
	return html.Render(out, doc)
}
