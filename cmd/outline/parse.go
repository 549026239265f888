package main

import (
	"github.com/spf13/cobra"
)

func newParseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file|->",
		Short: "Print the outline tree of a document",
		Long: `Parse a document and print its outline tree, page map and effective
options as YAML (default) or JSON.

Examples:
  outline parse guide.md
  outline parse --depth 2 --numbering -o json report.pdf
  cat page.html | outline parse -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := a.logger()
			eng, closeEngine, err := a.newEngine(log)
			if err != nil {
				return err
			}
			defer closeEngine()

			req, err := a.request(cmd.Context(), cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			res, err := eng.Outline(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := newOutlineOutput(args[0], req.DocumentID, res)
			return writeOutput(cmd.OutOrStdout(), a.v.GetString("output"), out)
		},
	}
}
