package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/engine"
)

func addRenderFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("page", 1, "page the navigation is rendered for")
	f.Bool("sticky", false, "add the sticky modifier class")
	f.String("class", "", "extra classes for the nav element")
	f.Bool("filter", false, "print the whole page with the navigation injected at its [outline] shortcode")
}

func newRenderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <file|->",
		Short: "Render the outline navigation of a document",
		Long: `Render the outline as an HTML <nav> for one page of a document. Links
to headings on other pages use the configured permalink style.

With --filter the selected page is printed with its heading ids injected,
its [outline] shortcodes removed and the navigation prepended.

Examples:
  outline render guide.html
  outline render --page 2 --permalink-base https://example.com/docs guide.html
  outline render --filter --page 2 post.html`,
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
			return a.renderTo(cmd.Context(), cmd.OutOrStdout(), eng, req)
		},
	}
	addRenderFlags(cmd)
	return cmd
}

// renderTo writes the navigation, or the filtered page with --filter.
func (a *app) renderTo(ctx context.Context, w io.Writer, eng *engine.Engine, req engine.Request) error {
	var (
		html string
		err  error
	)
	if a.v.GetBool("filter") {
		html, err = eng.FilterPage(ctx, req.DocumentID, req.Content, req.CurrentPage)
	} else {
		html, err = eng.Render(ctx, req)
	}
	if err != nil {
		return err
	}
	if html == "" {
		return nil
	}
	_, err = fmt.Fprintln(w, html)
	return err
}
