package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AntohaY/quicklists/internal/app"
	"github.com/AntohaY/quicklists/internal/model"
	"github.com/AntohaY/quicklists/internal/publish"
)

func newExportCmd(a *App) *cobra.Command {
	var (
		toDir     string
		overwrite bool
		render    bool
		width     int
	)
	cmd := &cobra.Command{
		Use:   "export <checklist-id>",
		Short: "Export a checklist as Markdown",
		Long: "Prints the checklist as a Markdown task list. With --to, writes <dir>/<id>.md " +
			"instead and reports the written path.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, a, func(qa *app.App) error {
				c, err := findChecklist(qa, args[0])
				if err != nil {
					return err
				}
				items := model.ItemsForChecklist(qa.Items.Snapshot(), c.ID)

				if toDir != "" {
					res, err := publish.WriteChecklist(c, items, toDir, publish.WriteOptions{Overwrite: overwrite})
					if err != nil {
						return err
					}
					return writeOut(cmd, a, res)
				}

				md := publish.RenderChecklistMarkdown(c, items)
				if render {
					if styled, dark := publish.Terminal(cmd.OutOrStdout()); styled {
						md = publish.Render(md, width, dark)
					}
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), md)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&toDir, "to", "", "Write <id>.md into this directory")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	cmd.Flags().BoolVar(&render, "render", false, "Style the Markdown when stdout is a terminal")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for --render")
	return cmd
}
