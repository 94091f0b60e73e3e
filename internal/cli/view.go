package cli

import (
	"github.com/spf13/cobra"

	"github.com/AntohaY/quicklists/internal/app"
	"github.com/AntohaY/quicklists/internal/stream"
	"github.com/AntohaY/quicklists/internal/viewmodel"
)

func newViewCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "view <checklist-id>",
		Short: "Print the detail screen's view model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, a, func(qa *app.App) error {
				ctrl := viewmodel.NewController(qa.Checklists, qa.Items, nil)
				ctrl.Navigate(args[0])
				vm, ok := stream.Latest(ctrl.ViewModel())
				if !ok {
					return errNotFound("checklist", args[0])
				}
				return writeOut(cmd, a, vm)
			})
		},
	}
}
