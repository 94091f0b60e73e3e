package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/AntohaY/quicklists/internal/app"
	"github.com/AntohaY/quicklists/internal/data"
	"github.com/AntohaY/quicklists/internal/model"
	"github.com/AntohaY/quicklists/internal/viewmodel"
)

func newChecklistsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "checklists",
		Aliases: []string{"checklist"},
		Short:   "Checklist commands",
	}
	cmd.AddCommand(newChecklistsListCmd(a))
	cmd.AddCommand(newChecklistsAddCmd(a))
	cmd.AddCommand(newChecklistsRenameCmd(a))
	cmd.AddCommand(newChecklistsRemoveCmd(a))
	cmd.AddCommand(newChecklistsShowCmd(a))
	return cmd
}

func newChecklistsListCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List checklists with progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, a, func(qa *app.App) error {
				return writeOut(cmd, a, summarize(qa.Checklists.Snapshot(), qa.Items.Snapshot()))
			})
		},
	}
}

func newChecklistsAddCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title>",
		Short: "Create a checklist (its id is derived from the title)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title, err := titleArg(args)
			if err != nil {
				return writeErr(cmd, err)
			}
			return withApp(cmd, a, func(qa *app.App) error {
				return writeOut(cmd, a, qa.Checklists.Add(title))
			})
		},
	}
}

func newChecklistsRenameCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <checklist-id> <title>",
		Short: "Change a checklist's title (the id stays)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title, err := titleArg(args[1:])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withApp(cmd, a, func(qa *app.App) error {
				c, err := findChecklist(qa, args[0])
				if err != nil {
					return err
				}
				qa.Checklists.Update(c.ID, data.ChecklistUpdate{Title: title})
				c.Title = title
				return writeOut(cmd, a, c)
			})
		},
	}
}

func newChecklistsRemoveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <checklist-id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a checklist and all of its items",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, a, func(qa *app.App) error {
				c, err := findChecklist(qa, args[0])
				if err != nil {
					return err
				}
				removed := len(model.ItemsForChecklist(qa.Items.Snapshot(), c.ID))
				qa.Checklists.Remove(c.ID)
				return writeOut(cmd, a, map[string]any{
					"removed":      c,
					"itemsRemoved": removed,
				})
			})
		},
	}
}

func newChecklistsShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <checklist-id>",
		Short: "Show a checklist and its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, a, func(qa *app.App) error {
				c, err := findChecklist(qa, args[0])
				if err != nil {
					return err
				}
				return writeOut(cmd, a, checklistDetail{
					Checklist: c,
					Items:     model.ItemsForChecklist(qa.Items.Snapshot(), c.ID),
				})
			})
		},
	}
}

func findChecklist(qa *app.App, id string) (model.Checklist, error) {
	id = strings.TrimSpace(id)
	c, ok := model.FindChecklist(qa.Checklists.Snapshot(), id)
	if !ok {
		return model.Checklist{}, errNotFound("checklist", id)
	}
	return *c, nil
}

func titleArg(args []string) (string, error) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return "", viewmodel.ErrTitleRequired
	}
	return title, nil
}
