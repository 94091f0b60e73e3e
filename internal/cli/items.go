package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/AntohaY/quicklists/internal/app"
	"github.com/AntohaY/quicklists/internal/data"
	"github.com/AntohaY/quicklists/internal/model"
)

func newItemsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "Checklist item commands",
	}
	cmd.AddCommand(newItemsListCmd(a))
	cmd.AddCommand(newItemsAddCmd(a))
	cmd.AddCommand(newItemsEditCmd(a))
	cmd.AddCommand(newItemsToggleCmd(a))
	cmd.AddCommand(newItemsRemoveCmd(a))
	cmd.AddCommand(newItemsResetCmd(a))
	return cmd
}

func newItemsListCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <checklist-id>",
		Short: "List the items of a checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, a, func(qa *app.App) error {
				c, err := findChecklist(qa, args[0])
				if err != nil {
					return err
				}
				return writeOut(cmd, a, itemList(model.ItemsForChecklist(qa.Items.Snapshot(), c.ID)))
			})
		},
	}
}

func newItemsAddCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <checklist-id> <title>",
		Short: "Add an unchecked item to a checklist",
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
				return writeOut(cmd, a, qa.Items.Add(data.ItemInput{Title: title}, c.ID))
			})
		},
	}
}

func newItemsEditCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <item-id> <title>",
		Short: "Change an item's title",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title, err := titleArg(args[1:])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withApp(cmd, a, func(qa *app.App) error {
				it, err := findItem(qa, args[0])
				if err != nil {
					return err
				}
				qa.Items.Update(it.ID, data.ItemUpdate{Title: &title})
				it.Title = title
				return writeOut(cmd, a, it)
			})
		},
	}
}

func newItemsToggleCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <item-id>",
		Short: "Check or uncheck an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, a, func(qa *app.App) error {
				it, err := findItem(qa, args[0])
				if err != nil {
					return err
				}
				qa.Items.Toggle(it.ID)
				it.Checked = !it.Checked
				return writeOut(cmd, a, it)
			})
		},
	}
}

func newItemsRemoveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <item-id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete an item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, a, func(qa *app.App) error {
				it, err := findItem(qa, args[0])
				if err != nil {
					return err
				}
				qa.Items.Remove(it.ID)
				return writeOut(cmd, a, map[string]any{"removed": it})
			})
		},
	}
}

func newItemsResetCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <checklist-id>",
		Short: "Uncheck every item of a checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, a, func(qa *app.App) error {
				c, err := findChecklist(qa, args[0])
				if err != nil {
					return err
				}
				qa.Items.Reset(c.ID)
				return writeOut(cmd, a, itemList(model.ItemsForChecklist(qa.Items.Snapshot(), c.ID)))
			})
		},
	}
}

func findItem(qa *app.App, id string) (model.ChecklistItem, error) {
	id = strings.TrimSpace(id)
	it, ok := model.FindItem(qa.Items.Snapshot(), id)
	if !ok {
		return model.ChecklistItem{}, errNotFound("item", id)
	}
	return *it, nil
}
