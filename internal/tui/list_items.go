package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/AntohaY/quicklists/internal/model"
)

type checklistRow struct {
	checklist model.Checklist
	done      int
	total     int
}

func (i checklistRow) FilterValue() string { return i.checklist.Title }
func (i checklistRow) Title() string       { return displayTitle(i.checklist.Title) }
func (i checklistRow) Description() string {
	if i.total == 0 {
		return i.checklist.ID + "  no items"
	}
	return fmt.Sprintf("%s  %d/%d done", i.checklist.ID, i.done, i.total)
}

type itemRow struct {
	item model.ChecklistItem
}

func (i itemRow) FilterValue() string { return i.item.Title }
func (i itemRow) Title() string {
	if i.item.Checked {
		return doneStyle.Render("[x]") + " " + displayTitle(i.item.Title)
	}
	return "[ ] " + displayTitle(i.item.Title)
}
func (i itemRow) Description() string { return "" }

func displayTitle(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(untitled)"
	}
	return s
}

func newList(title string, showDescription bool) list.Model {
	d := list.NewDefaultDelegate()
	d.ShowDescription = showDescription
	if !showDescription {
		d.SetSpacing(0)
	}
	l := list.New([]list.Item{}, d, 0, 0)
	l.Title = title
	// Header, breadcrumb and footer are rendered by the app.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	// ESC is "back" here, not quit.
	l.KeyMap.Quit.SetKeys("q")

	cursorUpKeys := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	l.KeyMap.CursorUp.SetKeys(append(cursorUpKeys, "ctrl+p")...)
	cursorDownKeys := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	l.KeyMap.CursorDown.SetKeys(append(cursorDownKeys, "ctrl+n")...)
	return l
}

func checklistRows(cs []model.Checklist, items []model.ChecklistItem) []list.Item {
	total := map[string]int{}
	done := map[string]int{}
	for _, it := range items {
		total[it.ChecklistID]++
		if it.Checked {
			done[it.ChecklistID]++
		}
	}
	rows := make([]list.Item, 0, len(cs))
	for _, c := range cs {
		rows = append(rows, checklistRow{checklist: c, done: done[c.ID], total: total[c.ID]})
	}
	return rows
}

func itemRows(items []model.ChecklistItem) []list.Item {
	rows := make([]list.Item, 0, len(items))
	for _, it := range items {
		rows = append(rows, itemRow{item: it})
	}
	return rows
}

func selectListItemByID(l *list.Model, id string) {
	for i, li := range l.Items() {
		switch it := li.(type) {
		case checklistRow:
			if it.checklist.ID == id {
				l.Select(i)
				return
			}
		case itemRow:
			if it.item.ID == id {
				l.Select(i)
				return
			}
		}
	}
}
