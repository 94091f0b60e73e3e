package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/AntohaY/quicklists/internal/model"
)

type checklistSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Items int    `json:"items"`
	Done  int    `json:"done"`
}

type checklistSummaries []checklistSummary

func summarize(cs []model.Checklist, items []model.ChecklistItem) checklistSummaries {
	out := make(checklistSummaries, 0, len(cs))
	for _, c := range cs {
		s := checklistSummary{ID: c.ID, Title: c.Title}
		for _, it := range model.ItemsForChecklist(items, c.ID) {
			s.Items++
			if it.Checked {
				s.Done++
			}
		}
		out = append(out, s)
	}
	return out
}

func (cs checklistSummaries) WriteText(w io.Writer) error {
	t := plainTable("ID", "TITLE", "DONE")
	for _, c := range cs {
		t.Row(c.ID, c.Title, strconv.Itoa(c.Done)+"/"+strconv.Itoa(c.Items))
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

type itemList []model.ChecklistItem

func (items itemList) WriteText(w io.Writer) error {
	t := plainTable("", "TITLE", "ID")
	for _, it := range items {
		box := "[ ]"
		if it.Checked {
			box = "[x]"
		}
		t.Row(box, it.Title, it.ID)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

type checklistDetail struct {
	Checklist model.Checklist `json:"checklist"`
	Items     itemList        `json:"items"`
}

func (d checklistDetail) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s (%s)\n", d.Checklist.Title, d.Checklist.ID); err != nil {
		return err
	}
	return d.Items.WriteText(w)
}

// plainTable is a borderless table suitable for pipes.
func plainTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		Headers(headers...)
}
