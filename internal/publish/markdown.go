package publish

import (
	"bytes"
	"strings"

	"github.com/AntohaY/quicklists/internal/model"
)

// RenderChecklistMarkdown renders a checklist as a GitHub-style task list. Items
// are written in store order; items of other checklists are ignored.
func RenderChecklistMarkdown(c model.Checklist, items []model.ChecklistItem) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	title := strings.TrimSpace(c.Title)
	if title == "" {
		title = c.ID
	}
	writeLn("# " + title)
	writeLn("")

	own := model.ItemsForChecklist(items, c.ID)
	if len(own) == 0 {
		writeLn("_No items._")
		return buf.String()
	}
	done := 0
	for _, it := range own {
		box := "[ ]"
		if it.Checked {
			box = "[x]"
			done++
		}
		writeLn("- " + box + " " + escapeInline(it.Title))
	}
	writeLn("")
	writeLn(progressLine(done, len(own)))
	return buf.String()
}

func progressLine(done, total int) string {
	return "_" + itoa(done) + " of " + itoa(total) + " done._"
}

// escapeInline keeps a title on one line so it cannot break the list.
func escapeInline(s string) string {
	s = strings.TrimSpace(s)
	return strings.Join(strings.Fields(s), " ")
}
