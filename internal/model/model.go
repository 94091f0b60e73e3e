package model

type Checklist struct {
	// ID is a slug of the title at creation time and never changes afterwards.
	ID    string `json:"id"`
	Title string `json:"title"`
}

type ChecklistItem struct {
	ID          string `json:"id"`
	ChecklistID string `json:"checklistId"`
	Title       string `json:"title"`
	Checked     bool   `json:"checked"`
}

// FindChecklist returns a pointer to a copy of the checklist with the given id.
func FindChecklist(checklists []Checklist, id string) (*Checklist, bool) {
	for _, c := range checklists {
		if c.ID == id {
			cp := c
			return &cp, true
		}
	}
	return nil, false
}

func FindItem(items []ChecklistItem, id string) (*ChecklistItem, bool) {
	for _, it := range items {
		if it.ID == id {
			cp := it
			return &cp, true
		}
	}
	return nil, false
}

// ItemsForChecklist returns the items owned by checklistID, in collection order.
// The result is never nil.
func ItemsForChecklist(items []ChecklistItem, checklistID string) []ChecklistItem {
	out := make([]ChecklistItem, 0, len(items))
	for _, it := range items {
		if it.ChecklistID == checklistID {
			out = append(out, it)
		}
	}
	return out
}
