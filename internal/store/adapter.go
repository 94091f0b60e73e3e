package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AntohaY/quicklists/internal/model"
)

// Collection names on the persistence boundary.
const (
	ChecklistsKey     = "checklists"
	ChecklistItemsKey = "checklist-items"
)

// Adapter round-trips the two collections as whole JSON documents. It holds no state
// of its own; every Save writes the complete collection.
type Adapter struct {
	backend Backend
}

func NewAdapter(b Backend) *Adapter {
	return &Adapter{backend: b}
}

func (a *Adapter) LoadChecklists(ctx context.Context) ([]model.Checklist, error) {
	return loadCollection[model.Checklist](ctx, a.backend, ChecklistsKey)
}

func (a *Adapter) SaveChecklists(ctx context.Context, checklists []model.Checklist) error {
	return saveCollection(ctx, a.backend, ChecklistsKey, checklists)
}

func (a *Adapter) LoadItems(ctx context.Context) ([]model.ChecklistItem, error) {
	return loadCollection[model.ChecklistItem](ctx, a.backend, ChecklistItemsKey)
}

func (a *Adapter) SaveItems(ctx context.Context, items []model.ChecklistItem) error {
	return saveCollection(ctx, a.backend, ChecklistItemsKey, items)
}

func loadCollection[T any](ctx context.Context, b Backend, key string) ([]T, error) {
	raw, ok, err := b.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	out := []T{}
	if !ok || len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if out == nil {
		// A stored "null" reads as an empty collection.
		out = []T{}
	}
	return out, nil
}

func saveCollection[T any](ctx context.Context, b Backend, key string, v []T) error {
	if v == nil {
		v = []T{}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := b.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
