package data

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/AntohaY/quicklists/internal/model"
	"github.com/AntohaY/quicklists/internal/stream"
)

type ItemLoader interface {
	LoadItems(ctx context.Context) ([]model.ChecklistItem, error)
}

type ItemInput struct {
	Title string
}

// ItemUpdate lists the fields to change; nil fields are left alone.
type ItemUpdate struct {
	Title   *string
	Checked *bool
}

// ItemStore owns every item of every checklist. Mutations on unknown ids leave the
// collection unchanged but still publish (and therefore persist) once.
type ItemStore struct {
	cell      *stream.Cell[[]model.ChecklistItem]
	loader    ItemLoader
	log       logrus.FieldLogger
	newID     func() string
	mutations atomic.Uint64
	persist   stream.Cancel
}

func NewItemStore(loader ItemLoader, sink SnapshotSink[model.ChecklistItem], opts ...Option) *ItemStore {
	o := buildOptions(opts)
	s := &ItemStore{
		cell:   stream.SliceCell[model.ChecklistItem](nil),
		loader: loader,
		log:    o.log.WithField("store", "checklist-items"),
		newID:  o.newID,
	}
	if sink != nil {
		s.persist = s.cell.Changes().Subscribe(sink.Enqueue)
	} else {
		s.persist = func() {}
	}
	return s
}

// Load replaces the in-memory items with the durable ones; see ChecklistStore.Load.
func (s *ItemStore) Load(ctx context.Context) error {
	if s.loader == nil {
		return nil
	}
	items, err := s.loader.LoadItems(ctx)
	if err != nil {
		return fmt.Errorf("load checklist items: %w", err)
	}
	if n := s.mutations.Load(); n > 0 {
		s.log.WithField("mutations", n).Warn("load replaces in-memory items changed since startup")
	}
	s.cell.Set(items)
	s.log.WithField("count", len(items)).Debug("loaded")
	return nil
}

func (s *ItemStore) mutate(fn func([]model.ChecklistItem) []model.ChecklistItem) []model.ChecklistItem {
	s.mutations.Add(1)
	return s.cell.Update(fn)
}

// mapItems applies fn to a copy of every item matching pred.
func (s *ItemStore) mapItems(pred func(model.ChecklistItem) bool, fn func(*model.ChecklistItem)) {
	s.mutate(func(cur []model.ChecklistItem) []model.ChecklistItem {
		next := slices.Clone(cur)
		for i := range next {
			if pred(next[i]) {
				fn(&next[i])
			}
		}
		return next
	})
}

func (s *ItemStore) removeWhere(pred func(model.ChecklistItem) bool) {
	s.mutate(func(cur []model.ChecklistItem) []model.ChecklistItem {
		return slices.DeleteFunc(slices.Clone(cur), pred)
	})
}

func (s *ItemStore) Add(in ItemInput, checklistID string) model.ChecklistItem {
	created := model.ChecklistItem{
		ID:          s.newID(),
		ChecklistID: checklistID,
		Title:       in.Title,
		Checked:     false,
	}
	s.mutate(func(cur []model.ChecklistItem) []model.ChecklistItem {
		next := make([]model.ChecklistItem, 0, len(cur)+1)
		next = append(next, cur...)
		return append(next, created)
	})
	return created
}

func (s *ItemStore) Update(id string, upd ItemUpdate) {
	s.mapItems(byID(id), func(it *model.ChecklistItem) {
		if upd.Title != nil {
			it.Title = *upd.Title
		}
		if upd.Checked != nil {
			it.Checked = *upd.Checked
		}
	})
}

func (s *ItemStore) Toggle(id string) {
	s.mapItems(byID(id), func(it *model.ChecklistItem) {
		it.Checked = !it.Checked
	})
}

// Reset unchecks every item of a checklist.
func (s *ItemStore) Reset(checklistID string) {
	s.mapItems(byChecklist(checklistID), func(it *model.ChecklistItem) {
		it.Checked = false
	})
}

func (s *ItemStore) Remove(id string) {
	s.removeWhere(byID(id))
}

func (s *ItemStore) RemoveAllItemsForChecklist(checklistID string) {
	s.removeWhere(byChecklist(checklistID))
}

func (s *ItemStore) GetAll() stream.Stream[[]model.ChecklistItem] {
	return s.cell
}

// GetItemsByChecklistID follows the items of one checklist, re-evaluated on every
// change of the collection. It emits an empty slice when there are none.
func (s *ItemStore) GetItemsByChecklistID(checklistID string) stream.Stream[[]model.ChecklistItem] {
	return stream.Map(s.GetAll(), func(items []model.ChecklistItem) []model.ChecklistItem {
		return model.ItemsForChecklist(items, checklistID)
	})
}

func (s *ItemStore) Snapshot() []model.ChecklistItem {
	return s.cell.Value()
}

func (s *ItemStore) Close() {
	s.persist()
}

func byID(id string) func(model.ChecklistItem) bool {
	return func(it model.ChecklistItem) bool { return it.ID == id }
}

func byChecklist(checklistID string) func(model.ChecklistItem) bool {
	return func(it model.ChecklistItem) bool { return it.ChecklistID == checklistID }
}
