// Package data holds the authoritative in-memory collections. Each store owns one
// replay-one cell; mutations are synchronous and publish a fresh snapshot, and every
// published snapshot is handed once to the store's persistence sink.
package data

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AntohaY/quicklists/internal/model"
	"github.com/AntohaY/quicklists/internal/stream"
)

type ChecklistLoader interface {
	LoadChecklists(ctx context.Context) ([]model.Checklist, error)
}

// ItemCascade is the hook ChecklistStore.Remove uses to drop a checklist's items.
type ItemCascade interface {
	RemoveAllItemsForChecklist(checklistID string)
}

type ChecklistUpdate struct {
	Title string
}

type ChecklistStore struct {
	cell      *stream.Cell[[]model.Checklist]
	loader    ChecklistLoader
	items     ItemCascade
	log       logrus.FieldLogger
	now       func() time.Time
	mutations atomic.Uint64
	persist   stream.Cancel
}

func NewChecklistStore(loader ChecklistLoader, sink SnapshotSink[model.Checklist], items ItemCascade, opts ...Option) *ChecklistStore {
	o := buildOptions(opts)
	s := &ChecklistStore{
		cell:   stream.SliceCell[model.Checklist](nil),
		loader: loader,
		items:  items,
		log:    o.log.WithField("store", "checklists"),
		now:    o.now,
	}
	// One persistence subscription for the lifetime of the store, independent of how
	// many readers subscribe to GetAll.
	if sink != nil {
		s.persist = s.cell.Changes().Subscribe(sink.Enqueue)
	} else {
		s.persist = func() {}
	}
	return s
}

// Load replaces the in-memory collection with the durable one. It is meant to run once
// at startup; calling it after mutations overwrites them with whatever storage holds.
// There is no built-in timeout: a backend that never answers blocks until ctx ends.
func (s *ChecklistStore) Load(ctx context.Context) error {
	if s.loader == nil {
		return nil
	}
	checklists, err := s.loader.LoadChecklists(ctx)
	if err != nil {
		return fmt.Errorf("load checklists: %w", err)
	}
	if n := s.mutations.Load(); n > 0 {
		s.log.WithField("mutations", n).Warn("load replaces in-memory checklists changed since startup")
	}
	s.cell.Set(checklists)
	s.log.WithField("count", len(checklists)).Debug("loaded")
	return nil
}

func (s *ChecklistStore) mutate(fn func([]model.Checklist) []model.Checklist) []model.Checklist {
	s.mutations.Add(1)
	return s.cell.Update(fn)
}

// Add creates a checklist whose id is a slug of title and returns it.
func (s *ChecklistStore) Add(title string) model.Checklist {
	var created model.Checklist
	s.mutate(func(cur []model.Checklist) []model.Checklist {
		created = model.Checklist{
			ID:    uniqueSlug(title, cur, s.now()),
			Title: title,
		}
		next := make([]model.Checklist, 0, len(cur)+1)
		next = append(next, cur...)
		return append(next, created)
	})
	return created
}

// Remove deletes the checklist and, before the reduced list is published, every item
// that belongs to it.
func (s *ChecklistStore) Remove(id string) {
	if s.items != nil {
		s.items.RemoveAllItemsForChecklist(id)
	}
	s.mutate(func(cur []model.Checklist) []model.Checklist {
		return slices.DeleteFunc(slices.Clone(cur), func(c model.Checklist) bool { return c.ID == id })
	})
}

func (s *ChecklistStore) Update(id string, upd ChecklistUpdate) {
	s.mutate(func(cur []model.Checklist) []model.Checklist {
		next := slices.Clone(cur)
		for i := range next {
			if next[i].ID == id {
				next[i].Title = upd.Title
			}
		}
		return next
	})
}

// GetAll is the canonical read stream: replay-one, one emission per change.
func (s *ChecklistStore) GetAll() stream.Stream[[]model.Checklist] {
	return s.cell
}

// GetByID follows one checklist. Nothing is emitted while the collection is empty
// (store warm-up); afterwards every change emits the current match, or nil when the
// id is absent.
func (s *ChecklistStore) GetByID(id string) stream.Stream[*model.Checklist] {
	nonEmpty := stream.Filter(s.GetAll(), func(cs []model.Checklist) bool { return len(cs) > 0 })
	return stream.Map(nonEmpty, func(cs []model.Checklist) *model.Checklist {
		c, _ := model.FindChecklist(cs, id)
		return c
	})
}

// Snapshot returns a copy of the current collection.
func (s *ChecklistStore) Snapshot() []model.Checklist {
	return s.cell.Value()
}

// Close detaches the persistence subscription.
func (s *ChecklistStore) Close() {
	s.persist()
}

// whitespaceRun matches ASCII whitespace, vertical tab, every Unicode space
// separator, the byte order mark and the line/paragraph separators.
var whitespaceRun = regexp.MustCompile(`[\s\v\p{Zs}\x{FEFF}\x{2028}\x{2029}]+`)

// Slugify lowercases title and turns each whitespace run into a hyphen. Other
// characters are kept as-is.
func Slugify(title string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(title), "-")
}

// uniqueSlug appends the current unix-millisecond timestamp on collision. If two
// checklists with the same title land in the same millisecond the timestamp is bumped
// until the id is free.
func uniqueSlug(title string, existing []model.Checklist, now time.Time) string {
	slug := Slugify(title)
	if !hasChecklistID(existing, slug) {
		return slug
	}
	ts := now.UnixMilli()
	for {
		candidate := slug + strconv.FormatInt(ts, 10)
		if !hasChecklistID(existing, candidate) {
			return candidate
		}
		ts++
	}
}

func hasChecklistID(cs []model.Checklist, id string) bool {
	return slices.ContainsFunc(cs, func(c model.Checklist) bool { return c.ID == id })
}
