package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/AntohaY/quicklists/internal/data"
	"github.com/AntohaY/quicklists/internal/model"
	"github.com/AntohaY/quicklists/internal/store"
)

func TestApp_PersistsAcrossRestarts(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()

	for _, kind := range []store.BackendKind{store.BackendFile, store.BackendSQLite} {
		t.Run(string(kind), func(t *testing.T) {
			opts := Options{Store: store.Options{Kind: kind, Dir: t.TempDir()}}
			a, err := Open(ctx, opts)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			trip := a.Checklists.Add("Trip")
			passport := a.Items.Add(data.ItemInput{Title: "Passport"}, trip.ID)
			a.Items.Toggle(passport.ID)
			other := a.Checklists.Add("Other")
			a.Items.Add(data.ItemInput{Title: "Gone"}, other.ID)
			a.Checklists.Remove(other.ID)
			if err := a.Close(ctx); err != nil {
				t.Fatalf("Close: %v", err)
			}

			b, err := Open(ctx, opts)
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			defer b.Close(ctx)
			if diff := cmp.Diff([]model.Checklist{trip}, b.Checklists.Snapshot()); diff != "" {
				t.Fatalf("checklists (-want +got):\n%s", diff)
			}
			items := b.Items.Snapshot()
			if len(items) != 1 || items[0].ID != passport.ID || !items[0].Checked {
				t.Fatalf("unexpected items after reopen: %+v", items)
			}
		})
	}
}

type flakyBackend struct {
	store.Backend
	mu   sync.Mutex
	fail bool
}

func (f *flakyBackend) Put(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return errors.New("backend unavailable")
	}
	return f.Backend.Put(ctx, key, value)
}

func TestApp_SaveFailuresStayLocal(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()

	backend := &flakyBackend{Backend: store.NewMemoryBackend(), fail: true}
	var (
		mu       sync.Mutex
		failures int
	)
	a := New(backend, Options{OnSaveError: func(error) {
		mu.Lock()
		failures++
		mu.Unlock()
	}})

	a.Checklists.Add("Trip")
	if err := a.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := a.Checklists.Snapshot(); len(got) != 1 {
		t.Fatalf("in-memory state lost on save failure: %+v", got)
	}
	if a.SaveErr() == nil {
		t.Fatalf("expected the save failure to be visible")
	}
	mu.Lock()
	if failures != 1 {
		t.Fatalf("expected 1 reported failure, got %d", failures)
	}
	mu.Unlock()

	backend.mu.Lock()
	backend.fail = false
	backend.mu.Unlock()
	a.Checklists.Add("Groceries")
	if err := a.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	stored, err := store.NewAdapter(backend).LoadChecklists(ctx)
	if err != nil {
		t.Fatalf("LoadChecklists: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected the next save to carry the full collection, got %+v", stored)
	}
}

func TestApp_OpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Store: store.Options{Kind: "tape"}})
	if !errors.Is(err, store.ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
}
