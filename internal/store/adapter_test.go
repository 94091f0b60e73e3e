package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"

	"github.com/AntohaY/quicklists/internal/model"
)

func backendsUnderTest(t *testing.T) map[string]Backend {
	t.Helper()
	ctx := context.Background()

	sqliteBackend, err := OpenSQLite(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqliteBackend.Close() })

	fileBackend, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("open file backend: %v", err)
	}

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	redisBackend := NewRedisBackend(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")
	t.Cleanup(func() { _ = redisBackend.Close() })

	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"file":   fileBackend,
		"sqlite": sqliteBackend,
		"redis":  redisBackend,
	}
}

func TestAdapter_RoundTripsBothCollections(t *testing.T) {
	for name, b := range backendsUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			a := NewAdapter(b)

			checklists := []model.Checklist{{ID: "trip", Title: "Trip"}, {ID: "groceries", Title: "Groceries"}}
			items := []model.ChecklistItem{
				{ID: "1", ChecklistID: "trip", Title: "Passport"},
				{ID: "2", ChecklistID: "groceries", Title: "Milk", Checked: true},
			}
			if err := a.SaveChecklists(ctx, checklists); err != nil {
				t.Fatalf("SaveChecklists: %v", err)
			}
			if err := a.SaveItems(ctx, items); err != nil {
				t.Fatalf("SaveItems: %v", err)
			}

			gotChecklists, err := a.LoadChecklists(ctx)
			if err != nil {
				t.Fatalf("LoadChecklists: %v", err)
			}
			if diff := cmp.Diff(checklists, gotChecklists); diff != "" {
				t.Fatalf("checklists (-want +got):\n%s", diff)
			}
			gotItems, err := a.LoadItems(ctx)
			if err != nil {
				t.Fatalf("LoadItems: %v", err)
			}
			if diff := cmp.Diff(items, gotItems); diff != "" {
				t.Fatalf("items (-want +got):\n%s", diff)
			}

			// Saves overwrite the whole collection.
			if err := a.SaveChecklists(ctx, checklists[:1]); err != nil {
				t.Fatalf("SaveChecklists (shrink): %v", err)
			}
			gotChecklists, err = a.LoadChecklists(ctx)
			if err != nil {
				t.Fatalf("LoadChecklists (after shrink): %v", err)
			}
			if len(gotChecklists) != 1 || gotChecklists[0].ID != "trip" {
				t.Fatalf("expected only trip after overwrite, got %+v", gotChecklists)
			}
		})
	}
}

func TestAdapter_MissingCollectionsLoadEmpty(t *testing.T) {
	for name, b := range backendsUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			a := NewAdapter(b)
			got, err := a.LoadChecklists(context.Background())
			if err != nil {
				t.Fatalf("LoadChecklists: %v", err)
			}
			if got == nil || len(got) != 0 {
				t.Fatalf("expected empty non-nil slice, got %#v", got)
			}
			items, err := a.LoadItems(context.Background())
			if err != nil {
				t.Fatalf("LoadItems: %v", err)
			}
			if items == nil || len(items) != 0 {
				t.Fatalf("expected empty non-nil items, got %#v", items)
			}
		})
	}
}

func TestAdapter_LoadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter(NewMemoryBackend())
	if err := a.SaveChecklists(ctx, []model.Checklist{{ID: "a", Title: "A"}}); err != nil {
		t.Fatalf("SaveChecklists: %v", err)
	}
	first, err := a.LoadChecklists(ctx)
	if err != nil {
		t.Fatalf("LoadChecklists: %v", err)
	}
	first[0].Title = "changed by caller"
	second, err := a.LoadChecklists(ctx)
	if err != nil {
		t.Fatalf("LoadChecklists again: %v", err)
	}
	if second[0].Title != "A" {
		t.Fatalf("load observed a caller mutation: %+v", second)
	}
}

func TestAdapter_CorruptBlobIsAnError(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ChecklistsKey+".json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if _, err := NewAdapter(b).LoadChecklists(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestFileBackend_WritesAreAtomicRenames(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	if err := b.Put(context.Background(), ChecklistItemsKey, []byte(`[]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ChecklistItemsKey+".json.tmp")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected temp file to be renamed away, stat err=%v", err)
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Kind: "floppy"})
	if !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestOpen_DefaultsToSQLite(t *testing.T) {
	b, err := Open(context.Background(), Options{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()
	if _, ok := b.(*SQLiteBackend); !ok {
		t.Fatalf("expected sqlite backend, got %T", b)
	}
}

func TestOpenRedis_PingsServer(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	b, err := OpenRedis(context.Background(), RedisOptions{Addr: mr.Addr(), KeyPrefix: "test:"})
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	defer b.Close()
	if err := b.Put(context.Background(), ChecklistsKey, []byte(`[]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if got, err := mr.Get("test:" + ChecklistsKey); err != nil || got != "[]" {
		t.Fatalf("expected prefixed key in redis, got %q err=%v", got, err)
	}

	if _, err := OpenRedis(context.Background(), RedisOptions{}); err == nil {
		t.Fatalf("expected error for missing address")
	}
}
