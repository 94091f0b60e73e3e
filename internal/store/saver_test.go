package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

type recordingSave struct {
	mu    sync.Mutex
	calls [][]string
	fail  func(n int) error
	block chan struct{}
}

func (r *recordingSave) save(ctx context.Context, snap []string) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, snap)
	if r.fail != nil {
		return r.fail(len(r.calls))
	}
	return nil
}

func (r *recordingSave) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}

func TestSaver_SavesEverySnapshotOnceInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &recordingSave{}
	s := NewSaver[string](rec.save, SaverOpts{Name: "test"})

	s.Enqueue([]string{"a"})
	s.Enqueue([]string{"a", "b"})
	s.Enqueue([]string{"b"})

	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	want := [][]string{{"a"}, {"a", "b"}, {"b"}}
	if diff := cmp.Diff(want, rec.snapshot()); diff != "" {
		t.Fatalf("saves (-want +got):\n%s", diff)
	}
	if st := s.Stats(); st.Saved != 3 || st.Pending != 0 || st.Failed != 0 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestSaver_EnqueueCopiesSnapshot(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &recordingSave{block: make(chan struct{})}
	s := NewSaver[string](rec.save, SaverOpts{Name: "test"})

	snap := []string{"a"}
	s.Enqueue(snap)
	snap[0] = "mutated"
	close(rec.block)

	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := rec.snapshot(); got[0][0] != "a" {
		t.Fatalf("saver saw caller mutation: %v", got)
	}
}

func TestSaver_EnqueueDoesNotWaitForSlowSaves(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &recordingSave{block: make(chan struct{})}
	s := NewSaver[string](rec.save, SaverOpts{Name: "test"})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			s.Enqueue([]string{"x"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a pending save")
	}
	if st := s.Stats(); st.Pending != 10 {
		t.Fatalf("expected 10 pending, got %+v", st)
	}

	close(rec.block)
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if n := len(rec.snapshot()); n != 10 {
		t.Fatalf("expected 10 saves, got %d", n)
	}
}

func TestSaver_FailuresAreReportedNotReturned(t *testing.T) {
	defer goleak.VerifyNone(t)

	boom := errors.New("disk full")
	rec := &recordingSave{fail: func(n int) error {
		if n == 1 {
			return boom
		}
		return nil
	}}
	var reported []error
	var mu sync.Mutex
	s := NewSaver[string](rec.save, SaverOpts{Name: "test", OnError: func(err error) {
		mu.Lock()
		reported = append(reported, err)
		mu.Unlock()
	}})

	s.Enqueue([]string{"a"})
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	st := s.Stats()
	if st.Failed != 1 || !errors.Is(st.LastErr, boom) {
		t.Fatalf("expected one failure, got %+v", st)
	}

	s.Enqueue([]string{"a", "b"})
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	st = s.Stats()
	if st.Saved != 1 || st.LastErr != nil {
		t.Fatalf("expected recovery on next save, got %+v", st)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(reported) != 1 || !errors.Is(reported[0], boom) {
		t.Fatalf("expected boom to be reported once, got %v", reported)
	}
}

func TestSaver_FlushHonoursContext(t *testing.T) {
	rec := &recordingSave{block: make(chan struct{})}
	s := NewSaver[string](rec.save, SaverOpts{Name: "test"})
	s.Enqueue([]string{"a"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Flush(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	close(rec.block)
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestSaver_CloseFlushesThenDrops(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &recordingSave{}
	s := NewSaver[string](rec.save, SaverOpts{Name: "test"})
	s.Enqueue([]string{"a"})

	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n := len(rec.snapshot()); n != 1 {
		t.Fatalf("expected the queued snapshot to be saved on close, got %d saves", n)
	}

	s.Enqueue([]string{"late"})
	if st := s.Stats(); st.Dropped != 1 || st.Pending != 0 {
		t.Fatalf("expected late snapshot to be dropped, got %+v", st)
	}
}
