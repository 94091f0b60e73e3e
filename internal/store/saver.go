package store

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
)

var ErrSaverClosed = errors.New("saver closed")

// SaveFunc writes one full snapshot of a collection.
type SaveFunc[T any] func(ctx context.Context, snapshot []T) error

// Saver is the fire-and-forget persistence side channel. Enqueue never waits on I/O;
// a background writer saves snapshots one by one in enqueue order, one save per
// snapshot. The writer goroutine only lives while there is work queued.
type Saver[T any] struct {
	name    string
	save    SaveFunc[T]
	log     logrus.FieldLogger
	onError func(error)

	mu       sync.Mutex
	queue    [][]T
	running  bool
	inFlight bool
	closed   bool
	// idle is closed when the writer drains the queue; nil while no writer runs.
	idle chan struct{}

	saved   uint64
	failed  uint64
	dropped uint64
	lastErr error
}

type SaverOpts struct {
	// Name identifies the collection in logs.
	Name   string
	Logger logrus.FieldLogger
	// OnError is called from the writer goroutine after each failed save.
	OnError func(error)
}

type SaverStats struct {
	Pending int
	Saved   uint64
	Failed  uint64
	Dropped uint64
	LastErr error
}

func NewSaver[T any](save SaveFunc[T], opts SaverOpts) *Saver[T] {
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Saver[T]{
		name:    opts.Name,
		save:    save,
		log:     log.WithField("collection", opts.Name),
		onError: opts.OnError,
	}
}

// Enqueue schedules snapshot for saving. Snapshots enqueued after Close are dropped
// and counted.
func (s *Saver[T]) Enqueue(snapshot []T) {
	s.mu.Lock()
	if s.closed {
		s.dropped++
		s.mu.Unlock()
		s.log.WithError(ErrSaverClosed).Error("snapshot dropped")
		return
	}
	s.queue = append(s.queue, slices.Clone(snapshot))
	if !s.running {
		s.running = true
		s.idle = make(chan struct{})
		go s.run()
	}
	s.mu.Unlock()
}

func (s *Saver[T]) run() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.running = false
			close(s.idle)
			s.idle = nil
			s.mu.Unlock()
			return
		}
		snap := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.inFlight = true
		s.mu.Unlock()

		err := s.save(context.Background(), snap)

		s.mu.Lock()
		s.inFlight = false
		if err != nil {
			s.failed++
			s.lastErr = err
		} else {
			s.saved++
			s.lastErr = nil
		}
		s.mu.Unlock()

		if err != nil {
			s.log.WithError(err).WithField("size", len(snap)).Warn("save failed; keeping in-memory state")
			if s.onError != nil {
				s.onError(err)
			}
		} else {
			s.log.WithField("size", len(snap)).Debug("saved")
		}
	}
}

// Flush waits until every enqueued snapshot has been handed to the save function.
func (s *Saver[T]) Flush(ctx context.Context) error {
	for {
		s.mu.Lock()
		idle := s.idle
		s.mu.Unlock()
		if idle == nil {
			return nil
		}
		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops accepting snapshots and flushes the queue.
func (s *Saver[T]) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.Flush(ctx)
}

func (s *Saver[T]) Stats() SaverStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := len(s.queue)
	if s.inFlight {
		pending++
	}
	return SaverStats{
		Pending: pending,
		Saved:   s.saved,
		Failed:  s.failed,
		Dropped: s.dropped,
		LastErr: s.lastErr,
	}
}
