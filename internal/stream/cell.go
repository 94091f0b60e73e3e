package stream

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Cell is a mutable value with replay-one subscriptions: a new subscriber receives the
// current value right away, then every later value in the order it was set.
type Cell[T any] struct {
	mu    sync.Mutex
	value T
	subs  []*subscriber[T]
	clone func(T) T
	ser   serializer
}

// subscriber runs its deliveries through its own queue. The cell queue fixes the
// order of values; this one keeps fn from overlapping with itself and lets a replay
// run at once even while the cell is busy delivering on another goroutine.
type subscriber[T any] struct {
	fn     func(T)
	closed atomic.Bool
	ser    serializer
}

type CellOption[T any] func(*Cell[T])

// WithClone makes the cell hand out clone(v) instead of v, once per reader.
// Use it for slice/map values so readers never share memory with the writer or
// with each other.
func WithClone[T any](clone func(T) T) CellOption[T] {
	return func(c *Cell[T]) {
		c.clone = clone
	}
}

// SliceCell is a Cell of slices that copies on every read.
func SliceCell[E any](initial []E) *Cell[[]E] {
	return NewCell(initial, WithClone(cloneSlice[E]))
}

func cloneSlice[E any](s []E) []E {
	out := slices.Clone(s)
	if out == nil {
		out = []E{}
	}
	return out
}

func NewCell[T any](initial T, opts ...CellOption[T]) *Cell[T] {
	c := &Cell[T]{}
	for _, opt := range opts {
		opt(c)
	}
	c.value = c.copy(initial)
	return c
}

func (c *Cell[T]) copy(v T) T {
	if c.clone == nil {
		return v
	}
	return c.clone(v)
}

// Value returns the current value.
func (c *Cell[T]) Value() T {
	c.mu.Lock()
	v := c.value
	c.mu.Unlock()
	return c.copy(v)
}

// Set replaces the value and publishes it to every current subscriber.
func (c *Cell[T]) Set(v T) {
	c.Update(func(T) T { return v })
}

// Update replaces the value with fn(current) and publishes the result, which it also
// returns. fn runs under the cell lock: it must not touch the cell and must not modify
// current in place.
func (c *Cell[T]) Update(fn func(current T) T) T {
	c.mu.Lock()
	next := c.copy(fn(c.value))
	c.value = next
	snap := c.copy(next)
	targets := slices.Clone(c.subs)
	own := c.ser.push(func() {
		for _, s := range targets {
			c.deliver(s, snap)
		}
	})
	c.mu.Unlock()
	if own {
		c.ser.drain()
	}
	return c.copy(next)
}

// Subscribe registers fn and replays the current value to it.
func (c *Cell[T]) Subscribe(fn func(T)) Cancel {
	return c.subscribe(fn, true)
}

// Changes is the cell without the replay: subscribers only see values set after they
// subscribed.
func (c *Cell[T]) Changes() Stream[T] {
	return Func[T](func(fn func(T)) Cancel {
		return c.subscribe(fn, false)
	})
}

func (c *Cell[T]) subscribe(fn func(T), replay bool) Cancel {
	s := &subscriber[T]{fn: fn}
	c.mu.Lock()
	c.subs = append(c.subs, s)
	own := false
	if replay {
		// Queued under the cell lock, so any later value reaches s after the replay.
		snap := c.copy(c.value)
		own = s.ser.push(func() { s.call(snap) })
	}
	c.mu.Unlock()
	if own {
		s.ser.drain()
	}
	return once(func() {
		s.closed.Store(true)
		c.mu.Lock()
		c.subs = slices.DeleteFunc(c.subs, func(x *subscriber[T]) bool { return x == s })
		c.mu.Unlock()
	})
}

// Subscribers reports the number of live subscriptions.
func (c *Cell[T]) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

func (c *Cell[T]) deliver(s *subscriber[T], v T) {
	snap := c.copy(v)
	s.ser.do(func() { s.call(snap) })
}

func (s *subscriber[T]) call(v T) {
	if s.closed.Load() {
		return
	}
	s.fn(v)
}
