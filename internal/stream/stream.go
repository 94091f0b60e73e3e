// Package stream holds the push-based primitives the stores and the view-model are
// built on: a replay-one Cell, derived streams (Map, Filter, Tap, SwitchMap) and a
// combine-latest join.
//
// Delivery is synchronous. Every source serializes its own deliveries, so a subscriber
// sees values in publish order and a callback that publishes again (to the same or
// another source) is queued behind the current delivery instead of re-entering it.
// A Cell's replay reaches a new subscriber before Subscribe returns, from any
// goroutine and from inside another delivery.
package stream

import "sync"

// Cancel stops a subscription. It is safe to call more than once.
type Cancel func()

type Stream[T any] interface {
	Subscribe(fn func(T)) Cancel
}

// Func adapts a subscribe function to Stream.
type Func[T any] func(fn func(T)) Cancel

func (f Func[T]) Subscribe(fn func(T)) Cancel { return f(fn) }

// serializer runs queued tasks one at a time, in order. Whoever finds the queue idle
// drains it; everyone else only enqueues.
type serializer struct {
	mu       sync.Mutex
	queue    []func()
	draining bool
}

// push enqueues task and reports whether the caller must drain.
func (s *serializer) push(task func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, task)
	if s.draining {
		return false
	}
	s.draining = true
	return true
}

func (s *serializer) drain() {
	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			s.draining = false
			s.mu.Unlock()
			panic(r)
		}
	}()
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.mu.Unlock()
			return
		}
		next := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()
		next()
	}
}

func (s *serializer) do(task func()) {
	if s.push(task) {
		s.drain()
	}
}

func once(fn func()) Cancel {
	var o sync.Once
	return func() { o.Do(fn) }
}
