package stream

func Map[A, B any](src Stream[A], f func(A) B) Stream[B] {
	return Func[B](func(fn func(B)) Cancel {
		return src.Subscribe(func(a A) { fn(f(a)) })
	})
}

func Filter[T any](src Stream[T], keep func(T) bool) Stream[T] {
	return Func[T](func(fn func(T)) Cancel {
		return src.Subscribe(func(v T) {
			if keep(v) {
				fn(v)
			}
		})
	})
}

// Tap runs effect for every value before passing it on. The effect runs once per
// subscriber; attach shared side effects to the source instead.
func Tap[T any](src Stream[T], effect func(T)) Stream[T] {
	return Func[T](func(fn func(T)) Cancel {
		return src.Subscribe(func(v T) {
			effect(v)
			fn(v)
		})
	})
}

// SwitchMap subscribes to f(a) for the latest outer value a, dropping the previous
// inner subscription first. Values from a dropped inner stream are never delivered.
func SwitchMap[A, B any](src Stream[A], f func(A) Stream[B]) Stream[B] {
	return Func[B](func(fn func(B)) Cancel {
		var (
			ser    serializer
			inner  Cancel
			gen    uint64
			closed bool
		)
		outer := src.Subscribe(func(a A) {
			ser.do(func() {
				if closed {
					return
				}
				if inner != nil {
					inner()
					inner = nil
				}
				gen++
				g := gen
				inner = f(a).Subscribe(func(b B) {
					ser.do(func() {
						if closed || g != gen {
							return
						}
						fn(b)
					})
				})
			})
		})
		return once(func() {
			outer()
			ser.do(func() {
				closed = true
				if inner != nil {
					inner()
					inner = nil
				}
			})
		})
	})
}

// Collect subscribes to src and appends every value to the returned slice pointer.
// It is meant for tests. Deliveries to one subscription never overlap, so values may
// arrive from any goroutine, but read the slice only after the writers are done.
func Collect[T any](src Stream[T]) (*[]T, Cancel) {
	var got []T
	cancel := src.Subscribe(func(v T) { got = append(got, v) })
	return &got, cancel
}

// Latest returns the value src replays on subscription, if any. Streams derived from
// cells replay synchronously, so this is safe from any goroutine and from inside a
// delivery.
func Latest[T any](src Stream[T]) (T, bool) {
	var (
		v  T
		ok bool
	)
	cancel := src.Subscribe(func(x T) {
		v = x
		ok = true
	})
	cancel()
	return v, ok
}
