package stream

type Pair[A, B any] struct {
	First  A
	Second B
}

type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// join keeps the latest value of each input. It emits nothing until every input has
// produced at least once; after that any single update re-emits with the cached
// values of the others. All state changes run on the join's own serializer, so an
// emission always sees one consistent set of inputs.
type join struct {
	ser    serializer
	latest []any
	has    []bool
	ready  int
	closed bool
}

func newJoin(n int) *join {
	return &join{latest: make([]any, n), has: make([]bool, n)}
}

func (j *join) set(i int, v any, emit func([]any)) {
	j.ser.do(func() {
		if j.closed {
			return
		}
		if !j.has[i] {
			j.has[i] = true
			j.ready++
		}
		j.latest[i] = v
		if j.ready == len(j.has) {
			vals := make([]any, len(j.latest))
			copy(vals, j.latest)
			emit(vals)
		}
	})
}

func (j *join) cancel(inputs ...Cancel) Cancel {
	return once(func() {
		for _, c := range inputs {
			c()
		}
		j.ser.do(func() { j.closed = true })
	})
}

func as[T any](v any) T {
	t, _ := v.(T)
	return t
}

func CombineLatest2[A, B any](a Stream[A], b Stream[B]) Stream[Pair[A, B]] {
	return Func[Pair[A, B]](func(fn func(Pair[A, B])) Cancel {
		j := newJoin(2)
		emit := func(vals []any) {
			fn(Pair[A, B]{First: as[A](vals[0]), Second: as[B](vals[1])})
		}
		ca := a.Subscribe(func(v A) { j.set(0, v, emit) })
		cb := b.Subscribe(func(v B) { j.set(1, v, emit) })
		return j.cancel(ca, cb)
	})
}

func CombineLatest3[A, B, C any](a Stream[A], b Stream[B], c Stream[C]) Stream[Triple[A, B, C]] {
	return Func[Triple[A, B, C]](func(fn func(Triple[A, B, C])) Cancel {
		j := newJoin(3)
		emit := func(vals []any) {
			fn(Triple[A, B, C]{First: as[A](vals[0]), Second: as[B](vals[1]), Third: as[C](vals[2])})
		}
		ca := a.Subscribe(func(v A) { j.set(0, v, emit) })
		cb := b.Subscribe(func(v B) { j.set(1, v, emit) })
		cc := c.Subscribe(func(v C) { j.set(2, v, emit) })
		return j.cancel(ca, cb, cc)
	})
}
