package app

// Signal is a synchronous, in-process event stream. Emit calls every
// subscriber inline, in subscription order, before returning. A Signal is
// owned by one update loop and is not safe for concurrent use.
type Signal[T any] struct {
	nextID uint64
	subs   []subscription[T]
}

// subscription pairs a handler with the id used to release it.
type subscription[T any] struct {
	id uint64
	fn func(T)
}

// NewSignal constructs an empty signal.
func NewSignal[T any]() *Signal[T] {
	return &Signal[T]{}
}

// Subscribe registers fn and returns a function that releases it. The
// returned function is idempotent.
func (s *Signal[T]) Subscribe(fn func(T)) func() {
	if s == nil || fn == nil {
		return func() {}
	}
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription[T]{id: id, fn: fn})
	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers v to the current subscribers.
func (s *Signal[T]) Emit(v T) {
	if s == nil {
		return
	}
	// Snapshot so a handler that unsubscribes mid-emit does not shift the loop.
	subs := append([]subscription[T](nil), s.subs...)
	for _, sub := range subs {
		sub.fn(v)
	}
}

// Len reports the number of live subscribers.
func (s *Signal[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.subs)
}
