package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalEmitsInSubscriptionOrder(t *testing.T) {
	s := NewSignal[int]()
	var got []string
	s.Subscribe(func(v int) { got = append(got, "a") })
	s.Subscribe(func(v int) { got = append(got, "b") })

	s.Emit(1)

	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 2, s.Len())
}

func TestSignalUnsubscribeIsIdempotent(t *testing.T) {
	s := NewSignal[string]()
	calls := 0
	unsub := s.Subscribe(func(string) { calls++ })
	keep := 0
	s.Subscribe(func(string) { keep++ })

	unsub()
	unsub()
	s.Emit("x")

	assert.Zero(t, calls)
	assert.Equal(t, 1, keep)
	assert.Equal(t, 1, s.Len())
}

func TestSignalUnsubscribeDuringEmit(t *testing.T) {
	s := NewSignal[struct{}]()
	var order []int
	var unsubFirst func()
	unsubFirst = s.Subscribe(func(struct{}) {
		order = append(order, 1)
		unsubFirst()
	})
	s.Subscribe(func(struct{}) { order = append(order, 2) })

	s.Emit(struct{}{})
	s.Emit(struct{}{})

	require.Equal(t, []int{1, 2, 2}, order)
}

func TestNilSignalIsInert(t *testing.T) {
	var s *Signal[int]
	unsub := s.Subscribe(func(int) { t.Fatal("nil signal delivered") })
	s.Emit(1)
	unsub()
	assert.Zero(t, s.Len())

	live := NewSignal[int]()
	live.Subscribe(nil)
	assert.Zero(t, live.Len())
}
