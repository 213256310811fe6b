package quest

import (
	"sync"
	"sync/atomic"
)

// Subscription is the handle returned when registering a quest observer.
// Unsubscribe is idempotent and safe to call from inside a callback.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe stops further deliveries to the observer
func (s *Subscription) Unsubscribe() {
	if s == nil || s.cancel == nil {
		return
	}
	s.once.Do(s.cancel)
}

type observer[T any] struct {
	id      uint64
	fn      func(T)
	removed atomic.Bool
}

// observerList delivers notifications synchronously in subscription order.
// The slice is copy-on-write: dispatch iterates the snapshot it started
// with, and removal only flags the entry, so unsubscribing mid-dispatch
// never disturbs the loop.
type observerList[T any] struct {
	mu      sync.Mutex
	nextID  uint64
	entries []*observer[T]
}

func (l *observerList[T]) subscribe(fn func(T)) *Subscription {
	l.mu.Lock()
	l.nextID++
	obs := &observer[T]{id: l.nextID, fn: fn}
	entries := make([]*observer[T], len(l.entries), len(l.entries)+1)
	copy(entries, l.entries)
	l.entries = append(entries, obs)
	l.mu.Unlock()

	return &Subscription{cancel: func() { l.remove(obs) }}
}

func (l *observerList[T]) remove(obs *observer[T]) {
	obs.removed.Store(true)

	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]*observer[T], 0, len(l.entries))
	for _, e := range l.entries {
		if e.id != obs.id {
			entries = append(entries, e)
		}
	}
	l.entries = entries
}

func (l *observerList[T]) snapshot() []*observer[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries
}

func (l *observerList[T]) dispatch(v T) {
	for _, obs := range l.snapshot() {
		if obs.removed.Load() {
			continue
		}
		obs.fn(v)
	}
}

func (l *observerList[T]) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
