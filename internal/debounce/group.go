package debounce

import (
	"sync"
	"time"
)

// Group keeps one Debouncer per key, so edits to different records or fields
// do not cancel each other.
type Group[K comparable, T any] struct {
	mu     sync.Mutex
	delay  time.Duration
	action func(K, T)
	items  map[K]*Debouncer[T]
}

func NewGroup[K comparable, T any](delay time.Duration, action func(K, T)) *Group[K, T] {
	return &Group[K, T]{delay: delay, action: action, items: make(map[K]*Debouncer[T])}
}

// Trigger (re)schedules the action for key with v.
func (g *Group[K, T]) Trigger(key K, v T) {
	g.get(key).Trigger(v)
}

func (g *Group[K, T]) get(key K) *Debouncer[T] {
	g.mu.Lock()
	defer g.mu.Unlock()

	d, ok := g.items[key]
	if !ok {
		d = New(g.delay, func(v T) { g.action(key, v) })
		g.items[key] = d
	}
	return d
}

func (g *Group[K, T]) snapshot() []*Debouncer[T] {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]*Debouncer[T], 0, len(g.items))
	for _, d := range g.items {
		out = append(out, d)
	}
	return out
}

// Flush runs every pending action now and returns how many ran.
func (g *Group[K, T]) Flush() int {
	n := 0
	for _, d := range g.snapshot() {
		if d.Flush() {
			n++
		}
	}
	return n
}

// Stop drops every pending action.
func (g *Group[K, T]) Stop() {
	for _, d := range g.snapshot() {
		d.Stop()
	}
}

// Pending returns the number of keys with a scheduled action.
func (g *Group[K, T]) Pending() int {
	n := 0
	for _, d := range g.snapshot() {
		if d.Pending() {
			n++
		}
	}
	return n
}
