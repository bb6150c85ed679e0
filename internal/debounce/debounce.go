// Package debounce collapses bursts of calls into a single delayed action.
//
// Each Trigger cancels the previously scheduled run (the timer is stopped, not
// merely ignored) and schedules a new one with the latest value. Only the
// value of the last Trigger inside the quiet window reaches the action.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs action with the most recent value once no Trigger happened
// for delay. It is safe for concurrent use.
type Debouncer[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	action  func(T)
	timer   *time.Timer
	value   T
	pending bool
	// gen invalidates timers that already fired but lost the race for mu.
	gen uint64
}

func New[T any](delay time.Duration, action func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, action: action}
}

// Trigger (re)schedules the action with v.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.value = v
	d.pending = true
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if !d.pending || gen != d.gen {
		d.mu.Unlock()
		return
	}
	v := d.take()
	d.mu.Unlock()

	d.action(v)
}

// Flush runs the pending action immediately on the calling goroutine.
// It reports whether anything was pending.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return false
	}
	v := d.take()
	d.mu.Unlock()

	d.action(v)
	return true
}

// Stop drops the pending action, if any.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.take()
}

// Pending reports whether an action is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// take clears the scheduled state and returns the pending value. mu held.
func (d *Debouncer[T]) take() T {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	v := d.value
	var zero T
	d.value = zero
	d.pending = false
	d.gen++
	return v
}
