// Package alert holds the single user-visible notification. A new alert
// replaces the current one and restarts its expiry timer.
package alert

import (
	"sync"
	"time"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// DefaultTTL is how long an alert stays visible.
const DefaultTTL = 3000 * time.Millisecond

type Alert struct {
	Message string
	Kind    Kind
	At      time.Time
}

// Channel is safe for concurrent use. No method blocks on subscribers:
// they are called after the lock is released.
type Channel struct {
	mu      sync.Mutex
	ttl     time.Duration
	current *Alert
	timer   *time.Timer
	gen     uint64
	subs    []func(Alert, bool)
}

func New(ttl time.Duration) *Channel {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Channel{ttl: ttl}
}

// Set shows a new alert, cancelling the expiry of the previous one.
func (c *Channel) Set(kind Kind, message string) {
	a := Alert{Message: message, Kind: kind, At: time.Now()}

	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.current = &a
	c.timer = time.AfterFunc(c.ttl, func() { c.expire(gen) })
	subs := c.subscribers()
	c.mu.Unlock()

	notify(subs, a, true)
}

func (c *Channel) Success(message string) { c.Set(KindSuccess, message) }
func (c *Channel) Error(message string)   { c.Set(KindError, message) }
func (c *Channel) Info(message string)    { c.Set(KindInfo, message) }

// Current returns the visible alert, if any.
func (c *Channel) Current() (Alert, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Alert{}, false
	}
	return *c.current, true
}

// Dismiss clears the current alert immediately.
func (c *Channel) Dismiss() {
	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
	prev := *c.current
	c.current = nil
	subs := c.subscribers()
	c.mu.Unlock()

	notify(subs, prev, false)
}

// Subscribe registers fn. It receives every new alert with visible=true and
// the expired or dismissed alert with visible=false.
func (c *Channel) Subscribe(fn func(a Alert, visible bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// expire clears the alert only if no newer one was set after the timer
// for gen was armed.
func (c *Channel) expire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.current == nil {
		c.mu.Unlock()
		return
	}
	prev := *c.current
	c.current = nil
	c.timer = nil
	subs := c.subscribers()
	c.mu.Unlock()

	notify(subs, prev, false)
}

func (c *Channel) subscribers() []func(Alert, bool) {
	return append([]func(Alert, bool){}, c.subs...)
}

func notify(subs []func(Alert, bool), a Alert, visible bool) {
	for _, fn := range subs {
		fn(a, visible)
	}
}
