// Package queue serializes batched per-record actions: items run one at a
// time in FIFO order, and clearing the queue never interrupts the item in
// flight.
package queue

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/pdftranslator/internal/client/services"
	"github.com/dmitrijs2005/pdftranslator/internal/logging"
)

// Item is one queued action on one translation record.
type Item struct {
	Action   services.RecordAction
	RecordID int64
}

// Runner performs a single record action. services.Records implements it.
type Runner interface {
	Run(ctx context.Context, action services.RecordAction, id int64) error
}

type BulkQueue struct {
	mu       sync.Mutex
	items    []Item
	inFlight *Item
	waiters  []chan struct{}
	onDone   []func(Item, error)

	runner Runner
	log    logging.Logger
	wake   chan struct{}
}

func New(runner Runner, log logging.Logger) *BulkQueue {
	if log == nil {
		log = logging.Nop()
	}
	return &BulkQueue{
		runner: runner,
		log:    log.With("component", "queue"),
		wake:   make(chan struct{}, 1),
	}
}

// OnDone registers fn to run after every finished item, failed or not.
func (q *BulkQueue) OnDone(fn func(Item, error)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onDone = append(q.onDone, fn)
}

// Enqueue appends items to the tail. Processing happens in Run.
func (q *BulkQueue) Enqueue(items ...Item) {
	if len(items) == 0 {
		return
	}
	q.mu.Lock()
	q.items = append(q.items, items...)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Clear drops every item that has not started and returns how many were
// dropped.
func (q *BulkQueue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.items)
	q.items = nil
	q.notifyIdleLocked()
	return n
}

// Len counts queued items plus the one in flight.
func (q *BulkQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.items)
	if q.inFlight != nil {
		n++
	}
	return n
}

// Processing returns the item in flight.
func (q *BulkQueue) Processing() (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.inFlight == nil {
		return Item{}, false
	}
	return *q.inFlight, true
}

// Pending returns the items not started yet, head first.
func (q *BulkQueue) Pending() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Item(nil), q.items...)
}

// Run drains the queue whenever items are enqueued, until ctx ends.
func (q *BulkQueue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.wake:
			q.drain(ctx)
		}
	}
}

func (q *BulkQueue) drain(ctx context.Context) {
	for ctx.Err() == nil {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.notifyIdleLocked()
			q.mu.Unlock()
			return
		}
		head := q.items[0]
		q.items = q.items[1:]
		q.inFlight = &head
		q.mu.Unlock()

		err := q.runner.Run(ctx, head.Action, head.RecordID)
		if err != nil {
			q.log.Warn(ctx, "bulk item failed", "action", head.Action, "record", head.RecordID, "error", err)
		} else {
			q.log.Debug(ctx, "bulk item done", "action", head.Action, "record", head.RecordID)
		}

		q.mu.Lock()
		q.inFlight = nil
		subs := append([]func(Item, error){}, q.onDone...)
		q.mu.Unlock()

		for _, fn := range subs {
			fn(head, err)
		}
	}
}

// Idle blocks until nothing is queued or in flight.
func (q *BulkQueue) Idle(ctx context.Context) error {
	q.mu.Lock()
	if len(q.items) == 0 && q.inFlight == nil {
		q.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	q.waiters = append(q.waiters, ch)
	q.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *BulkQueue) notifyIdleLocked() {
	if len(q.items) != 0 || q.inFlight != nil {
		return
	}
	for _, ch := range q.waiters {
		close(ch)
	}
	q.waiters = nil
}
