package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/pdftranslator/internal/client/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedRunner blocks every item until release is signalled and records
// the order and concurrency of calls.
type gatedRunner struct {
	mu        sync.Mutex
	started   []int64
	running   int
	maxActive int
	release   chan struct{}
	fail      map[int64]bool
}

func newGatedRunner() *gatedRunner {
	return &gatedRunner{release: make(chan struct{}), fail: map[int64]bool{}}
}

func (r *gatedRunner) Run(ctx context.Context, _ services.RecordAction, id int64) error {
	r.mu.Lock()
	r.started = append(r.started, id)
	r.running++
	r.maxActive = max(r.maxActive, r.running)
	fail := r.fail[id]
	r.mu.Unlock()

	select {
	case <-r.release:
	case <-ctx.Done():
	}

	r.mu.Lock()
	r.running--
	r.mu.Unlock()
	if fail {
		return errors.New("backend said no")
	}
	return nil
}

func (r *gatedRunner) startedIDs() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.started...)
}

func items(ids ...int64) []Item {
	out := make([]Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, Item{Action: services.ActionTranslate, RecordID: id})
	}
	return out
}

func startQueue(t *testing.T, r Runner) *BulkQueue {
	t.Helper()
	q := New(r, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = q.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return q
}

func TestBulkQueue_FIFOOneInFlight(t *testing.T) {
	r := newGatedRunner()
	r.fail[2] = true
	q := startQueue(t, r)

	var mu sync.Mutex
	var finished []int64
	var failed []int64
	q.OnDone(func(it Item, err error) {
		mu.Lock()
		defer mu.Unlock()
		finished = append(finished, it.RecordID)
		if err != nil {
			failed = append(failed, it.RecordID)
		}
	})

	q.Enqueue(items(1, 2, 3)...)

	for i := 0; i < 3; i++ {
		require.Eventually(t, func() bool { return len(r.startedIDs()) == i+1 }, time.Second, time.Millisecond)
		cur, ok := q.Processing()
		require.True(t, ok)
		assert.Equal(t, int64(i+1), cur.RecordID)
		r.release <- struct{}{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, q.Idle(ctx))

	assert.Equal(t, []int64{1, 2, 3}, r.startedIDs())
	assert.Equal(t, 1, r.maxActive)
	mu.Lock()
	assert.Equal(t, []int64{1, 2, 3}, finished)
	assert.Equal(t, []int64{2}, failed)
	mu.Unlock()
	assert.Zero(t, q.Len())
}

func TestBulkQueue_ClearKeepsInFlight(t *testing.T) {
	r := newGatedRunner()
	q := startQueue(t, r)

	q.Enqueue(items(10, 11, 12)...)
	require.Eventually(t, func() bool { return len(r.startedIDs()) == 1 }, time.Second, time.Millisecond)

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, items(11, 12), q.Pending())
	assert.Equal(t, 2, q.Clear())
	assert.Equal(t, 1, q.Len())

	r.release <- struct{}{}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, q.Idle(ctx))
	assert.Equal(t, []int64{10}, r.startedIDs())
}

func TestBulkQueue_EnqueueWhileBusyAppends(t *testing.T) {
	r := newGatedRunner()
	q := startQueue(t, r)

	q.Enqueue(items(1)...)
	require.Eventually(t, func() bool { return len(r.startedIDs()) == 1 }, time.Second, time.Millisecond)
	q.Enqueue(items(2)...)

	r.release <- struct{}{}
	require.Eventually(t, func() bool { return len(r.startedIDs()) == 2 }, time.Second, time.Millisecond)
	r.release <- struct{}{}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, q.Idle(ctx))
	assert.Equal(t, []int64{1, 2}, r.startedIDs())
}

func TestBulkQueue_IdleWhenEmpty(t *testing.T) {
	q := New(newGatedRunner(), nil)
	require.NoError(t, q.Idle(context.Background()))
	_, ok := q.Processing()
	assert.False(t, ok)
}

func TestBulkQueue_IdleHonoursContext(t *testing.T) {
	q := New(newGatedRunner(), nil)
	q.Enqueue(items(1)...)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, q.Idle(ctx), context.DeadlineExceeded)
}
