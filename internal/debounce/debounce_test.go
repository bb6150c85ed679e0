package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder[T any] struct {
	mu    sync.Mutex
	calls []T
}

func (r *recorder[T]) record(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, v)
}

func (r *recorder[T]) snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.calls...)
}

func TestDebouncer_OnlyLastValueFires(t *testing.T) {
	rec := &recorder[int]{}
	d := New(40*time.Millisecond, rec.record)

	for i := 1; i <= 5; i++ {
		d.Trigger(i)
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, []int{5}, rec.snapshot())
	assert.False(t, d.Pending())
}

func TestDebouncer_SeparateWindowsFireSeparately(t *testing.T) {
	rec := &recorder[string]{}
	d := New(10*time.Millisecond, rec.record)

	d.Trigger("a")
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 2*time.Millisecond)
	d.Trigger("b")
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, 2*time.Millisecond)

	assert.Equal(t, []string{"a", "b"}, rec.snapshot())
}

func TestDebouncer_FlushRunsImmediatelyOnce(t *testing.T) {
	rec := &recorder[int]{}
	d := New(time.Hour, rec.record)

	d.Trigger(7)
	require.True(t, d.Pending())
	require.True(t, d.Flush())
	require.False(t, d.Flush())

	assert.Equal(t, []int{7}, rec.snapshot())
}

func TestDebouncer_StopCancels(t *testing.T) {
	var fired atomic.Int32
	d := New(10*time.Millisecond, func(int) { fired.Add(1) })

	d.Trigger(1)
	d.Stop()
	time.Sleep(40 * time.Millisecond)

	assert.Equal(t, int32(0), fired.Load())
	assert.False(t, d.Pending())
}

type fieldKey struct {
	ID    int
	Field string
}

func TestGroup_KeysAreIndependent(t *testing.T) {
	var mu sync.Mutex
	got := map[fieldKey]string{}
	calls := 0

	g := NewGroup(20*time.Millisecond, func(k fieldKey, v string) {
		mu.Lock()
		defer mu.Unlock()
		got[k] = v
		calls++
	})

	g.Trigger(fieldKey{1, "translated_text"}, "h")
	g.Trigger(fieldKey{1, "translated_text"}, "he")
	g.Trigger(fieldKey{1, "translated_text"}, "hello")
	g.Trigger(fieldKey{2, "edited_text"}, "world")
	assert.Equal(t, 2, g.Pending())

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "hello", got[fieldKey{1, "translated_text"}])
	assert.Equal(t, "world", got[fieldKey{2, "edited_text"}])
}

func TestGroup_FlushAndStop(t *testing.T) {
	rec := &recorder[string]{}
	g := NewGroup(time.Hour, func(k string, v string) { rec.record(k + "=" + v) })

	g.Trigger("a", "1")
	g.Trigger("b", "2")
	assert.Equal(t, 2, g.Flush())
	assert.ElementsMatch(t, []string{"a=1", "b=2"}, rec.snapshot())

	g.Trigger("c", "3")
	g.Stop()
	assert.Equal(t, 0, g.Pending())
	assert.Len(t, rec.snapshot(), 2)
}
