package services

import (
	"sync"

	"github.com/dmitrijs2005/pdftranslator/internal/client/client"
)

// Listing is one page of a CRUD listing as shown to the user.
type Listing[T any] struct {
	Items    []T
	Total    int
	Page     int
	PageSize int
}

// Pages is the number of pages needed for Total items.
func (l Listing[T]) Pages() int {
	if l.PageSize <= 0 {
		return 1
	}
	return (l.Total + l.PageSize - 1) / l.PageSize
}

// listing keeps the in-memory copy of a paginated collection.
type listing[T any] struct {
	mu       sync.Mutex
	page     int
	pageSize int
	total    int
	items    []T
	id       func(T) int64
}

func newListing[T any](pageSize int, id func(T) int64) *listing[T] {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &listing[T]{pageSize: pageSize, id: id}
}

func (l *listing[T]) set(page int, p client.Page[T]) Listing[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.page = page
	l.items = p.Items
	l.total = p.Total
	return l.snapshotLocked()
}

func (l *listing[T]) snapshot() Listing[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *listing[T]) snapshotLocked() Listing[T] {
	return Listing[T]{
		Items:    append([]T(nil), l.items...),
		Total:    l.total,
		Page:     l.page,
		PageSize: l.pageSize,
	}
}

func (l *listing[T]) get(id int64) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, it := range l.items {
		if l.id(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// update applies fn to the item with id and returns the result.
func (l *listing[T]) update(id int64, fn func(*T) error) (T, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.items {
		if l.id(l.items[i]) == id {
			next := l.items[i]
			if err := fn(&next); err != nil {
				return l.items[i], true, err
			}
			l.items[i] = next
			return next, true, nil
		}
	}
	var zero T
	return zero, false, nil
}

func (l *listing[T]) replace(id int64, v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.items {
		if l.id(l.items[i]) == id {
			l.items[i] = v
			return
		}
	}
}

func (l *listing[T]) remove(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.items {
		if l.id(l.items[i]) == id {
			l.items = append(l.items[:i:i], l.items[i+1:]...)
			if l.total > 0 {
				l.total--
			}
			return true
		}
	}
	return false
}
