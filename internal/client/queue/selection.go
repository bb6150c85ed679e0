package queue

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/pdftranslator/internal/client/services"
)

// ErrNotOnPage is returned when selecting a record the current page does
// not show.
var ErrNotOnPage = errors.New("record is not on the current page")

// Pager notifies when a different page of records is shown.
type Pager interface {
	OnPageChange(fn func())
}

// Selection is the set of selected record rows on the current page.
type Selection struct {
	mu    sync.Mutex
	ids   []int64
	rows  func() []int64
	onset map[int64]struct{}
}

// NewSelection returns an empty selection. rows lists the record ids of the
// page currently shown and backs SelectAll.
func NewSelection(rows func() []int64) *Selection {
	return &Selection{rows: rows, onset: map[int64]struct{}{}}
}

// ResetOn clears the selection whenever p shows another page.
func (s *Selection) ResetOn(p Pager) {
	p.OnPageChange(s.None)
}

// Toggle flips id and reports whether it is selected afterwards. Only rows
// of the current page can be selected; deselecting always works.
func (s *Selection) Toggle(id int64) (bool, error) {
	var rows []int64
	if s.rows != nil {
		rows = s.rows()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.onset[id]; ok {
		delete(s.onset, id)
		s.ids = slices.DeleteFunc(s.ids, func(v int64) bool { return v == id })
		return false, nil
	}
	if !slices.Contains(rows, id) {
		return false, fmt.Errorf("%w: %d", ErrNotOnPage, id)
	}
	s.onset[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true, nil
}

func (s *Selection) SelectAll() {
	var rows []int64
	if s.rows != nil {
		rows = s.rows()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = nil
	s.onset = map[int64]struct{}{}
	for _, id := range rows {
		if _, dup := s.onset[id]; dup {
			continue
		}
		s.onset[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
}

func (s *Selection) None() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = nil
	s.onset = map[int64]struct{}{}
}

// IDs returns the selected ids in selection order.
func (s *Selection) IDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.ids...)
}

func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Items pairs every selected record with action.
func (s *Selection) Items(action services.RecordAction) []Item {
	ids := s.IDs()
	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		items = append(items, Item{Action: action, RecordID: id})
	}
	return items
}
