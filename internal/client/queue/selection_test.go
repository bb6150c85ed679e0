package queue

import (
	"testing"

	"github.com/dmitrijs2005/pdftranslator/internal/client/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePager struct{ subs []func() }

func (p *fakePager) OnPageChange(fn func()) { p.subs = append(p.subs, fn) }

func (p *fakePager) turn() {
	for _, fn := range p.subs {
		fn()
	}
}

func TestSelection_ToggleAndItems(t *testing.T) {
	s := NewSelection(func() []int64 { return []int64{1, 2, 3} })

	for _, id := range []int64{3, 1, 2} {
		on, err := s.Toggle(id)
		require.NoError(t, err)
		assert.True(t, on)
	}
	on, err := s.Toggle(1)
	require.NoError(t, err)
	assert.False(t, on)

	assert.Equal(t, []int64{3, 2}, s.IDs())
	assert.Equal(t, []Item{
		{Action: services.ActionEdit, RecordID: 3},
		{Action: services.ActionEdit, RecordID: 2},
	}, s.Items(services.ActionEdit))
}

func TestSelection_ToggleRejectsRowsOffThePage(t *testing.T) {
	rows := []int64{5, 6}
	s := NewSelection(func() []int64 { return rows })

	_, err := s.Toggle(999)
	require.ErrorIs(t, err, ErrNotOnPage)
	assert.Empty(t, s.Items(services.ActionTranslate))

	_, err = s.Toggle(5)
	require.NoError(t, err)

	rows = []int64{7, 8}
	on, err := s.Toggle(5)
	require.NoError(t, err, "a stale row can still be deselected")
	assert.False(t, on)
	assert.Zero(t, s.Len())
}

func TestSelection_SelectAllUsesCurrentRows(t *testing.T) {
	rows := []int64{5, 6, 7}
	s := NewSelection(func() []int64 { return rows })

	_, err := s.Toggle(6)
	require.NoError(t, err)
	s.SelectAll()
	assert.Equal(t, []int64{5, 6, 7}, s.IDs())

	s.None()
	assert.Zero(t, s.Len())
}

func TestSelection_ResetOnPageChange(t *testing.T) {
	p := &fakePager{}
	s := NewSelection(func() []int64 { return []int64{1, 2} })
	s.ResetOn(p)

	s.SelectAll()
	assert.Equal(t, 2, s.Len())

	p.turn()
	assert.Empty(t, s.IDs())
	assert.Empty(t, s.Items(services.ActionTranslate))
}
