package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/pdftranslator/internal/common"
)

// PageRange is a 1-based inclusive page interval.
type PageRange struct {
	Start int
	End   int
}

// ParsePageRange parses the "start-end" form stored on files and records.
// A single page ("4") is accepted as "4-4".
func ParsePageRange(s string) (PageRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PageRange{}, fmt.Errorf("%w: empty", common.ErrInvalidRange)
	}

	startStr, endStr, found := strings.Cut(s, "-")
	if !found {
		endStr = startStr
	}

	start, err := strconv.Atoi(strings.TrimSpace(startStr))
	if err != nil {
		return PageRange{}, fmt.Errorf("%w: %q", common.ErrInvalidRange, s)
	}
	end, err := strconv.Atoi(strings.TrimSpace(endStr))
	if err != nil {
		return PageRange{}, fmt.Errorf("%w: %q", common.ErrInvalidRange, s)
	}
	return PageRange{Start: start, End: end}, nil
}

func (r PageRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Pages returns the number of pages covered by the range.
func (r PageRange) Pages() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Validate checks 1 ≤ Start ≤ End ≤ pageCount.
func (r PageRange) Validate(pageCount int) error {
	switch {
	case r.Start < 1:
		return fmt.Errorf("%w: start page %d is below 1", common.ErrInvalidRange, r.Start)
	case r.End < r.Start:
		return fmt.Errorf("%w: end page %d is before start page %d", common.ErrInvalidRange, r.End, r.Start)
	case r.End > pageCount:
		return fmt.Errorf("%w: end page %d exceeds page count %d", common.ErrInvalidRange, r.End, pageCount)
	}
	return nil
}

// DefaultRange is the leading window selected when a document is loaded:
// [1, min(window, pageCount)].
func DefaultRange(pageCount, window int) PageRange {
	if window < 1 {
		window = 1
	}
	end := min(window, pageCount)
	if end < 1 {
		end = 1
	}
	return PageRange{Start: 1, End: end}
}
