// Package intake holds the PDF chosen for translation and its selected page
// range, and schedules text extraction when either changes.
//
// Loading a document extracts the default window right away. Range changes
// are debounced so only the last range of a burst is extracted.
package intake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/pdftranslator/internal/client/models"
	"github.com/dmitrijs2005/pdftranslator/internal/common"
	"github.com/dmitrijs2005/pdftranslator/internal/debounce"
	"github.com/dmitrijs2005/pdftranslator/internal/logging"
	"github.com/gabriel-vasile/mimetype"
)

const PDFMime = "application/pdf"

type State int

const (
	StateEmpty State = iota
	StateLoaded
)

func (s State) String() string {
	if s == StateLoaded {
		return "loaded"
	}
	return "empty"
}

// Document is a loaded PDF.
type Document struct {
	Name      string
	Data      []byte
	PageCount int
}

// ExtractFunc receives the document and range to extract.
type ExtractFunc func(doc Document, r models.PageRange)

type extraction struct {
	doc Document
	rng models.PageRange
}

type Selector struct {
	mu      sync.Mutex
	counter PageCounter
	window  int
	log     logging.Logger

	state State
	doc   Document
	rng   models.PageRange

	extract   ExtractFunc
	debouncer *debounce.Debouncer[extraction]
}

// New returns an empty selector. window is the size of the default range,
// delay the debounce applied to range changes.
func New(counter PageCounter, window int, delay time.Duration, extract ExtractFunc, log logging.Logger) *Selector {
	if counter == nil {
		counter = DefaultCounter()
	}
	if log == nil {
		log = logging.Nop()
	}
	s := &Selector{counter: counter, window: window, log: log, extract: extract}
	s.debouncer = debounce.New(delay, func(e extraction) { s.run(e) })
	return s
}

// Select loads the PDF at path.
func (s *Selector) Select(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return s.SelectReader(filepath.Base(path), data)
}

// SelectReader loads an in-memory PDF. On any error the previous document,
// if any, stays selected.
func (s *Selector) SelectReader(name string, data []byte) (Document, error) {
	if mt := mimetype.Detect(data); !mt.Is(PDFMime) {
		return Document{}, fmt.Errorf("%w: %s is %s", common.ErrInvalidFileType, name, mt.String())
	}

	n, err := s.counter.PageCount(data)
	if err != nil {
		return Document{}, fmt.Errorf("count pages of %s: %w", name, err)
	}

	doc := Document{Name: name, Data: data, PageCount: n}
	rng := models.DefaultRange(n, s.window)

	s.mu.Lock()
	s.debouncer.Stop()
	s.state = StateLoaded
	s.doc = doc
	s.rng = rng
	s.mu.Unlock()

	s.log.Info(context.Background(), "document loaded", "file", name, "pages", n, "range", rng.String())
	s.run(extraction{doc: doc, rng: rng})
	return doc, nil
}

// SetRange validates and stores a new range and schedules its extraction.
func (s *Selector) SetRange(start, end int) error {
	s.mu.Lock()
	if s.state != StateLoaded {
		s.mu.Unlock()
		return common.ErrNoFile
	}

	r := models.PageRange{Start: start, End: end}
	if err := r.Validate(s.doc.PageCount); err != nil {
		s.mu.Unlock()
		return err
	}
	s.rng = r
	doc := s.doc
	s.mu.Unlock()

	s.debouncer.Trigger(extraction{doc: doc, rng: r})
	return nil
}

// Flush runs a scheduled extraction now. It reports whether one was pending.
func (s *Selector) Flush() bool {
	return s.debouncer.Flush()
}

// Pending reports whether an extraction is scheduled.
func (s *Selector) Pending() bool {
	return s.debouncer.Pending()
}

// Reset discards the document and any scheduled extraction.
func (s *Selector) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debouncer.Stop()
	s.state = StateEmpty
	s.doc = Document{}
	s.rng = models.PageRange{}
}

func (s *Selector) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Document returns the loaded document and its current range.
func (s *Selector) Document() (Document, models.PageRange, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc, s.rng, s.state == StateLoaded
}

func (s *Selector) run(e extraction) {
	if s.extract != nil {
		s.extract(e.doc, e.rng)
	}
}
