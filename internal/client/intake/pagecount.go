package intake

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageCounter reads the number of pages of an in-memory PDF.
type PageCounter interface {
	PageCount(data []byte) (int, error)
}

// PDFCPUCounter counts pages with pdfcpu in relaxed validation mode.
type PDFCPUCounter struct{}

func (PDFCPUCounter) PageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu: %w", err)
	}
	return n, nil
}

// LedongthucCounter reads the page tree with ledongthuc/pdf. It tolerates
// some files pdfcpu rejects.
type LedongthucCounter struct{}

func (LedongthucCounter) PageCount(data []byte) (n int, err error) {
	// the reader panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("pdf: malformed document: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("pdf: %w", err)
	}
	return r.NumPage(), nil
}

// FallbackCounter tries each counter in order and returns the first
// positive page count.
type FallbackCounter []PageCounter

func (f FallbackCounter) PageCount(data []byte) (int, error) {
	var errs []error
	for _, c := range f {
		n, err := c.PageCount(data)
		if err == nil && n > 0 {
			return n, nil
		}
		if err == nil {
			err = errors.New("document has no pages")
		}
		errs = append(errs, err)
	}
	return 0, errors.Join(errs...)
}

// DefaultCounter is pdfcpu with ledongthuc/pdf as fallback.
func DefaultCounter() PageCounter {
	return FallbackCounter{PDFCPUCounter{}, LedongthucCounter{}}
}
