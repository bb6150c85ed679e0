// Package netx holds small HTTP body helpers shared by the client transport.
package netx

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

type formField struct {
	name  string
	value string
}

type formFile struct {
	field    string
	filename string
	data     []byte
}

// Form is a multipart/form-data body that can be encoded any number of
// times, so a request retried after a token refresh sends identical bytes.
type Form struct {
	fields []formField
	files  []formFile
}

func NewForm() *Form {
	return &Form{}
}

// Field appends a text field and returns the form for chaining.
func (f *Form) Field(name, value string) *Form {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// File appends a file part.
func (f *Form) File(field, filename string, data []byte) *Form {
	f.files = append(f.files, formFile{field: field, filename: filename, data: data})
	return f
}

// Encode renders the form. It returns the body and its content type.
func (f *Form) Encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, ff := range f.files {
		part, err := w.CreateFormFile(ff.field, ff.filename)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", ff.field, err)
		}
		if _, err := part.Write(ff.data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", ff.field, err)
		}
	}
	for _, fd := range f.fields {
		if err := w.WriteField(fd.name, fd.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", fd.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// ProgressReader reports how much of a body of known size has been read as
// a percentage. fn is called only when the percentage changes.
type ProgressReader struct {
	r    io.Reader
	size int64
	read int64
	last int
	fn   func(percent int)
}

func NewProgressReader(r io.Reader, size int64, fn func(percent int)) *ProgressReader {
	return &ProgressReader{r: r, size: size, last: -1, fn: fn}
}

func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	p.report(err == io.EOF)
	return n, err
}

func (p *ProgressReader) report(done bool) {
	if p.fn == nil {
		return
	}
	pct := 100
	if p.size > 0 && !done {
		pct = int(p.read * 100 / p.size)
	}
	if pct > 100 {
		pct = 100
	}
	if pct != p.last {
		p.last = pct
		p.fn(pct)
	}
}
