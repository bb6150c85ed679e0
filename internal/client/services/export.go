package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/pdftranslator/internal/client/client"
	"github.com/dmitrijs2005/pdftranslator/internal/client/models"
	"github.com/dmitrijs2005/pdftranslator/internal/filex"
	"github.com/dmitrijs2005/pdftranslator/internal/logging"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

// ErrCellTooLong is returned by the xlsx export when a text exceeds the
// spreadsheet cell limit of excelize.TotalCellChars characters.
var ErrCellTooLong = errors.New("text too long for a spreadsheet cell")

type ExportFormat string

const (
	FormatText ExportFormat = "txt"
	FormatJSON ExportFormat = "json"
	FormatXLSX ExportFormat = "xlsx"
)

func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))) {
	case FormatText, "text":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown export format %q (want txt, json or xlsx)", s)
}

type ExportRequest struct {
	FileID int64
	Format ExportFormat
	Path   string
	// DownloadAll fetches every record in one request instead of paging.
	DownloadAll bool
}

// ExportService writes the translation records of a file to disk.
type ExportService interface {
	Export(ctx context.Context, req ExportRequest) (int, error)
}

type exportService struct {
	api         client.API
	log         logging.Logger
	pageSize    int
	concurrency int
}

// NewExportService pages through records pageSize at a time, fetching at
// most concurrency pages in parallel.
func NewExportService(api client.API, log logging.Logger, pageSize, concurrency int) ExportService {
	if log == nil {
		log = logging.Nop()
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &exportService{api: api, log: log.With("component", "export"), pageSize: pageSize, concurrency: concurrency}
}

// Export returns the number of records written.
func (s *exportService) Export(ctx context.Context, req ExportRequest) (int, error) {
	var (
		recs []models.TranslationRecord
		err  error
	)
	if req.DownloadAll {
		recs, err = s.api.AllTranslations(ctx, req.FileID)
	} else {
		recs, err = s.fetchPages(ctx, req.FileID)
	}
	if err != nil {
		return 0, fmt.Errorf("fetch records of file %d: %w", req.FileID, err)
	}

	if dir := filepath.Dir(req.Path); dir != "." {
		if err := filex.EnsureDir(dir); err != nil {
			return 0, err
		}
	}

	switch req.Format {
	case FormatText:
		err = writeText(req.Path, recs)
	case FormatJSON:
		err = writeJSON(req.Path, recs)
	case FormatXLSX:
		err = writeXLSX(req.Path, recs)
	default:
		err = fmt.Errorf("unknown export format %q", req.Format)
	}
	if err != nil {
		return 0, err
	}

	s.log.Info(ctx, "records exported", "file", req.FileID, "format", req.Format, "records", len(recs), "path", req.Path)
	return len(recs), nil
}

// fetchPages reads page 1 for the total, then the remaining pages in
// parallel, and returns the records in page order.
func (s *exportService) fetchPages(ctx context.Context, fileID int64) ([]models.TranslationRecord, error) {
	first, err := s.api.ListTranslations(ctx, fileID, 1, s.pageSize)
	if err != nil {
		return nil, err
	}

	pages := (first.Total + s.pageSize - 1) / s.pageSize
	if pages <= 1 {
		return first.Items, nil
	}

	results := make([][]models.TranslationRecord, pages)
	results[0] = first.Items

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency)
	for i := 1; i < pages; i++ {
		page := i
		eg.Go(func() error {
			res, err := s.api.ListTranslations(gctx, fileID, page+1, s.pageSize)
			if err != nil {
				return fmt.Errorf("page %d: %w", page+1, err)
			}
			results[page] = res.Items
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var out []models.TranslationRecord
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

type exportRow struct {
	ID             int64  `json:"id"`
	PageRange      string `json:"page_range"`
	ExtractedText  string `json:"extracted_text"`
	TranslatedText string `json:"translated_text"`
	EditedText     string `json:"edited_text"`
}

func toRows(recs []models.TranslationRecord) []exportRow {
	rows := make([]exportRow, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, exportRow{
			ID:             r.ID,
			PageRange:      r.PageRange,
			ExtractedText:  r.Field(models.FieldExtracted),
			TranslatedText: r.Field(models.FieldTranslated),
			EditedText:     r.Field(models.FieldEdited),
		})
	}
	return rows
}

// writeText writes the most refined text of each record.
func writeText(path string, recs []models.TranslationRecord) error {
	var buf bytes.Buffer
	for _, r := range recs {
		fmt.Fprintf(&buf, "=== pages %s ===\n%s\n\n", r.PageRange, r.BestText())
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func writeJSON(path string, recs []models.TranslationRecord) error {
	data, err := json.MarshalIndent(toRows(recs), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

const xlsxSheet = "Translations"

func writeXLSX(path string, recs []models.TranslationRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return err
	}

	header := []any{"ID", "Page range", "Extracted text", "Translated text", "Edited text"}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range toRows(recs) {
		for _, c := range []struct{ name, text string }{
			{"extracted text", r.ExtractedText},
			{"translated text", r.TranslatedText},
			{"edited text", r.EditedText},
		} {
			if n := utf8.RuneCountInString(c.text); n > excelize.TotalCellChars {
				return fmt.Errorf("%w: record %d %s has %d characters (limit %d), use txt or json",
					ErrCellTooLong, r.ID, c.name, n, excelize.TotalCellChars)
			}
		}
		row := []any{r.ID, r.PageRange, r.ExtractedText, r.TranslatedText, r.EditedText}
		if err := f.SetSheetRow(xlsxSheet, "A"+strconv.Itoa(i+2), &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
