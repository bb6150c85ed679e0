package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/pdftranslator/internal/client/alert"
	"github.com/dmitrijs2005/pdftranslator/internal/client/client"
	"github.com/dmitrijs2005/pdftranslator/internal/client/models"
	"github.com/dmitrijs2005/pdftranslator/internal/common"
	"github.com/dmitrijs2005/pdftranslator/internal/debounce"
	"github.com/dmitrijs2005/pdftranslator/internal/logging"
)

// RecordAction is a per-record pipeline step.
type RecordAction string

const (
	ActionExtract   RecordAction = "extract"
	ActionTranslate RecordAction = "translate"
	ActionEdit      RecordAction = "edit"
)

func ParseRecordAction(s string) (RecordAction, error) {
	switch RecordAction(strings.ToLower(strings.TrimSpace(s))) {
	case ActionExtract:
		return ActionExtract, nil
	case ActionTranslate:
		return ActionTranslate, nil
	case ActionEdit:
		return ActionEdit, nil
	}
	return "", fmt.Errorf("unknown action %q (want extract, translate or edit)", s)
}

type fieldKey struct {
	id    int64
	field models.TranslationField
}

// Records is the listing of translation records of the selected file.
// Pages are 0-indexed here and 1-indexed on the wire.
type Records struct {
	mu sync.Mutex

	api    client.API
	alerts *alert.Channel
	log    logging.Logger

	fileID   int64
	page     int
	pageSize int
	items    []models.TranslationRecord
	total    int

	edits        *debounce.Group[fieldKey, string]
	onPageChange []func()
}

func NewRecords(api client.API, alerts *alert.Channel, log logging.Logger, pageSize int, editDelay time.Duration) *Records {
	if log == nil {
		log = logging.Nop()
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	r := &Records{api: api, alerts: alerts, log: log.With("component", "records"), pageSize: pageSize}
	r.edits = debounce.NewGroup(editDelay, r.commitEdit)
	return r
}

// OnPageChange registers fn to run whenever a different page or file is
// shown.
func (r *Records) OnPageChange(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onPageChange = append(r.onPageChange, fn)
}

// SelectFile switches the listing to fileID and loads its first page.
func (r *Records) SelectFile(ctx context.Context, fileID int64) error {
	r.mu.Lock()
	fileChanged := r.fileID != fileID
	changed := fileChanged || r.page != 0
	r.fileID = fileID
	r.mu.Unlock()

	if fileChanged {
		r.edits.Flush()
	}
	return r.load(ctx, 0, changed)
}

// Load fetches page (0-indexed) of the selected file.
func (r *Records) Load(ctx context.Context, page int) error {
	if page < 0 {
		page = 0
	}
	r.mu.Lock()
	changed := r.page != page
	r.mu.Unlock()
	return r.load(ctx, page, changed)
}

func (r *Records) load(ctx context.Context, page int, changed bool) error {
	r.mu.Lock()
	fileID, size := r.fileID, r.pageSize
	r.mu.Unlock()

	if fileID == 0 {
		return common.ErrNoFile
	}

	res, err := r.api.ListTranslations(ctx, fileID, page+1, size)
	if err != nil {
		r.alerts.Error(detailOr(err, "Failed to fetch translations"))
		return err
	}

	r.mu.Lock()
	r.page = page
	r.items = res.Items
	r.total = res.Total
	subs := append([]func(){}, r.onPageChange...)
	r.mu.Unlock()

	if changed {
		for _, fn := range subs {
			fn()
		}
	}
	return nil
}

func (r *Records) Records() []models.TranslationRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.TranslationRecord(nil), r.items...)
}

// Record returns the listed record with id.
func (r *Records) Record(id int64) (models.TranslationRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.ID == id {
			return it, true
		}
	}
	return models.TranslationRecord{}, false
}

func (r *Records) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

func (r *Records) Page() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.page
}

func (r *Records) FileID() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fileID
}

// PageCount is the number of pages of the listing.
func (r *Records) PageCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (r.total + r.pageSize - 1) / r.pageSize
}

func (r *Records) PerformExtraction(ctx context.Context, id int64) error {
	return r.Run(ctx, ActionExtract, id)
}

func (r *Records) Translate(ctx context.Context, id int64) error {
	return r.Run(ctx, ActionTranslate, id)
}

func (r *Records) EditByModel(ctx context.Context, id int64) error {
	return r.Run(ctx, ActionEdit, id)
}

// Run performs action on record id and replaces exactly the field the
// action produces.
func (r *Records) Run(ctx context.Context, action RecordAction, id int64) error {
	var (
		call     func(context.Context, int64) (string, error)
		field    models.TranslationField
		sentinel error
		failMsg  string
		okMsg    string
	)
	switch action {
	case ActionExtract:
		call, field, sentinel = r.api.PerformExtraction, models.FieldExtracted, common.ErrExtraction
		failMsg, okMsg = "Failed to extract text", "Text extracted successfully"
	case ActionTranslate:
		call, field, sentinel = r.api.Translate, models.FieldTranslated, common.ErrTranslation
		failMsg, okMsg = "Failed to translate text", "Text translated successfully"
		r.alerts.Info("Translation in progress...")
	case ActionEdit:
		call, field, sentinel = r.api.Edit, models.FieldEdited, common.ErrEdit
		failMsg, okMsg = "Failed to edit the text by AI", "Text edited successfully"
		r.alerts.Info("Editing in progress...")
	default:
		return fmt.Errorf("unknown action %q", action)
	}

	value, err := call(ctx, id)
	if err != nil {
		r.log.Warn(ctx, "record action failed", "action", action, "record", id, "error", err)
		r.alerts.Error(detailOr(err, failMsg))
		return fmt.Errorf("%w: record %d: %w", sentinel, id, err)
	}

	r.apply(id, field, value)
	r.log.Info(ctx, "record action done", "action", action, "record", id)
	r.alerts.Success(okMsg)
	return nil
}

// UpdateField schedules a debounced update of one field. Rapid edits of the
// same field collapse into one request with the last value.
func (r *Records) UpdateField(id int64, field models.TranslationField, value string) {
	r.edits.Trigger(fieldKey{id: id, field: field}, value)
}

// FlushEdits sends all scheduled field updates now.
func (r *Records) FlushEdits() int {
	return r.edits.Flush()
}

// PendingEdits is the number of scheduled field updates.
func (r *Records) PendingEdits() int {
	return r.edits.Pending()
}

// UpdateFieldNow sends a field update and applies the stored value.
func (r *Records) UpdateFieldNow(ctx context.Context, id int64, field models.TranslationField, value string) error {
	stored, err := r.api.UpdateTranslation(ctx, id, field, value)
	if err != nil {
		r.log.Warn(ctx, "field update failed", "record", id, "field", field, "error", err)
		r.alerts.Error(detailOr(err, "Failed to update translation"))
		return fmt.Errorf("%w: record %d: %w", common.ErrUpdate, id, err)
	}
	r.apply(id, field, stored)
	r.alerts.Success("Translation updated")
	return nil
}

// Close sends scheduled field updates.
func (r *Records) Close() {
	r.edits.Flush()
}

func (r *Records) commitEdit(k fieldKey, value string) {
	_ = r.UpdateFieldNow(context.Background(), k.id, k.field, value)
}

func (r *Records) apply(id int64, field models.TranslationField, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].SetField(field, value)
			return
		}
	}
}
