package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/pdftranslator/internal/client/alert"
	"github.com/dmitrijs2005/pdftranslator/internal/client/client"
	"github.com/dmitrijs2005/pdftranslator/internal/client/models"
	"github.com/dmitrijs2005/pdftranslator/internal/common"
	"github.com/dmitrijs2005/pdftranslator/internal/debounce"
	"github.com/dmitrijs2005/pdftranslator/internal/logging"
)

// FileService manages the uploaded files listing.
//
// Field edits are applied to the listing at once and sent to the backend
// after editDelay of inactivity per file. Deletes change the listing only
// after the backend confirmed them.
type FileService interface {
	List(ctx context.Context, page int) (Listing[models.UploadedFile], error)
	Current() Listing[models.UploadedFile]
	Get(id int64) (models.UploadedFile, bool)
	Update(ctx context.Context, f models.UploadedFile) error
	UpdateField(id int64, field models.FileField, value string) error
	FlushEdits() int
	Delete(ctx context.Context, id int64) error
	Close()
}

type fileService struct {
	api     client.API
	alerts  *alert.Channel
	log     logging.Logger
	listing *listing[models.UploadedFile]
	edits   *debounce.Group[int64, models.FileUpdate]
}

func NewFileService(api client.API, alerts *alert.Channel, log logging.Logger, pageSize int, editDelay time.Duration) FileService {
	if log == nil {
		log = logging.Nop()
	}
	s := &fileService{
		api:     api,
		alerts:  alerts,
		log:     log.With("component", "files"),
		listing: newListing(pageSize, func(f models.UploadedFile) int64 { return f.ID }),
	}
	s.edits = debounce.NewGroup(editDelay, s.commit)
	return s
}

// List loads page (0-indexed).
func (s *fileService) List(ctx context.Context, page int) (Listing[models.UploadedFile], error) {
	if page < 0 {
		page = 0
	}
	size := s.listing.snapshot().PageSize

	res, err := s.api.ListFiles(ctx, page+1, size)
	if err != nil {
		s.alerts.Error(detailOr(err, "Failed to fetch files"))
		return Listing[models.UploadedFile]{}, err
	}
	return s.listing.set(page, res), nil
}

func (s *fileService) Current() Listing[models.UploadedFile] {
	return s.listing.snapshot()
}

func (s *fileService) Get(id int64) (models.UploadedFile, bool) {
	return s.listing.get(id)
}

func (s *fileService) Update(ctx context.Context, f models.UploadedFile) error {
	if err := s.api.UpdateFile(ctx, f.ID, f.UpdateBody()); err != nil {
		s.alerts.Error(detailOr(err, "Failed to update file"))
		return fmt.Errorf("%w: file %d: %w", common.ErrUpdate, f.ID, err)
	}
	s.listing.replace(f.ID, f)
	s.alerts.Success("File updated successfully")
	return nil
}

func (s *fileService) UpdateField(id int64, field models.FileField, value string) error {
	f, ok, err := s.listing.update(id, func(f *models.UploadedFile) error {
		return setFileField(f, field, value)
	})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("file %d: %w", id, common.ErrorNotFound)
	}
	s.edits.Trigger(id, f.UpdateBody())
	return nil
}

func (s *fileService) FlushEdits() int {
	return s.edits.Flush()
}

func (s *fileService) Delete(ctx context.Context, id int64) error {
	if err := s.api.DeleteFile(ctx, id); err != nil {
		s.alerts.Error(detailOr(err, "Failed to delete file"))
		return err
	}
	s.listing.remove(id)
	s.alerts.Success("File deleted successfully")
	return nil
}

func (s *fileService) Close() {
	s.edits.Flush()
}

func (s *fileService) commit(id int64, upd models.FileUpdate) {
	ctx := context.Background()
	if err := s.api.UpdateFile(ctx, id, upd); err != nil {
		s.log.Warn(ctx, "file update failed", "file", id, "error", err)
		s.alerts.Error(detailOr(err, "Failed to update file"))
		return
	}
	s.alerts.Success("File updated successfully")
}

func setFileField(f *models.UploadedFile, field models.FileField, value string) error {
	switch field {
	case models.FileFieldPageCount:
		value = strings.TrimSpace(value)
		if value == "" {
			f.PageCount = nil
			return nil
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("page_count must be a non-negative number, got %q", value)
		}
		f.PageCount = &n
	case models.FileFieldPageRange:
		if value != "" {
			if _, err := models.ParsePageRange(value); err != nil {
				return err
			}
		}
		f.PageRange = value
	case models.FileFieldSystemPrompt:
		f.SystemPrompt = value
	case models.FileFieldUserPrompt:
		f.UserPrompt = value
	default:
		return fmt.Errorf("unknown file field %q", field)
	}
	return nil
}
