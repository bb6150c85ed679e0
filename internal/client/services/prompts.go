package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pdftranslator/internal/client/alert"
	"github.com/dmitrijs2005/pdftranslator/internal/client/client"
	"github.com/dmitrijs2005/pdftranslator/internal/client/models"
	"github.com/dmitrijs2005/pdftranslator/internal/common"
	"github.com/dmitrijs2005/pdftranslator/internal/logging"
)

// PromptService manages the reusable prompt presets.
type PromptService interface {
	List(ctx context.Context, page int) (Listing[models.Prompt], error)
	Current() Listing[models.Prompt]
	ByType(ctx context.Context, t models.PromptType) ([]models.Prompt, error)
	Find(ctx context.Context, id int64) (models.Prompt, error)
	Create(ctx context.Context, p models.Prompt) error
	Update(ctx context.Context, p models.Prompt) error
	Delete(ctx context.Context, id int64) error
}

type promptService struct {
	api     client.API
	alerts  *alert.Channel
	log     logging.Logger
	listing *listing[models.Prompt]
}

func NewPromptService(api client.API, alerts *alert.Channel, log logging.Logger, pageSize int) PromptService {
	if log == nil {
		log = logging.Nop()
	}
	return &promptService{
		api:     api,
		alerts:  alerts,
		log:     log.With("component", "prompts"),
		listing: newListing(pageSize, func(p models.Prompt) int64 { return p.ID }),
	}
}

// List loads page (0-indexed).
func (s *promptService) List(ctx context.Context, page int) (Listing[models.Prompt], error) {
	if page < 0 {
		page = 0
	}
	size := s.listing.snapshot().PageSize

	res, err := s.api.ListPrompts(ctx, page+1, size)
	if err != nil {
		s.alerts.Error(detailOr(err, "Failed to fetch prompts"))
		return Listing[models.Prompt]{}, err
	}
	return s.listing.set(page, res), nil
}

func (s *promptService) Current() Listing[models.Prompt] {
	return s.listing.snapshot()
}

// ByType returns every preset of type t.
func (s *promptService) ByType(ctx context.Context, t models.PromptType) ([]models.Prompt, error) {
	all, err := s.api.ListPrompts(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	var out []models.Prompt
	for _, p := range all.Items {
		if p.PromptType == t {
			out = append(out, p)
		}
	}
	return out, nil
}

// Find looks the preset up in the listing, then on the backend.
func (s *promptService) Find(ctx context.Context, id int64) (models.Prompt, error) {
	if p, ok := s.listing.get(id); ok {
		return p, nil
	}
	all, err := s.api.ListPrompts(ctx, 0, 0)
	if err != nil {
		return models.Prompt{}, err
	}
	for _, p := range all.Items {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Prompt{}, fmt.Errorf("prompt %d: %w", id, common.ErrorNotFound)
}

func (s *promptService) Create(ctx context.Context, p models.Prompt) error {
	if err := validatePrompt(p); err != nil {
		s.alerts.Error(err.Error())
		return err
	}
	if err := s.api.CreatePrompt(ctx, p); err != nil {
		s.alerts.Error(detailOr(err, "Failed to create prompt"))
		return err
	}
	s.alerts.Success("Prompt created successfully")
	return nil
}

func (s *promptService) Update(ctx context.Context, p models.Prompt) error {
	if err := validatePrompt(p); err != nil {
		s.alerts.Error(err.Error())
		return err
	}
	if err := s.api.UpdatePrompt(ctx, p); err != nil {
		s.alerts.Error(detailOr(err, "Failed to update prompt"))
		return fmt.Errorf("%w: prompt %d: %w", common.ErrUpdate, p.ID, err)
	}
	s.listing.replace(p.ID, p)
	s.alerts.Success("Prompt updated successfully")
	return nil
}

func (s *promptService) Delete(ctx context.Context, id int64) error {
	if err := s.api.DeletePrompt(ctx, id); err != nil {
		s.alerts.Error(detailOr(err, "Failed to delete prompt"))
		return err
	}
	s.listing.remove(id)
	s.alerts.Success("Prompt deleted successfully")
	return nil
}

func validatePrompt(p models.Prompt) error {
	if strings.TrimSpace(p.SystemMessage) == "" || strings.TrimSpace(p.UserMessage) == "" {
		return common.ErrorIncorrectPrompt
	}
	if _, err := models.ParsePromptType(string(p.PromptType)); err != nil {
		return fmt.Errorf("%w: %w", common.ErrorIncorrectPrompt, err)
	}
	return nil
}
