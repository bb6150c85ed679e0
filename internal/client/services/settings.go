package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pdftranslator/internal/client/alert"
	"github.com/dmitrijs2005/pdftranslator/internal/client/client"
	"github.com/dmitrijs2005/pdftranslator/internal/client/models"
	"github.com/dmitrijs2005/pdftranslator/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pdftranslator/internal/common"
	"github.com/dmitrijs2005/pdftranslator/internal/cryptox"
	"github.com/dmitrijs2005/pdftranslator/internal/logging"
)

// SettingsService reads and writes the user's model settings. The last
// known values are cached locally; the API key is sealed at rest.
type SettingsService interface {
	Get(ctx context.Context) (models.Settings, error)
	Cached(ctx context.Context) (models.Settings, error)
	Save(ctx context.Context, s models.Settings) error
	Delete(ctx context.Context) error
	Profile(ctx context.Context) (models.Profile, error)
}

type settingsService struct {
	api     client.API
	prefs   metadata.Repository
	sealKey []byte
	alerts  *alert.Channel
	log     logging.Logger
}

func NewSettingsService(api client.API, prefs metadata.Repository, sealKey []byte, alerts *alert.Channel, log logging.Logger) SettingsService {
	if log == nil {
		log = logging.Nop()
	}
	return &settingsService{api: api, prefs: prefs, sealKey: sealKey, alerts: alerts, log: log.With("component", "settings")}
}

func (s *settingsService) Get(ctx context.Context) (models.Settings, error) {
	st, err := s.api.GetSettings(ctx)
	if err != nil {
		s.alerts.Error(detailOr(err, "Failed to fetch settings"))
		return models.Settings{}, err
	}
	if err := s.cache(ctx, st); err != nil {
		s.log.Warn(ctx, "failed to cache settings", "error", err)
	}
	return st, nil
}

func (s *settingsService) Cached(ctx context.Context) (models.Settings, error) {
	model, err := metadata.GetString(ctx, s.prefs, metadata.KeyPreferredModel)
	if err != nil {
		return models.Settings{}, err
	}
	st := models.Settings{PreferredModel: model}

	sealed, err := s.prefs.Get(ctx, metadata.KeyAPIKey)
	if err != nil {
		return models.Settings{}, err
	}
	if sealed != nil {
		if err := cryptox.Open(sealed, s.sealKey, &st.APIKey); err != nil {
			return models.Settings{}, fmt.Errorf("open cached api key: %w", err)
		}
	}
	return st, nil
}

// Save validates a non-empty API key with the backend first and refuses
// keys it reports invalid.
func (s *settingsService) Save(ctx context.Context, st models.Settings) error {
	st.PreferredModel = strings.TrimSpace(st.PreferredModel)
	st.APIKey = strings.TrimSpace(st.APIKey)

	if st.PreferredModel == "" {
		st.PreferredModel = models.Models[0].ID
	}
	if _, known := models.LookupModel(st.PreferredModel); !known {
		s.log.Warn(ctx, "saving unknown model", "model", st.PreferredModel)
	}

	if st.APIKey != "" {
		valid, err := s.api.ValidateAPIKey(ctx, st.APIKey)
		if err != nil {
			s.alerts.Error(detailOr(err, "Failed to validate API key"))
			return err
		}
		if !valid {
			s.alerts.Error("Invalid API key")
			return common.ErrInvalidKey
		}
	}

	if err := s.api.SaveSettings(ctx, st); err != nil {
		s.alerts.Error(detailOr(err, "Failed to save settings"))
		return err
	}
	if err := s.cache(ctx, st); err != nil {
		return err
	}
	s.alerts.Success("Settings saved successfully")
	return nil
}

func (s *settingsService) Delete(ctx context.Context) error {
	if err := s.api.DeleteSettings(ctx); err != nil {
		s.alerts.Error(detailOr(err, "Failed to delete settings"))
		return err
	}
	if err := s.prefs.Delete(ctx, metadata.KeyPreferredModel); err != nil {
		return err
	}
	if err := s.prefs.Delete(ctx, metadata.KeyAPIKey); err != nil {
		return err
	}
	s.alerts.Success("Settings deleted")
	return nil
}

func (s *settingsService) Profile(ctx context.Context) (models.Profile, error) {
	p, err := s.api.Profile(ctx)
	if err != nil {
		s.alerts.Error(detailOr(err, "Failed to fetch profile"))
	}
	return p, err
}

func (s *settingsService) cache(ctx context.Context, st models.Settings) error {
	if err := metadata.SetString(ctx, s.prefs, metadata.KeyPreferredModel, st.PreferredModel); err != nil {
		return err
	}
	if st.APIKey == "" {
		return s.prefs.Delete(ctx, metadata.KeyAPIKey)
	}
	sealed, err := cryptox.Seal(st.APIKey, s.sealKey)
	if err != nil {
		return err
	}
	return s.prefs.Set(ctx, metadata.KeyAPIKey, sealed)
}
