package client

import (
	"context"

	"github.com/dmitrijs2005/pdftranslator/internal/client/models"
)

// API is the backend surface used by the client services.
type API interface {
	Login(ctx context.Context, identifier, password string) (models.Session, error)
	Signup(ctx context.Context, username, email, password string) (string, error)
	Logout(ctx context.Context, accessToken string) error
	Profile(ctx context.Context) (models.Profile, error)
	Refresh(ctx context.Context) error

	GetSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, s models.Settings) error
	DeleteSettings(ctx context.Context) error
	ValidateAPIKey(ctx context.Context, key string) (bool, error)

	ListFiles(ctx context.Context, page, limit int) (Page[models.UploadedFile], error)
	UpdateFile(ctx context.Context, id int64, upd models.FileUpdate) error
	DeleteFile(ctx context.Context, id int64) error
	Upload(ctx context.Context, req UploadRequest, progress func(int)) (string, error)

	ExtractText(ctx context.Context, doc Document, r models.PageRange) (ExtractResult, error)
	TestTranslation(ctx context.Context, doc Document, r models.PageRange, systemPrompt, userPrompt string) (TestTranslationResult, error)

	InitTranslation(ctx context.Context, fileID int64) (string, error)
	ListTranslations(ctx context.Context, fileID int64, page, limit int) (Page[models.TranslationRecord], error)
	AllTranslations(ctx context.Context, fileID int64) ([]models.TranslationRecord, error)
	UpdateTranslation(ctx context.Context, id int64, field models.TranslationField, value string) (string, error)
	PerformExtraction(ctx context.Context, id int64) (string, error)
	Translate(ctx context.Context, id int64) (string, error)
	Edit(ctx context.Context, id int64) (string, error)

	ListPrompts(ctx context.Context, page, limit int) (Page[models.Prompt], error)
	CreatePrompt(ctx context.Context, p models.Prompt) error
	UpdatePrompt(ctx context.Context, p models.Prompt) error
	DeletePrompt(ctx context.Context, id int64) error
}

var _ API = (*HTTPClient)(nil)
