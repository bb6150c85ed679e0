package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/pdftranslator/internal/client/alert"
	"github.com/dmitrijs2005/pdftranslator/internal/client/client"
	"github.com/dmitrijs2005/pdftranslator/internal/client/models"
	"github.com/dmitrijs2005/pdftranslator/internal/client/storage"
	"github.com/stretchr/testify/require"
)

// fakeAPI implements client.API. Unset hooks return zero values.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	LoginFn          func(identifier, password string) (models.Session, error)
	SignupFn         func(username, email, password string) (string, error)
	LogoutErr        error
	LogoutFn         func(accessToken string) error
	RefreshFn        func() error
	ProfileRet       models.Profile
	SettingsRet      models.Settings
	SavedSettings    []models.Settings
	ValidateFn       func(key string) (bool, error)
	ListFilesFn      func(page, limit int) (client.Page[models.UploadedFile], error)
	UpdateFileFn     func(id int64, upd models.FileUpdate) error
	DeleteFileErr    error
	UploadFn         func(req client.UploadRequest, progress func(int)) (string, error)
	ExtractFn        func(doc client.Document, r models.PageRange) (client.ExtractResult, error)
	TestFn           func(doc client.Document, r models.PageRange, sys, usr string) (client.TestTranslationResult, error)
	InitFn           func(fileID int64) (string, error)
	ListTransFn      func(fileID int64, page, limit int) (client.Page[models.TranslationRecord], error)
	AllTransFn       func(fileID int64) ([]models.TranslationRecord, error)
	UpdateTransFn    func(id int64, field models.TranslationField, value string) (string, error)
	RecordActionFn   func(action string, id int64) (string, error)
	ListPromptsFn    func(page, limit int) (client.Page[models.Prompt], error)
	CreatePromptFn   func(p models.Prompt) error
	UpdatePromptErr  error
	DeletePromptErr  error
	extractedRanges  []models.PageRange
	updatedFiles     []models.FileUpdate
	updatedTransVals []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: map[string]int{}}
}

func (f *fakeAPI) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) Login(_ context.Context, identifier, password string) (models.Session, error) {
	f.hit("Login")
	if f.LoginFn != nil {
		return f.LoginFn(identifier, password)
	}
	return models.Session{}, nil
}

func (f *fakeAPI) Signup(_ context.Context, username, email, password string) (string, error) {
	f.hit("Signup")
	if f.SignupFn != nil {
		return f.SignupFn(username, email, password)
	}
	return "", nil
}

func (f *fakeAPI) Logout(_ context.Context, accessToken string) error {
	f.hit("Logout")
	if f.LogoutFn != nil {
		return f.LogoutFn(accessToken)
	}
	return f.LogoutErr
}

func (f *fakeAPI) Profile(context.Context) (models.Profile, error) {
	f.hit("Profile")
	return f.ProfileRet, nil
}

func (f *fakeAPI) Refresh(context.Context) error {
	f.hit("Refresh")
	if f.RefreshFn != nil {
		return f.RefreshFn()
	}
	return nil
}

func (f *fakeAPI) GetSettings(context.Context) (models.Settings, error) {
	f.hit("GetSettings")
	return f.SettingsRet, nil
}

func (f *fakeAPI) SaveSettings(_ context.Context, s models.Settings) error {
	f.hit("SaveSettings")
	f.mu.Lock()
	f.SavedSettings = append(f.SavedSettings, s)
	f.mu.Unlock()
	return nil
}

func (f *fakeAPI) DeleteSettings(context.Context) error {
	f.hit("DeleteSettings")
	return nil
}

func (f *fakeAPI) ValidateAPIKey(_ context.Context, key string) (bool, error) {
	f.hit("ValidateAPIKey")
	if f.ValidateFn != nil {
		return f.ValidateFn(key)
	}
	return true, nil
}

func (f *fakeAPI) ListFiles(_ context.Context, page, limit int) (client.Page[models.UploadedFile], error) {
	f.hit("ListFiles")
	if f.ListFilesFn != nil {
		return f.ListFilesFn(page, limit)
	}
	return client.Page[models.UploadedFile]{}, nil
}

func (f *fakeAPI) UpdateFile(_ context.Context, id int64, upd models.FileUpdate) error {
	f.hit("UpdateFile")
	f.mu.Lock()
	f.updatedFiles = append(f.updatedFiles, upd)
	f.mu.Unlock()
	if f.UpdateFileFn != nil {
		return f.UpdateFileFn(id, upd)
	}
	return nil
}

func (f *fakeAPI) DeleteFile(context.Context, int64) error {
	f.hit("DeleteFile")
	return f.DeleteFileErr
}

func (f *fakeAPI) Upload(_ context.Context, req client.UploadRequest, progress func(int)) (string, error) {
	f.hit("Upload")
	if f.UploadFn != nil {
		return f.UploadFn(req, progress)
	}
	return "", nil
}

func (f *fakeAPI) ExtractText(_ context.Context, doc client.Document, r models.PageRange) (client.ExtractResult, error) {
	f.hit("ExtractText")
	f.mu.Lock()
	f.extractedRanges = append(f.extractedRanges, r)
	f.mu.Unlock()
	if f.ExtractFn != nil {
		return f.ExtractFn(doc, r)
	}
	return client.ExtractResult{}, nil
}

func (f *fakeAPI) ranges() []models.PageRange {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.PageRange(nil), f.extractedRanges...)
}

func (f *fakeAPI) TestTranslation(_ context.Context, doc client.Document, r models.PageRange, sys, usr string) (client.TestTranslationResult, error) {
	f.hit("TestTranslation")
	if f.TestFn != nil {
		return f.TestFn(doc, r, sys, usr)
	}
	return client.TestTranslationResult{}, nil
}

func (f *fakeAPI) InitTranslation(_ context.Context, fileID int64) (string, error) {
	f.hit("InitTranslation")
	if f.InitFn != nil {
		return f.InitFn(fileID)
	}
	return "", nil
}

func (f *fakeAPI) ListTranslations(_ context.Context, fileID int64, page, limit int) (client.Page[models.TranslationRecord], error) {
	f.hit("ListTranslations")
	if f.ListTransFn != nil {
		return f.ListTransFn(fileID, page, limit)
	}
	return client.Page[models.TranslationRecord]{}, nil
}

func (f *fakeAPI) AllTranslations(_ context.Context, fileID int64) ([]models.TranslationRecord, error) {
	f.hit("AllTranslations")
	if f.AllTransFn != nil {
		return f.AllTransFn(fileID)
	}
	return nil, nil
}

func (f *fakeAPI) UpdateTranslation(_ context.Context, id int64, field models.TranslationField, value string) (string, error) {
	f.hit("UpdateTranslation")
	f.mu.Lock()
	f.updatedTransVals = append(f.updatedTransVals, value)
	f.mu.Unlock()
	if f.UpdateTransFn != nil {
		return f.UpdateTransFn(id, field, value)
	}
	return value, nil
}

func (f *fakeAPI) recordAction(action string, id int64) (string, error) {
	f.hit(action)
	if f.RecordActionFn != nil {
		return f.RecordActionFn(action, id)
	}
	return "", nil
}

func (f *fakeAPI) PerformExtraction(_ context.Context, id int64) (string, error) {
	return f.recordAction("PerformExtraction", id)
}

func (f *fakeAPI) Translate(_ context.Context, id int64) (string, error) {
	return f.recordAction("Translate", id)
}

func (f *fakeAPI) Edit(_ context.Context, id int64) (string, error) {
	return f.recordAction("Edit", id)
}

func (f *fakeAPI) ListPrompts(_ context.Context, page, limit int) (client.Page[models.Prompt], error) {
	f.hit("ListPrompts")
	if f.ListPromptsFn != nil {
		return f.ListPromptsFn(page, limit)
	}
	return client.Page[models.Prompt]{}, nil
}

func (f *fakeAPI) CreatePrompt(_ context.Context, p models.Prompt) error {
	f.hit("CreatePrompt")
	if f.CreatePromptFn != nil {
		return f.CreatePromptFn(p)
	}
	return nil
}

func (f *fakeAPI) UpdatePrompt(context.Context, models.Prompt) error {
	f.hit("UpdatePrompt")
	return f.UpdatePromptErr
}

func (f *fakeAPI) DeletePrompt(context.Context, int64) error {
	f.hit("DeletePrompt")
	return f.DeletePromptErr
}

var _ client.API = (*fakeAPI)(nil)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newAlerts() *alert.Channel {
	return alert.New(time.Minute)
}

func lastAlert(t *testing.T, c *alert.Channel) alert.Alert {
	t.Helper()
	a, ok := c.Current()
	require.True(t, ok, "expected an alert")
	return a
}

func strptr(s string) *string { return &s }
