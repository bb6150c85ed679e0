package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/pdftranslator/internal/client/models"
	"github.com/dmitrijs2005/pdftranslator/internal/netx"
)

// Page is one page of a listing. Page numbers sent to the backend are
// 1-indexed.
type Page[T any] struct {
	Items []T
	Total int
}

// Document is a PDF held in memory.
type Document struct {
	Name string
	Data []byte
}

type ExtractResult struct {
	ExtractedText string `json:"extractedText"`
	NumTokens     int    `json:"numTokens"`
	MaxTokens     int    `json:"maxTokens,omitempty"`
}

type TestTranslationResult struct {
	Translation      string `json:"translation"`
	CompletionTokens int    `json:"completionTokens"`
	PromptTokens     int    `json:"promptTokens"`
	ExtractedText    string `json:"extractedText,omitempty"`
}

// UploadRequest is the multipart body of POST /upload.
type UploadRequest struct {
	Document     Document
	Range        models.PageRange
	PageCount    int
	SystemPrompt string
	UserPrompt   string
}

type messageResponse struct {
	Message string `json:"message"`
}

// auth

func (c *HTTPClient) Login(ctx context.Context, identifier, password string) (models.Session, error) {
	req := map[string]string{"identifier": identifier, "password": password}

	var resp struct {
		AccessToken  string          `json:"access_token"`
		RefreshToken string          `json:"refresh_token"`
		UserID       json.RawMessage `json:"userId"`
	}
	if err := c.Request(ctx, http.MethodPost, "/auth/login", req, &resp, WithoutAuth()); err != nil {
		return models.Session{}, err
	}

	return models.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		UserID:       rawID(resp.UserID),
	}, nil
}

func (c *HTTPClient) Signup(ctx context.Context, username, email, password string) (string, error) {
	req := map[string]string{"username": username, "email": email, "password": password}

	var resp messageResponse
	if err := c.Request(ctx, http.MethodPost, "/auth/signup", req, &resp, WithoutAuth()); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Logout revokes accessToken on the backend. The token is passed in since
// the local session is already gone when this runs.
func (c *HTTPClient) Logout(ctx context.Context, accessToken string) error {
	return c.Request(ctx, http.MethodPost, "/auth/logout", nil, nil, WithToken(accessToken))
}

func (c *HTTPClient) Profile(ctx context.Context) (models.Profile, error) {
	var p models.Profile
	err := c.Request(ctx, http.MethodGet, "/auth/profile", nil, &p)
	return p, err
}

// RefreshAccessToken performs the raw refresh call. The refresh token is
// sent both in the body and as the bearer credential.
func (c *HTTPClient) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	// the stored access token is not attached; the refresh token is the credential here
	err := c.do(ctx, http.MethodPost, "/auth/refresh",
		map[string]string{"refresh_token": refreshToken}, &resp, &requestOptions{}, refreshToken)
	if err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", &RequestError{Status: http.StatusUnauthorized, Message: "refresh returned no access token"}
	}
	return resp.AccessToken, nil
}

// settings

func (c *HTTPClient) GetSettings(ctx context.Context) (models.Settings, error) {
	var s models.Settings
	err := c.Request(ctx, http.MethodGet, "/user/settings", nil, &s)
	return s, err
}

func (c *HTTPClient) SaveSettings(ctx context.Context, s models.Settings) error {
	return c.Request(ctx, http.MethodPut, "/user/settings", s, nil)
}

func (c *HTTPClient) DeleteSettings(ctx context.Context) error {
	return c.Request(ctx, http.MethodDelete, "/user/settings", nil, nil)
}

func (c *HTTPClient) ValidateAPIKey(ctx context.Context, key string) (bool, error) {
	var resp struct {
		Valid bool `json:"valid"`
	}
	err := c.Request(ctx, http.MethodPost, "/user/validate-api-key", map[string]string{"api_key": key}, &resp)
	return resp.Valid, err
}

// files

func (c *HTTPClient) ListFiles(ctx context.Context, page, limit int) (Page[models.UploadedFile], error) {
	var raw json.RawMessage
	if err := c.Request(ctx, http.MethodGet, "/files", nil, &raw, WithQuery(pageQuery(page, limit))); err != nil {
		return Page[models.UploadedFile]{}, err
	}
	return decodeListing[models.UploadedFile](raw, "files")
}

func (c *HTTPClient) UpdateFile(ctx context.Context, id int64, upd models.FileUpdate) error {
	return c.Request(ctx, http.MethodPut, "/files/"+itoa(id), upd, nil)
}

func (c *HTTPClient) DeleteFile(ctx context.Context, id int64) error {
	return c.Request(ctx, http.MethodDelete, "/files/"+itoa(id), nil, nil)
}

func (c *HTTPClient) Upload(ctx context.Context, req UploadRequest, progress func(int)) (string, error) {
	form := rangeForm(req.Document, req.Range).
		Field("page_count", strconv.Itoa(req.PageCount)).
		Field("page_range", req.Range.String()).
		Field("system_prompt", req.SystemPrompt).
		Field("user_prompt", req.UserPrompt)

	var resp messageResponse
	if err := c.Request(ctx, http.MethodPost, "/upload", nil, &resp, WithForm(form), WithProgress(progress)); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// extraction and translation

func (c *HTTPClient) ExtractText(ctx context.Context, doc Document, r models.PageRange) (ExtractResult, error) {
	var resp ExtractResult
	err := c.Request(ctx, http.MethodPost, "/extract-text", nil, &resp, WithForm(rangeForm(doc, r)))
	return resp, err
}

func (c *HTTPClient) TestTranslation(ctx context.Context, doc Document, r models.PageRange, systemPrompt, userPrompt string) (TestTranslationResult, error) {
	form := rangeForm(doc, r).
		Field("systemPrompt", systemPrompt).
		Field("userPrompt", userPrompt)

	var resp TestTranslationResult
	err := c.Request(ctx, http.MethodPost, "/test-translation", nil, &resp, WithForm(form))
	return resp, err
}

// InitTranslation creates the translation records of a file. When records
// already exist the error is an *AlreadyInitiatedError with the backend text.
func (c *HTTPClient) InitTranslation(ctx context.Context, fileID int64) (string, error) {
	var resp messageResponse
	err := c.Request(ctx, http.MethodPost, "/init_translation/"+itoa(fileID), nil, &resp)
	if err != nil {
		if msg, ok := Detail(err); ok && IsStatus(err, http.StatusBadRequest) &&
			strings.Contains(strings.ToLower(msg), "already") {
			return "", &AlreadyInitiatedError{Message: msg}
		}
		return "", err
	}
	return resp.Message, nil
}

func (c *HTTPClient) ListTranslations(ctx context.Context, fileID int64, page, limit int) (Page[models.TranslationRecord], error) {
	var raw json.RawMessage
	err := c.Request(ctx, http.MethodGet, "/translations/"+itoa(fileID), nil, &raw, WithQuery(pageQuery(page, limit)))
	if err != nil {
		return Page[models.TranslationRecord]{}, err
	}
	return decodeListing[models.TranslationRecord](raw, "translations")
}

func (c *HTTPClient) AllTranslations(ctx context.Context, fileID int64) ([]models.TranslationRecord, error) {
	var raw json.RawMessage
	q := url.Values{"download_all": {"true"}}
	if err := c.Request(ctx, http.MethodGet, "/translations/"+itoa(fileID), nil, &raw, WithQuery(q)); err != nil {
		return nil, err
	}
	p, err := decodeListing[models.TranslationRecord](raw, "translations")
	return p.Items, err
}

// UpdateTranslation sets one text field and returns the value the backend
// stored.
func (c *HTTPClient) UpdateTranslation(ctx context.Context, id int64, field models.TranslationField, value string) (string, error) {
	var resp map[string]any
	err := c.Request(ctx, http.MethodPost, "/update-translation/"+itoa(id), map[string]string{string(field): value}, &resp)
	if err != nil {
		return "", err
	}
	if v, ok := resp[string(field)].(string); ok {
		return v, nil
	}
	return value, nil
}

func (c *HTTPClient) PerformExtraction(ctx context.Context, id int64) (string, error) {
	return c.recordAction(ctx, "/perform_extraction/", id, models.FieldExtracted)
}

func (c *HTTPClient) Translate(ctx context.Context, id int64) (string, error) {
	return c.recordAction(ctx, "/translate/", id, models.FieldTranslated)
}

func (c *HTTPClient) Edit(ctx context.Context, id int64) (string, error) {
	return c.recordAction(ctx, "/edit/", id, models.FieldEdited)
}

func (c *HTTPClient) recordAction(ctx context.Context, prefix string, id int64, field models.TranslationField) (string, error) {
	var resp map[string]any
	if err := c.Request(ctx, http.MethodPost, prefix+itoa(id), nil, &resp); err != nil {
		return "", err
	}
	v, ok := resp[string(field)].(string)
	if !ok {
		return "", fmt.Errorf("%s response has no %s", strings.Trim(prefix, "/"), field)
	}
	return v, nil
}

// prompts

func (c *HTTPClient) ListPrompts(ctx context.Context, page, limit int) (Page[models.Prompt], error) {
	q := pageQuery(page, limit)
	if limit > 0 {
		q.Set("itemsPerPage", strconv.Itoa(limit))
	}

	var raw json.RawMessage
	if err := c.Request(ctx, http.MethodGet, "/prompts", nil, &raw, WithQuery(q)); err != nil {
		return Page[models.Prompt]{}, err
	}
	return decodeListing[models.Prompt](raw, "prompts")
}

func (c *HTTPClient) CreatePrompt(ctx context.Context, p models.Prompt) error {
	return c.Request(ctx, http.MethodPost, "/prompts", promptBody(p), nil)
}

func (c *HTTPClient) UpdatePrompt(ctx context.Context, p models.Prompt) error {
	return c.Request(ctx, http.MethodPut, "/prompts/"+itoa(p.ID), promptBody(p), nil)
}

func (c *HTTPClient) DeletePrompt(ctx context.Context, id int64) error {
	return c.Request(ctx, http.MethodDelete, "/prompts/"+itoa(id), nil, nil)
}

func promptBody(p models.Prompt) map[string]string {
	return map[string]string{
		"system_message": p.SystemMessage,
		"user_message":   p.UserMessage,
		"prompt_type":    string(p.PromptType),
	}
}

func rangeForm(doc Document, r models.PageRange) *netx.Form {
	return netx.NewForm().
		File("pdf", doc.Name, doc.Data).
		Field("startPage", strconv.Itoa(r.Start)).
		Field("endPage", strconv.Itoa(r.End))
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

// decodeListing accepts both a {key: [...], total: n} envelope and a bare
// JSON array (older backends). A bare array's total is its length.
func decodeListing[T any](raw json.RawMessage, key string) (Page[T], error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Page[T]{}, nil
	}

	if raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return Page[T]{}, fmt.Errorf("decode %s: %w", key, err)
		}
		return Page[T]{Items: items, Total: len(items)}, nil
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		return Page[T]{}, fmt.Errorf("decode %s: %w", key, err)
	}

	var p Page[T]
	if v, ok := env[key]; ok {
		if err := json.Unmarshal(v, &p.Items); err != nil {
			return Page[T]{}, fmt.Errorf("decode %s: %w", key, err)
		}
	}
	p.Total = len(p.Items)
	if v, ok := env["total"]; ok {
		if err := json.Unmarshal(v, &p.Total); err != nil {
			return Page[T]{}, fmt.Errorf("decode %s total: %w", key, err)
		}
	}
	return p, nil
}

// rawID renders a JSON number or string id as a string.
func rawID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if s := strings.TrimSpace(string(raw)); s != "null" {
		return s
	}
	return ""
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
