package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/pdftranslator/internal/client/alert"
	"github.com/dmitrijs2005/pdftranslator/internal/client/client"
	"github.com/dmitrijs2005/pdftranslator/internal/client/intake"
	"github.com/dmitrijs2005/pdftranslator/internal/client/models"
	"github.com/dmitrijs2005/pdftranslator/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pdftranslator/internal/common"
	"github.com/dmitrijs2005/pdftranslator/internal/logging"
)

const (
	DefaultSystemPrompt = "Act as a translator and translate the given text."
	DefaultUserPrompt   = "Translate the text and dont be lazy, translate the whole given text."
)

// PipelineOptions configures a Pipeline. Zero values take defaults.
type PipelineOptions struct {
	Counter          intake.PageCounter
	Window           int
	RangeDebounce    time.Duration
	MaxTokens        int
	TokenBudgetRatio float64
}

func (o PipelineOptions) withDefaults() PipelineOptions {
	if o.Window <= 0 {
		o.Window = 2
	}
	if o.RangeDebounce <= 0 {
		o.RangeDebounce = 500 * time.Millisecond
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 16384
	}
	if o.TokenBudgetRatio <= 0 || o.TokenBudgetRatio > 1 {
		o.TokenBudgetRatio = 0.5
	}
	return o
}

// PipelineSnapshot is a copy of the pipeline state.
type PipelineSnapshot struct {
	File      string
	PageCount int
	Range     models.PageRange
	Loaded    bool

	ExtractedText    string
	NumTokens        int
	MaxTokens        int
	TokenBudget      int
	TranslatedText   string
	CompletionTokens int
	PromptTokens     int

	SystemPrompt string
	UserPrompt   string

	UploadProgress int
	Extracting     bool
	Translating    bool
	Uploading      bool
}

// Pipeline drives the upload page: the selected PDF, its extracted text,
// a test translation and the final upload.
type Pipeline struct {
	mu sync.Mutex

	api    client.API
	prefs  metadata.Repository
	alerts *alert.Channel
	log    logging.Logger
	opts   PipelineOptions

	selector *intake.Selector

	extractedText    string
	numTokens        int
	translatedText   string
	completionTokens int
	promptTokens     int
	systemPrompt     string
	userPrompt       string
	uploadProgress   int
	extracting       int
	translating      bool
	uploading        bool
}

func NewPipeline(api client.API, prefs metadata.Repository, alerts *alert.Channel, log logging.Logger, opts PipelineOptions) *Pipeline {
	if log == nil {
		log = logging.Nop()
	}
	opts = opts.withDefaults()
	p := &Pipeline{
		api:          api,
		prefs:        prefs,
		alerts:       alerts,
		log:          log.With("component", "pipeline"),
		opts:         opts,
		systemPrompt: DefaultSystemPrompt,
		userPrompt:   DefaultUserPrompt,
	}
	p.selector = intake.New(opts.Counter, opts.Window, opts.RangeDebounce, p.onExtract, log)
	return p
}

// LoadPrompts restores the last used prompts from local storage.
func (p *Pipeline) LoadPrompts(ctx context.Context) error {
	sys, err := metadata.GetString(ctx, p.prefs, metadata.KeySystemPrompt)
	if err != nil {
		return err
	}
	usr, err := metadata.GetString(ctx, p.prefs, metadata.KeyUserPrompt)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if sys != "" {
		p.systemPrompt = sys
	}
	if usr != "" {
		p.userPrompt = usr
	}
	return nil
}

// Open loads a PDF from disk and extracts its default range.
func (p *Pipeline) Open(path string) (intake.Document, error) {
	doc, err := p.selector.Select(path)
	if err != nil {
		p.alerts.Error(err.Error())
	}
	return doc, err
}

// OpenReader loads an in-memory PDF.
func (p *Pipeline) OpenReader(name string, data []byte) (intake.Document, error) {
	doc, err := p.selector.SelectReader(name, data)
	if err != nil {
		p.alerts.Error(err.Error())
	}
	return doc, err
}

// SetRange changes the page range; extraction follows after the debounce.
func (p *Pipeline) SetRange(start, end int) error {
	return p.selector.SetRange(start, end)
}

// FlushRange runs a scheduled range extraction immediately.
func (p *Pipeline) FlushRange() bool {
	return p.selector.Flush()
}

// Close drops the document and any scheduled extraction.
func (p *Pipeline) Close() {
	p.selector.Reset()
}

func (p *Pipeline) onExtract(doc intake.Document, r models.PageRange) {
	_ = p.extract(context.Background(), doc, r)
}

// Extract re-extracts the current range.
func (p *Pipeline) Extract(ctx context.Context) error {
	doc, r, ok := p.selector.Document()
	if !ok {
		p.alerts.Error("No file selected")
		return common.ErrNoFile
	}
	return p.extract(ctx, doc, r)
}

func (p *Pipeline) extract(ctx context.Context, doc intake.Document, r models.PageRange) error {
	p.mu.Lock()
	p.extracting++
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.extracting--
		p.mu.Unlock()
	}()

	res, err := p.api.ExtractText(ctx, client.Document{Name: doc.Name, Data: doc.Data}, r)
	if err != nil {
		p.log.Warn(ctx, "extraction failed", "file", doc.Name, "range", r.String(), "error", err)
		p.alerts.Error(detailOr(err, "Failed to extract text"))
		return fmt.Errorf("%w: %w", common.ErrExtraction, err)
	}

	// a response for a range the user already moved away from is dropped
	if cur, cr, ok := p.selector.Document(); !ok || cur.Name != doc.Name || cr != r {
		p.log.Debug(ctx, "discarding stale extraction", "range", r.String())
		return nil
	}

	p.mu.Lock()
	p.extractedText = res.ExtractedText
	p.numTokens = res.NumTokens
	budget := p.tokenBudget()
	p.mu.Unlock()

	p.log.Info(ctx, "text extracted", "file", doc.Name, "range", r.String(), "tokens", res.NumTokens)
	p.alerts.Success("Text extracted successfully")
	if res.NumTokens > budget {
		p.alerts.Error(p.budgetMessage(budget))
	}
	return nil
}

// TestTranslation translates the current range with the current prompts.
// It makes no network call when a precondition fails.
func (p *Pipeline) TestTranslation(ctx context.Context) (client.TestTranslationResult, error) {
	doc, r, ok := p.selector.Document()
	if !ok {
		p.alerts.Error("No file selected")
		return client.TestTranslationResult{}, common.ErrNoFile
	}

	p.mu.Lock()
	sys, usr := p.systemPrompt, p.userPrompt
	num, budget := p.numTokens, p.tokenBudget()
	if sys == "" || usr == "" {
		p.mu.Unlock()
		p.alerts.Error("System prompt and user prompt are required.")
		return client.TestTranslationResult{}, common.ErrPromptsRequired
	}
	if num > budget {
		p.mu.Unlock()
		p.alerts.Error(p.budgetMessage(budget))
		return client.TestTranslationResult{}, fmt.Errorf("%w: %d > %d", common.ErrTokenBudgetExceeded, num, budget)
	}
	p.translating = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.translating = false
		p.mu.Unlock()
	}()

	res, err := p.api.TestTranslation(ctx, client.Document{Name: doc.Name, Data: doc.Data}, r, sys, usr)
	if err != nil {
		p.log.Warn(ctx, "test translation failed", "file", doc.Name, "error", err)
		p.alerts.Error(detailOr(err, "Test translation failed"))
		return client.TestTranslationResult{}, fmt.Errorf("%w: %w", common.ErrTranslation, err)
	}

	p.mu.Lock()
	p.translatedText = res.Translation
	p.completionTokens = res.CompletionTokens
	p.promptTokens = res.PromptTokens
	p.mu.Unlock()

	p.alerts.Success("Translation successful")
	return res, nil
}

// SubmitUpload stores the document with its range and prompts on the
// backend, reporting progress 0-100.
func (p *Pipeline) SubmitUpload(ctx context.Context, progress func(int)) (string, error) {
	doc, r, ok := p.selector.Document()
	if !ok {
		p.alerts.Error("No file selected")
		return "", common.ErrNoFile
	}

	p.mu.Lock()
	req := client.UploadRequest{
		Document:     client.Document{Name: doc.Name, Data: doc.Data},
		Range:        r,
		PageCount:    doc.PageCount,
		SystemPrompt: p.systemPrompt,
		UserPrompt:   p.userPrompt,
	}
	p.uploading = true
	p.uploadProgress = 0
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.uploading = false
		p.mu.Unlock()
	}()

	msg, err := p.api.Upload(ctx, req, func(pct int) {
		pct = common.ClampPercent(pct)
		p.mu.Lock()
		p.uploadProgress = pct
		p.mu.Unlock()
		if progress != nil {
			progress(pct)
		}
	})
	if err != nil {
		p.log.Warn(ctx, "upload failed", "file", doc.Name, "error", err)
		p.alerts.Error(detailOr(err, "File upload failed"))
		return "", fmt.Errorf("%w: %w", common.ErrUpload, err)
	}

	p.log.Info(ctx, "file uploaded", "file", doc.Name, "range", r.String())
	p.alerts.Success("File uploaded successfully. Proceed to the next step.")
	return msg, nil
}

// InitiateTranslation creates the translation records of an uploaded
// file. A second call for the same file fails with the backend's message.
func (p *Pipeline) InitiateTranslation(ctx context.Context, fileID int64) (string, error) {
	msg, err := p.api.InitTranslation(ctx, fileID)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyInitiated) {
			p.alerts.Error(err.Error())
			return "", err
		}
		p.alerts.Error(detailOr(err, "Failed to initiate translation"))
		return "", fmt.Errorf("%w: %w", common.ErrTranslation, err)
	}
	p.alerts.Success(msg)
	return msg, nil
}

// Clear resets texts and token counters. The document and range stay.
func (p *Pipeline) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.extractedText = ""
	p.translatedText = ""
	p.numTokens = 0
	p.completionTokens = 0
	p.promptTokens = 0
}

func (p *Pipeline) SetSystemPrompt(ctx context.Context, text string) error {
	p.mu.Lock()
	p.systemPrompt = text
	p.mu.Unlock()
	return metadata.SetString(ctx, p.prefs, metadata.KeySystemPrompt, text)
}

func (p *Pipeline) SetUserPrompt(ctx context.Context, text string) error {
	p.mu.Lock()
	p.userPrompt = text
	p.mu.Unlock()
	return metadata.SetString(ctx, p.prefs, metadata.KeyUserPrompt, text)
}

// ApplyPreset copies a stored prompt's messages into the pipeline.
func (p *Pipeline) ApplyPreset(ctx context.Context, pr models.Prompt) error {
	if err := p.SetSystemPrompt(ctx, pr.SystemMessage); err != nil {
		return err
	}
	return p.SetUserPrompt(ctx, pr.UserMessage)
}

func (p *Pipeline) Snapshot() PipelineSnapshot {
	doc, r, loaded := p.selector.Document()

	p.mu.Lock()
	defer p.mu.Unlock()
	return PipelineSnapshot{
		File:             doc.Name,
		PageCount:        doc.PageCount,
		Range:            r,
		Loaded:           loaded,
		ExtractedText:    p.extractedText,
		NumTokens:        p.numTokens,
		MaxTokens:        p.opts.MaxTokens,
		TokenBudget:      p.tokenBudget(),
		TranslatedText:   p.translatedText,
		CompletionTokens: p.completionTokens,
		PromptTokens:     p.promptTokens,
		SystemPrompt:     p.systemPrompt,
		UserPrompt:       p.userPrompt,
		UploadProgress:   p.uploadProgress,
		Extracting:       p.extracting > 0,
		Translating:      p.translating,
		Uploading:        p.uploading,
	}
}

// tokenBudget is the largest numTokens a translation is allowed for.
func (p *Pipeline) tokenBudget() int {
	return int(float64(p.opts.MaxTokens) * p.opts.TokenBudgetRatio)
}

func (p *Pipeline) budgetMessage(budget int) string {
	share := "half"
	if p.opts.TokenBudgetRatio != 0.5 {
		share = fmt.Sprintf("%.0f%%", p.opts.TokenBudgetRatio*100)
	}
	return fmt.Sprintf("Extracted tokens exceed %s of the maximum allowed (%d). Translation not allowed.", share, budget)
}

// detailOr returns the backend's message for err, else fallback.
func detailOr(err error, fallback string) string {
	if d, ok := client.Detail(err); ok {
		return d
	}
	return fallback
}
