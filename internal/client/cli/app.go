package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/pdftranslator/internal/client/alert"
	"github.com/dmitrijs2005/pdftranslator/internal/client/client"
	"github.com/dmitrijs2005/pdftranslator/internal/client/config"
	"github.com/dmitrijs2005/pdftranslator/internal/client/queue"
	"github.com/dmitrijs2005/pdftranslator/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pdftranslator/internal/client/services"
	"github.com/dmitrijs2005/pdftranslator/internal/client/session"
	"github.com/dmitrijs2005/pdftranslator/internal/client/storage"
	"github.com/dmitrijs2005/pdftranslator/internal/cryptox"
	"github.com/dmitrijs2005/pdftranslator/internal/logging"
)

type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB

	sessions *session.Store
	alerts   *alert.Channel

	authService     services.AuthService
	pipeline        *services.Pipeline
	records         *services.Records
	fileService     services.FileService
	promptService   services.PromptService
	settingsService services.SettingsService
	exportService   services.ExportService

	queue     *queue.BulkQueue
	selection *queue.Selection

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local database and the device key and wires the HTTP
// client and services for cfg.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	secret, err := cryptox.LoadOrCreateKeyFile(c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("device key: %w", err)
	}

	db, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	store, err := session.NewStore(ctx, db, secret)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	api := client.NewHTTPClient(c.ServerURL, c.RequestTimeout, store, log)
	app := newApp(c, log, db, store, api)
	app.reader = bufio.NewReader(os.Stdin)
	app.out = &syncWriter{w: os.Stdout}
	return app, nil
}

// newApp builds the services on top of an API implementation.
func newApp(c *config.Config, log logging.Logger, db *sql.DB, store *session.Store, api client.API) *App {
	alerts := alert.New(c.AlertTTL)
	prefs := metadata.NewSQLiteRepository(db)

	a := &App{
		config:   c,
		log:      log,
		db:       db,
		sessions: store,
		alerts:   alerts,

		authService: services.NewAuthService(api, store, alerts, log),
		pipeline: services.NewPipeline(api, prefs, alerts, log, services.PipelineOptions{
			Window:           c.DefaultRangeWindow,
			RangeDebounce:    c.RangeDebounce,
			MaxTokens:        c.MaxTokens,
			TokenBudgetRatio: c.TokenBudgetRatio,
		}),
		records:         services.NewRecords(api, alerts, log, c.PageSize, c.EditDebounce),
		fileService:     services.NewFileService(api, alerts, log, c.PageSize, c.EditDebounce),
		promptService:   services.NewPromptService(api, alerts, log, c.PageSize),
		settingsService: services.NewSettingsService(api, prefs, store.Key(), alerts, log),
		exportService:   services.NewExportService(api, log, 0, 0),
	}

	a.queue = queue.New(a.records, log)
	a.selection = queue.NewSelection(a.recordIDs)
	a.selection.ResetOn(a.records)

	alerts.Subscribe(a.printAlert)
	a.queue.OnDone(func(it queue.Item, err error) {
		status := "done"
		if err != nil {
			status = "failed"
		}
		a.printf("bulk %s #%d %s (%d left)\n", it.Action, it.RecordID, status, a.queue.Len())
	})
	store.OnClear(func() {
		a.selection.None()
	})
	return a
}

// Close sends pending edits and releases the database.
func (a *App) Close(ctx context.Context) {
	a.pipeline.Close()
	a.records.Close()
	a.fileService.Close()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn(ctx, "closing database", "error", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.authService.LoggedIn()
}

func (a *App) getStatus() string {
	s := ""
	if a.isLoggedIn() {
		if id := a.authService.Session().UserID; id != "" {
			s = "user " + id
		} else {
			s = "logged in"
		}
	}
	if snap := a.pipeline.Snapshot(); snap.Loaded {
		if s != "" {
			s += " "
		}
		s += fmt.Sprintf("%s %s", snap.File, snap.Range)
	}
	if n := a.queue.Len(); n > 0 {
		s += fmt.Sprintf(" queue:%d", n)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) recordIDs() []int64 {
	recs := a.records.Records()
	ids := make([]int64, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	return ids
}

func (a *App) printAlert(al alert.Alert, visible bool) {
	if !visible {
		return
	}
	a.printf("[%s] %s\n", al.Kind, al.Message)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// syncWriter serializes writes from the REPL and background workers.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
