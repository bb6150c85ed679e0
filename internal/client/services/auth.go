// Package services contains the application services of the pdftranslator
// client: authentication, the upload pipeline, translation records, CRUD
// listings, settings and export.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/pdftranslator/internal/client/alert"
	"github.com/dmitrijs2005/pdftranslator/internal/client/client"
	"github.com/dmitrijs2005/pdftranslator/internal/client/models"
	"github.com/dmitrijs2005/pdftranslator/internal/common"
	"github.com/dmitrijs2005/pdftranslator/internal/logging"
)

// SessionStore is the persisted session the auth service manages.
type SessionStore interface {
	Load(ctx context.Context) (models.Session, bool, error)
	Current() models.Session
	Save(ctx context.Context, s models.Session) error
	Clear(ctx context.Context) error
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate and persist the session.
//   - Signup: create an account; the user logs in separately.
//   - Logout: clear the local session before returning.
//   - Restore: load a persisted session at start-up.
//   - StartRefresher: refresh the access token every interval while a
//     session exists.
type AuthService interface {
	Login(ctx context.Context, identifier string, password []byte) (models.Session, error)
	Signup(ctx context.Context, username, email string, password []byte) (string, error)
	Logout(ctx context.Context) error
	Restore(ctx context.Context) (bool, error)
	LoggedIn() bool
	Session() models.Session
	StartRefresher(ctx context.Context, interval time.Duration) (stop func())
}

type authService struct {
	api      client.API
	sessions SessionStore
	alerts   *alert.Channel
	log      logging.Logger
}

func NewAuthService(api client.API, sessions SessionStore, alerts *alert.Channel, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Nop()
	}
	return &authService{api: api, sessions: sessions, alerts: alerts, log: log.With("component", "auth")}
}

func (a *authService) Login(ctx context.Context, identifier string, password []byte) (models.Session, error) {
	defer common.WipeByteArray(password)

	identifier = strings.TrimSpace(identifier)
	if identifier == "" || len(password) == 0 {
		return models.Session{}, errors.New("identifier and password are required")
	}

	sess, err := a.api.Login(ctx, identifier, string(password))
	if err != nil {
		a.alerts.Error(detailOr(err, "Login failed"))
		return models.Session{}, fmt.Errorf("login error: %w", err)
	}
	if !sess.Valid() {
		return models.Session{}, errors.New("login error: backend returned no tokens")
	}

	if err := a.sessions.Save(ctx, sess); err != nil {
		return models.Session{}, fmt.Errorf("session saving error: %w", err)
	}

	a.log.Info(ctx, "logged in", "user", sess.UserID)
	a.alerts.Success("Logged in successfully")
	return sess, nil
}

func (a *authService) Signup(ctx context.Context, username, email string, password []byte) (string, error) {
	defer common.WipeByteArray(password)

	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" || len(password) == 0 {
		return "", errors.New("username, email and password are required")
	}

	msg, err := a.api.Signup(ctx, username, email, string(password))
	if err != nil {
		a.alerts.Error(detailOr(err, "Signup failed"))
		return "", fmt.Errorf("signup error: %w", err)
	}
	a.alerts.Success(msg)
	return msg, nil
}

// Logout clears the local session, then tells the backend (best effort,
// bounded wait) using the token it just dropped.
func (a *authService) Logout(ctx context.Context) error {
	sess := a.sessions.Current()

	if err := a.sessions.Clear(ctx); err != nil {
		return err
	}
	a.alerts.Info("Logged out")

	if sess.Valid() {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
		defer cancel()
		if err := a.api.Logout(callCtx, sess.AccessToken); err != nil {
			a.log.Debug(ctx, "backend logout failed", "error", err)
		}
	}
	return nil
}

func (a *authService) Restore(ctx context.Context) (bool, error) {
	sess, ok, err := a.sessions.Load(ctx)
	if err != nil {
		return false, err
	}
	if ok {
		a.log.Debug(ctx, "session restored", "user", sess.UserID)
	}
	return ok, nil
}

func (a *authService) LoggedIn() bool {
	return a.sessions.Current().Valid()
}

func (a *authService) Session() models.Session {
	return a.sessions.Current()
}

// StartRefresher refreshes the access token every interval until ctx ends
// or stop is called. It shares the refresh path (and its compare-and-swap)
// with the refresh-on-401 cycle.
func (a *authService) StartRefresher(ctx context.Context, interval time.Duration) (stop func()) {
	if interval <= 0 {
		a.log.Warn(ctx, "proactive token refresh disabled", "interval", interval)
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.refreshOnce(ctx)
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

func (a *authService) refreshOnce(ctx context.Context) {
	if !a.LoggedIn() {
		return
	}

	err := a.api.Refresh(ctx)
	switch {
	case err == nil:
		a.log.Debug(ctx, "access token refreshed")
	case ctx.Err() != nil:
	case client.IsTransient(err):
		a.log.Warn(ctx, "token refresh skipped, server unavailable", "error", err)
	default:
		a.log.Warn(ctx, "token refresh rejected, logging out", "error", err)
		if cerr := a.sessions.Clear(context.WithoutCancel(ctx)); cerr != nil {
			a.log.Error(ctx, "failed to clear session", "error", cerr)
		}
		a.alerts.Error("Session expired, please log in again")
	}
}
