package cli

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/pdftranslator/internal/client/client"
	"github.com/dustin/go-humanize"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// errUsage reports a malformed command line.
type errUsage string

func (e errUsage) Error() string {
	return "usage: " + string(e)
}

// Signup prompts for a username, an email and a password and creates the
// account. The user logs in separately afterwards.
func (a *App) Signup(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	_, err = a.authService.Signup(ctx, username, email, password)
	return err
}

// Login prompts for credentials, stores the session and restores the last
// used prompts.
func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Enter username or email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	if _, err := a.authService.Login(ctx, identifier, password); err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			a.println("Server unavailable, try again later")
		}
		return err
	}
	a.afterLogin(ctx)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.records.FlushEdits()
	a.fileService.FlushEdits()
	a.queue.Clear()
	return a.authService.Logout(ctx)
}

// Whoami prints the profile and when the access token expires.
func (a *App) Whoami(ctx context.Context) error {
	p, err := a.settingsService.Profile(ctx)
	if err != nil {
		return err
	}
	a.printf("%s <%s> (user %s)\n", p.Username, p.Email, a.authService.Session().UserID)
	if exp, ok := a.sessions.AccessExpiry(); ok {
		verb := "expires"
		if exp.Before(time.Now()) {
			verb = "expired"
		}
		a.printf("access token %s %s\n", verb, humanize.Time(exp))
	}
	return nil
}
