package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/pdftranslator/internal/common"
)

var (
	ErrUnavailable = errors.New("server unavailable")
	// ErrAuthExpired means a request was rejected and refreshing the access
	// token did not help. The session has been cleared.
	ErrAuthExpired = errors.New("authentication expired")
)

// RequestError is returned for every non-2xx response.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed (%d): %s", e.Status, e.Message)
}

// AlreadyInitiatedError carries the backend's message when translation
// records already exist for a file. It matches common.ErrAlreadyInitiated.
type AlreadyInitiatedError struct {
	Message string
}

func (e *AlreadyInitiatedError) Error() string {
	return e.Message
}

func (e *AlreadyInitiatedError) Is(target error) bool {
	return target == common.ErrAlreadyInitiated
}

// Detail returns the backend-provided message carried by err, if any.
func Detail(err error) (string, bool) {
	var already *AlreadyInitiatedError
	if errors.As(err, &already) {
		return already.Message, true
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message, true
	}
	return "", false
}

// IsTransient reports whether err leaves the session usable: the server
// could not be reached or the caller gave up. Neither is a rejection of
// the refresh token.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// IsStatus reports whether err is a RequestError with the given status.
func IsStatus(err error, status int) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Status == status
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Msg     string `json:"msg"`
}

// message picks the most specific text out of an error response.
func (b errorBody) message(status int) string {
	for _, s := range []string{b.Error, b.Message, b.Msg} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return http.StatusText(status)
}
