// Package client talks to the pdftranslator backend over HTTP/JSON.
//
// # Overview
//
// HTTPClient attaches the current access token to every request. When the
// backend answers 401 it refreshes the token once (concurrent 401s share a
// single refresh) and retries the original request once. A retry that is
// still rejected, or a refresh the backend refuses, clears the session and
// returns ErrAuthExpired.
//
// The typed helpers in endpoints.go cover every backend route; API is the
// interface the services depend on.
//
// # Error Handling
//
// Non-2xx responses become *RequestError{Status, Message}; Message is the
// backend's "error" field, then its "message" field, then the status text.
// Transport failures wrap ErrUnavailable. Use Detail to extract the backend
// text for display.
package client
