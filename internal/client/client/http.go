package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/pdftranslator/internal/common"
	"github.com/dmitrijs2005/pdftranslator/internal/logging"
	"github.com/dmitrijs2005/pdftranslator/internal/netx"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// TokenStore is the part of the session store the transport needs.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	UpdateAccessToken(ctx context.Context, expected, next string) (bool, error)
	Clear(ctx context.Context) error
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
	log     logging.Logger

	refreshGroup singleflight.Group
}

func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenStore, log logging.Logger) *HTTPClient {
	if log == nil {
		log = logging.Nop()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log,
	}
}

type requestOptions struct {
	query    url.Values
	form     *netx.Form
	progress func(int)
	noAuth   bool
	token    string
}

type RequestOption func(*requestOptions)

func WithQuery(q url.Values) RequestOption {
	return func(o *requestOptions) { o.query = q }
}

// WithForm sends f as multipart/form-data instead of a JSON body.
func WithForm(f *netx.Form) RequestOption {
	return func(o *requestOptions) { o.form = f }
}

// WithProgress reports upload progress (0-100) of the request body.
func WithProgress(fn func(percent int)) RequestOption {
	return func(o *requestOptions) { o.progress = fn }
}

// WithoutAuth sends the request without a bearer token and skips the
// refresh-on-401 cycle.
func WithoutAuth() RequestOption {
	return func(o *requestOptions) { o.noAuth = true }
}

// WithToken sends token as the bearer credential instead of the session's
// and skips the refresh-on-401 cycle.
func WithToken(token string) RequestOption {
	return func(o *requestOptions) { o.token = token }
}

// Request performs method on path. body, when not nil, is sent as JSON;
// out, when not nil, receives the decoded JSON response.
func (c *HTTPClient) Request(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	o := &requestOptions{}
	for _, opt := range opts {
		opt(o)
	}

	retried := false
	for {
		token := o.token
		if !o.noAuth && token == "" {
			token = c.tokens.AccessToken()
		}

		err := c.do(ctx, method, path, body, out, o, token)
		if err == nil {
			return nil
		}
		if o.noAuth || o.token != "" || !IsStatus(err, http.StatusUnauthorized) {
			return err
		}

		if retried {
			c.teardown(ctx)
			return fmt.Errorf("%w: %w", ErrAuthExpired, err)
		}
		retried = true

		if rerr := c.refresh(ctx, token); rerr != nil {
			if IsTransient(rerr) || ctx.Err() != nil {
				return rerr
			}
			c.log.Warn(ctx, "token refresh failed", "path", path, "error", rerr)
			c.teardown(ctx)
			return fmt.Errorf("%w: %w", ErrAuthExpired, err)
		}
	}
}

// Refresh exchanges the refresh token for a new access token and stores it
// through the session's compare-and-swap. It is shared with in-flight
// refresh-on-401 cycles.
func (c *HTTPClient) Refresh(ctx context.Context) error {
	return c.refresh(ctx, c.tokens.AccessToken())
}

// refresh replaces stale. Callers holding the same stale token share one
// backend call; a caller whose token was already replaced returns at once.
// The shared call is detached from the caller that started it, so one
// cancelled caller never fails the others; each caller stops waiting when
// its own ctx ends.
func (c *HTTPClient) refresh(ctx context.Context, stale string) error {
	shared := context.WithoutCancel(ctx)
	ch := c.refreshGroup.DoChan(stale, func() (any, error) {
		if current := c.tokens.AccessToken(); current != stale && current != "" {
			return nil, nil
		}

		refreshToken := c.tokens.RefreshToken()
		if refreshToken == "" {
			return nil, common.ErrNotLoggedIn
		}

		next, err := c.RefreshAccessToken(shared, refreshToken)
		if err != nil {
			return nil, err
		}

		applied, err := c.tokens.UpdateAccessToken(shared, stale, next)
		if err != nil {
			return nil, err
		}
		if !applied {
			c.log.Debug(shared, "refreshed token superseded by a newer one")
		}
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *HTTPClient) teardown(ctx context.Context) {
	if err := c.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
		c.log.Error(ctx, "failed to clear session", "error", err)
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any, o *requestOptions, token string) error {
	u := c.baseURL + path
	if len(o.query) > 0 {
		u += "?" + o.query.Encode()
	}

	var (
		payload     []byte
		contentType string
	)
	switch {
	case o.form != nil:
		var err error
		if payload, contentType, err = o.form.Encode(); err != nil {
			return err
		}
	case body != nil:
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		contentType = "application/json"
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
		if o.progress != nil {
			o.progress(0)
			reader = netx.NewProgressReader(reader, int64(len(payload)), o.progress)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	if payload != nil {
		req.ContentLength = int64(len(payload))
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	requestID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	c.log.Debug(ctx, "http request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		return &RequestError{Status: resp.StatusCode, Message: eb.message(resp.StatusCode)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
