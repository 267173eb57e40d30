// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

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

	"go.uber.org/zap"

	apierr "kenes/cli/internal/errors"
	"kenes/cli/internal/events"
	"kenes/cli/internal/httperrors"
)

// TokenSource is the session the client reads on every call and clears on 401.
type TokenSource interface {
	Get() (string, bool)
	Clear() bool
}

// ClientConfig configures the HTTP client.
type ClientConfig struct {
	// BaseURL is the root of the REST API (e.g., "http://localhost:8000/api").
	BaseURL string
	// HTTPClient is the underlying transport. Nil uses a client with Timeout.
	HTTPClient *http.Client
	// Timeout applies only when HTTPClient is nil. Zero keeps the transport default.
	Timeout time.Duration
	Session TokenSource
	Bus     *events.Bus
	Logger  *zap.Logger
	// UserAgent is sent with every request.
	UserAgent string
}

// Client is the single chokepoint for every network call.
// It attaches the session credential to outgoing requests and maps responses
// onto the error taxonomy. A 401 clears the session and publishes
// events.SessionExpired before the error is returned.
type Client struct {
	// baseURL is the base URL for all HTTP requests, without trailing slash
	baseURL   string
	client    *http.Client
	session   TokenSource
	bus       *events.Bus
	log       *zap.Logger
	userAgent string
}

// Request describes one call relative to the base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is encoded as JSON when non-nil.
	Body any
}

// Response is a successful (2xx) response with its body fully read.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// NewClient creates a client from cfg.
func NewClient(cfg ClientConfig) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "kenes-cli"
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		client:    hc,
		session:   cfg.Session,
		bus:       cfg.Bus,
		log:       log.Named("http"),
		userAgent: ua,
	}
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Do executes r. Non-2xx responses and transport failures are returned as *apierr.E.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	req, err := c.newRequest(ctx, r)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		// Leave cancellation recognisable to callers that abandoned the call.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apierr.Wrap(apierr.Network, "request cancelled", ctxErr)
		}
		c.log.Debug("transport failure",
			zap.String("method", r.Method), zap.String("path", r.Path),
			zap.String("reason", httperrors.Describe(err)), zap.Error(err))
		return nil, apierr.Wrap(apierr.Network, httperrors.Describe(err), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierr.Wrap(apierr.Network, "reading response body", err)
	}

	c.log.Debug("response",
		zap.String("method", r.Method), zap.String("path", r.Path),
		zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
	}

	e := apierr.FromStatus(resp.StatusCode, body)
	if e.Kind == apierr.Auth {
		c.expireSession(e)
	}
	return nil, e
}

// expireSession is the only cross-cutting side effect of the client.
// SessionExpired is published only when a credential was actually dropped.
func (c *Client) expireSession(e *apierr.E) {
	if c.session == nil || !c.session.Clear() {
		c.log.Debug("anonymous request rejected", zap.String("reason", e.Message))
		return
	}
	c.log.Info("session rejected by service", zap.String("reason", e.Message))
	c.bus.Publish(events.Event{
		Type:    events.SessionExpired,
		Message: "your session has expired, please log in again",
		Err:     e,
	})
}

func (c *Client) newRequest(ctx context.Context, r Request) (*http.Request, error) {
	u := c.baseURL + "/" + strings.TrimLeft(r.Path, "/")
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		b, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setStandardHeaders(req)
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != nil {
		if token, ok := c.session.Get(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// setStandardHeaders applies headers shared by every request.
func (c *Client) setStandardHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json, */*")
	req.Header.Set("User-Agent", c.userAgent)
}

// decode parses a JSON success payload into T.
func decode[T any](resp *Response) (T, error) {
	var out T
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return out, apierr.Wrap(apierr.Server, "unreadable response payload", err)
	}
	return out, nil
}

// call executes r and decodes the response into a new T.
func call[T any](ctx context.Context, c *Client, r Request) (*T, error) {
	resp, err := c.Do(ctx, r)
	if err != nil {
		return nil, err
	}
	out, err := decode[T](resp)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
