// Package api binds the client to the e-signature REST API. Every call is
// JSON over HTTP relative to the API base, carries the stored bearer token
// when present and maps failures onto the apperr taxonomy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dharsanguruparan/vdocsign/internal/apperr"
	"github.com/dharsanguruparan/vdocsign/internal/credstore"
	"github.com/dharsanguruparan/vdocsign/internal/route"
)

// LoginPath is where the unauthorized hook should send the user.
const LoginPath = route.PathLogin

// Client talks to the API. It is safe for concurrent use.
type Client struct {
	baseURL        string
	http           *http.Client
	creds          credstore.Store
	logger         *zap.Logger
	onUnauthorized func(redirect string)
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithUnauthorizedHandler registers the hook run after a 401 has cleared the
// credential store. It receives the login path to navigate to.
func WithUnauthorizedHandler(fn func(redirect string)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New constructs a Client for baseURL (e.g. http://localhost:5000/api).
func New(baseURL string, creds credstore.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		creds:   creds,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.creds == nil {
		c.creds = credstore.NewMemoryStore()
	}
	c.logger = c.logger.With(zap.String("component", "api"))
	return c
}

// Credentials exposes the store the client reads tokens from.
func (c *Client) Credentials() credstore.Store { return c.creds }

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// call describes one request. fallback is the message shown when the server
// does not provide one.
type call struct {
	op          string
	method      string
	path        string
	body        any
	rawBody     io.Reader
	contentType string
	out         any
	fallback    string
}

func (c *Client) do(ctx context.Context, req call) error {
	var body io.Reader
	contentType := req.contentType
	switch {
	case req.rawBody != nil:
		body = req.rawBody
	case req.body != nil:
		data, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", req.op, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", req.op, err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)
	if token, ok := c.creds.Get(credstore.KeyToken); ok && token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("op", req.op),
			zap.String("request_id", requestID),
			zap.Error(err))
		return apperr.Transport(req.op, 0, req.fallback, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("request",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", requestID))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.failure(req, resp)
	}
	if req.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(req.out); err != nil {
		return apperr.Transport(req.op, resp.StatusCode, req.fallback, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) failure(req call, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg := req.fallback
	var eb errorBody
	if json.Unmarshal(data, &eb) == nil {
		if eb.Message != "" {
			msg = eb.Message
		} else if eb.Error != "" {
			msg = eb.Error
		}
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		c.logger.Warn("unauthorized: token expired or invalid, clearing session", zap.String("op", req.op))
		if err := c.creds.Clear(); err != nil {
			c.logger.Error("clear credentials", zap.Error(err))
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized(LoginPath)
		}
		return apperr.Transport(req.op, resp.StatusCode, msg, apperr.ErrUnauthorized)
	case http.StatusNotFound:
		return &apperr.Error{Kind: apperr.KindNotFound, Op: req.op, Status: resp.StatusCode, Message: msg}
	default:
		return apperr.Transport(req.op, resp.StatusCode, msg, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
}

// IsUnauthorized reports whether err came from a 401.
func IsUnauthorized(err error) bool {
	return errors.Is(err, apperr.ErrUnauthorized)
}
