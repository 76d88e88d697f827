// Package gateway wraps the named remote procedures exposed by the Rooty
// backend. Every wrapper returns (data, error) with a *gateway.Error on
// failure; callers never see a second error-handling path.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rootyapp/rooty/internal/quiz"
)

// DefaultSessionLimit is the batch size requested when the caller passes
// a non-positive limit.
const DefaultSessionLimit = 10

// Client invokes the backend's remote procedures over HTTP.
type Client struct {
	baseURL string
	httpc   *http.Client
	token   func() string
	logger  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithTokenSource sets the access-token provider attached to every call.
// An empty token means the client is unauthenticated.
func WithTokenSource(fn func() string) Option {
	return func(c *Client) { c.token = fn }
}

// WithLogger sets the client logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a gateway client for the given backend base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		token:   func() string { return "" },
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Authenticated reports whether the client currently holds an access token.
func (c *Client) Authenticated() bool {
	return c.token() != ""
}

// Attempt is the payload of the submit_attempt procedure. Exactly one of
// RootID/WordRootID is set.
type Attempt struct {
	RootID     *int64 `json:"root_id"`
	WordRootID *int64 `json:"word_root_id"`
	ThemeID    *int64 `json:"theme_id"`
	IsCorrect  bool   `json:"is_correct"`
	UserAnswer string `json:"user_answer"`
}

// AttemptAck acknowledges a recorded attempt.
type AttemptAck struct {
	Success   bool  `json:"success"`
	AttemptID int64 `json:"attempt_id,omitempty"`
}

// GetThemes returns all themes in backend order.
func (c *Client) GetThemes(ctx context.Context) ([]quiz.Theme, error) {
	var out []quiz.Theme
	if err := c.call(ctx, http.MethodGet, "/v1/rpc/get_themes", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []quiz.Theme{}
	}
	return out, nil
}

type sessionRequest struct {
	ThemeID *int64 `json:"theme_id"`
	Limit   int    `json:"limit"`
}

// GetSession fetches a batch of root items. A nil themeID requests an
// unscoped batch. An empty batch is returned as success; the caller
// decides whether empty is an error.
func (c *Client) GetSession(ctx context.Context, themeID *int64, limit int) ([]quiz.Root, error) {
	if limit <= 0 {
		limit = DefaultSessionLimit
	}
	var out []quiz.Root
	if err := c.call(ctx, http.MethodPost, "/v1/rpc/get_session", sessionRequest{ThemeID: themeID, Limit: limit}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []quiz.Root{}
	}
	return out, nil
}

// GetWordSession fetches a batch of multiple-choice word items, analogous
// to GetSession.
func (c *Client) GetWordSession(ctx context.Context, themeID *int64, limit int) ([]quiz.Word, error) {
	if limit <= 0 {
		limit = DefaultSessionLimit
	}
	var out []quiz.Word
	if err := c.call(ctx, http.MethodPost, "/v1/rpc/get_word_session", sessionRequest{ThemeID: themeID, Limit: limit}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []quiz.Word{}
	}
	return out, nil
}

// SubmitAttempt records an answer to a root item.
func (c *Client) SubmitAttempt(ctx context.Context, rootID int64, isCorrect bool, userAnswer string, themeID *int64) (AttemptAck, error) {
	return c.submit(ctx, Attempt{
		RootID:     &rootID,
		ThemeID:    themeID,
		IsCorrect:  isCorrect,
		UserAnswer: userAnswer,
	})
}

// SubmitWordAttempt records a selected option for a word item.
func (c *Client) SubmitWordAttempt(ctx context.Context, wordRootID int64, selectedOption string, isCorrect bool, themeID *int64) (AttemptAck, error) {
	return c.submit(ctx, Attempt{
		WordRootID: &wordRootID,
		ThemeID:    themeID,
		IsCorrect:  isCorrect,
		UserAnswer: selectedOption,
	})
}

func (c *Client) submit(ctx context.Context, a Attempt) (AttemptAck, error) {
	var ack AttemptAck
	if err := c.call(ctx, http.MethodPost, "/v1/rpc/submit_attempt", a, &ack); err != nil {
		return AttemptAck{}, err
	}
	return ack, nil
}

type reviewRequest struct {
	Limit int `json:"limit"`
}

// GetReview fetches previously missed roots. Empty is a valid result, not
// an error: nothing queued means the learner is caught up.
func (c *Client) GetReview(ctx context.Context, limit int) ([]quiz.ReviewRoot, error) {
	if limit <= 0 {
		limit = DefaultSessionLimit
	}
	var out []quiz.ReviewRoot
	if err := c.call(ctx, http.MethodPost, "/v1/rpc/get_review", reviewRequest{Limit: limit}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []quiz.ReviewRoot{}
	}
	return out, nil
}

// GetStatsOverview returns the learner's aggregate counters.
func (c *Client) GetStatsOverview(ctx context.Context) (quiz.Stats, error) {
	var out *quiz.Stats
	if err := c.call(ctx, http.MethodGet, "/v1/rpc/stats_overview", nil, &out); err != nil {
		return quiz.Stats{}, err
	}
	if out == nil {
		return quiz.Stats{}, noDataErr("no statistics data available")
	}
	return *out, nil
}

// call performs one RPC round trip. Any failure, synchronous or from the
// transport, comes back as a *Error; it never propagates raw.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return transportErr("encode request", err)
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return transportErr("build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("rpc transport failure")
		return transportErr("call "+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr != nil || payload.Message == "" {
			payload.Message = fmt.Sprintf("backend returned status %d", resp.StatusCode)
		}
		c.logger.Warn().Str("path", path).Str("code", payload.Error).Msg("rpc backend failure")
		return backendErr(payload.Error, payload.Message)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return transportErr("decode response from "+path, err)
	}
	return nil
}
