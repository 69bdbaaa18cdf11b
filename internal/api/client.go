// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/emlinh-tui/internal/model"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Cause      error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeNotFound
	ErrTypeInvalidResponse
	// ErrTypeBackend means the backend answered with success=false.
	ErrTypeBackend
)

// Sentinel errors for easy checking.
var (
	ErrTimeout  = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrNotFound = &ClientError{Type: ErrTypeNotFound, Message: "not found"}
)

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// IsNotFound checks if an error is a 404 without a backend message.
func IsNotFound(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotFound
	}
	return false
}

// IsBackend checks if the backend rejected the request itself.
func IsBackend(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeBackend
	}
	return false
}

// IsTransport reports whether the request never got a usable answer.
func IsTransport(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeConnection || clientErr.Type == ErrTypeTimeout
	}
	return err != nil
}

// BackendMessage returns the message of a backend rejection. The message
// may be empty when the backend sent none.
func BackendMessage(err error) (string, bool) {
	var clientErr *ClientError
	if errors.As(err, &clientErr) && clientErr.Type == ErrTypeBackend {
		return clientErr.Message, true
	}
	return "", false
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend origin (default: http://127.0.0.1:5000)
	BaseURL string

	// Timeout for JSON requests (default: 30s). File downloads are bounded
	// by their context only.
	Timeout time.Duration

	// RequestsPerSecond caps outgoing requests. Zero disables the limit.
	RequestsPerSecond float64

	// Burst for the rate limiter (default: 5)
	Burst int

	// UserAgent sent with every request
	UserAgent string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:   "http://127.0.0.1:5000",
		Timeout:   30 * time.Second,
		Burst:     5,
		UserAgent: "emlinh-tui",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the emlinh backend REST API.
//
// The Client is thread-safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	fileClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:5000"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.Burst <= 0 {
		config.Burst = 5
	}
	if config.UserAgent == "" {
		config.UserAgent = "emlinh-tui"
	}

	limiter := rate.NewLimiter(rate.Inf, config.Burst)
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst)
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		fileClient: &http.Client{},
		limiter:    limiter,
	}
}

// BaseURL returns the backend origin without a trailing slash.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// FileURL returns the absolute streaming URL of a video file.
func (c *Client) FileURL(id model.ID) string {
	return c.config.BaseURL + "/api/videos/" + url.PathEscape(id.String()) + "/file"
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.transportError(err)
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	return req, nil
}

func (c *Client) transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
	}
	return &ClientError{Type: ErrTypeConnection, Message: "cannot reach backend", Cause: err}
}

// do sends a request and decodes the JSON reply into out. A reply with
// success=false, or a non-2xx reply carrying a message, becomes a backend
// error holding the backend's message.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body []byte
	switch v := in.(type) {
	case nil:
	case []byte:
		body = v
	default:
		data, err := json.Marshal(in)
		if err != nil {
			return &ClientError{Type: ErrTypeUnknown, Message: "failed to marshal request", Cause: err}
		}
		body = data
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to read response", StatusCode: resp.StatusCode, Cause: err}
	}

	var env envelope
	jsonErr := json.Unmarshal(data, &env)
	if jsonErr == nil && env.Success != nil && !*env.Success {
		return &ClientError{Type: ErrTypeBackend, Message: env.Message, StatusCode: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if jsonErr == nil && env.Message != "" {
			return &ClientError{Type: ErrTypeBackend, Message: env.Message, StatusCode: resp.StatusCode}
		}
		if resp.StatusCode == http.StatusNotFound {
			return &ClientError{Type: ErrTypeNotFound, Message: "not found: " + path, StatusCode: resp.StatusCode}
		}
		return &ClientError{
			Type:       ErrTypeInvalidResponse,
			Message:    "unexpected status: " + resp.Status,
			StatusCode: resp.StatusCode,
		}
	}

	if jsonErr != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", StatusCode: resp.StatusCode, Cause: jsonErr}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", StatusCode: resp.StatusCode, Cause: err}
	}
	return nil
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// Health queries GET /health.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// CHAT
// =============================================================================

// SendMessage posts a chat message and returns the assistant reply.
func (c *Client) SendMessage(ctx context.Context, req SendRequest) (*SendResponse, error) {
	var out SendResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat/send", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateVideo starts an asynchronous video job.
func (c *Client) CreateVideo(ctx context.Context, req CreateVideoRequest) (*CreateVideoResponse, error) {
	var out CreateVideoResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat/create-video", req, &out); err != nil {
		return nil, err
	}
	if out.JobID.IsZero() {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "response has no job_id"}
	}
	return &out, nil
}

// History returns the stored exchanges of a session, oldest first.
func (c *Client) History(ctx context.Context, sessionID string) ([]model.HistoryEntry, error) {
	var out historyResponse
	if err := c.do(ctx, http.MethodGet, "/api/chat/history/"+url.PathEscape(sessionID), nil, &out); err != nil {
		return nil, err
	}
	return out.History, nil
}

// Search finds past exchanges similar to query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]model.HistoryEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	var out searchResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat/search", searchRequest{Query: query, Limit: limit}, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// =============================================================================
// SESSIONS
// =============================================================================

// Sessions lists stored chat sessions.
func (c *Client) Sessions(ctx context.Context) ([]model.SessionSummary, error) {
	var out sessionsResponse
	if err := c.do(ctx, http.MethodGet, "/api/chat/sessions", nil, &out); err != nil {
		return nil, err
	}
	return out.Sessions, nil
}

// Session fetches one stored session.
func (c *Client) Session(ctx context.Context, sessionID string) (*model.SessionSummary, error) {
	var out sessionResponse
	if err := c.do(ctx, http.MethodGet, "/api/chat/sessions/"+url.PathEscape(sessionID), nil, &out); err != nil {
		return nil, err
	}
	if out.Session == nil {
		return nil, ErrNotFound
	}
	return out.Session, nil
}

// UpdateSession sends the populated fields of patch.
func (c *Client) UpdateSession(ctx context.Context, sessionID string, patch SessionPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	body, err := patch.JSON()
	if err != nil {
		return &ClientError{Type: ErrTypeUnknown, Message: "failed to build patch", Cause: err}
	}
	return c.do(ctx, http.MethodPut, "/api/chat/sessions/"+url.PathEscape(sessionID), body, nil)
}

// DeleteSession removes a stored session.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/api/chat/sessions/"+url.PathEscape(sessionID), nil, nil)
}

// =============================================================================
// VIDEOS
// =============================================================================

// Videos returns one page of the library.
func (c *Client) Videos(ctx context.Context, q VideoQuery) (*VideoList, error) {
	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		params.Set("per_page", strconv.Itoa(q.PerPage))
	}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	path := "/api/videos"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	var out videoListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out.VideoList, nil
}

// Video returns one video's details.
func (c *Client) Video(ctx context.Context, id model.ID) (*model.Video, error) {
	var out videoResponse
	if err := c.do(ctx, http.MethodGet, "/api/videos/"+url.PathEscape(id.String()), nil, &out); err != nil {
		return nil, err
	}
	return &out.Video, nil
}

// DeleteVideo removes a video and its file.
func (c *Client) DeleteVideo(ctx context.Context, id model.ID) error {
	return c.do(ctx, http.MethodDelete, "/api/videos/"+url.PathEscape(id.String()), nil, nil)
}

// OpenVideoFile starts streaming a video file. The caller closes the
// reader. size is -1 when the server sends no length.
func (c *Client) OpenVideoFile(ctx context.Context, id model.ID) (io.ReadCloser, int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/videos/"+url.PathEscape(id.String())+"/file", nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "video/mp4, */*")

	resp, err := c.fileClient.Do(req)
	if err != nil {
		return nil, 0, c.transportError(err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		var env envelope
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &env) == nil && env.Message != "" {
			return nil, 0, &ClientError{Type: ErrTypeBackend, Message: env.Message, StatusCode: resp.StatusCode}
		}
		if resp.StatusCode == http.StatusNotFound {
			return nil, 0, &ClientError{Type: ErrTypeNotFound, Message: fmt.Sprintf("video %s has no file", id), StatusCode: resp.StatusCode}
		}
		return nil, 0, &ClientError{Type: ErrTypeInvalidResponse, Message: "unexpected status: " + resp.Status, StatusCode: resp.StatusCode}
	}
	return resp.Body, resp.ContentLength, nil
}

// =============================================================================
// IDEAS
// =============================================================================

// Ideas returns the newest ideas.
func (c *Client) Ideas(ctx context.Context, perPage int) ([]model.Idea, error) {
	if perPage <= 0 {
		perPage = 5
	}
	var out ideasResponse
	if err := c.do(ctx, http.MethodGet, "/api/ideas?per_page="+strconv.Itoa(perPage), nil, &out); err != nil {
		return nil, err
	}
	return out.Ideas, nil
}
