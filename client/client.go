// Package client implements the consumer side of the queue protocol: a thin
// HTTP wrapper with typed errors, an adaptive status poller and a session
// countdown timer bound to an absolute deadline.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Sentinel errors mirroring the server's error codes. Matched with errors.Is.
var (
	ErrAlreadyQueued    = errors.New("queue: already queued")
	ErrNotFound         = errors.New("queue: entry not found")
	ErrInvalidState     = errors.New("queue: invalid state")
	ErrCapacityExceeded = errors.New("queue: waiting capacity exceeded")

	// ErrServiceUnavailable covers transport failures and malformed
	// replies. It is the only error the poller retries.
	ErrServiceUnavailable = errors.New("queue: service unavailable")
)

// Entry statuses as reported by the server.
const (
	StatusDisconnected = "disconnected"
	StatusWaiting      = "waiting"
	StatusDraft        = "draft"
	StatusConnected    = "connected"
)

// JoinResult is the server's reply to a join request.
type JoinResult struct {
	UserID   string `json:"user_id"`
	Position int    `json:"position"`
}

// StatusInfo is the live view of one queue entry.
type StatusInfo struct {
	UserID           string     `json:"user_id"`
	Status           string     `json:"status"`
	Position         int        `json:"position"`
	EstimatedTime    int64      `json:"estimated_time"`
	DraftExpiresAt   *time.Time `json:"draft_expires_at,omitempty"`
	SessionExpiresAt *time.Time `json:"session_expires_at,omitempty"`
}

/// Session is a granted slot: a hard deadline plus the JWT that proves
// admission to the auth endpoints.
type Session struct {
	Status           string    `json:"status"`
	SessionDuration  int64     `json:"session_duration"`
	SessionExpiresAt time.Time `json:"session_expires_at"`
	Token            string    `json:"token"`
}

// Metrics is the queue-wide summary.
type Metrics struct {
	WaitingUsers int `json:"waiting_users"`
	DraftUsers   int `json:"draft_users"`
	ActiveUsers  int `json:"active_users"`
	TotalSlots   int `json:"total_slots"`
}

// TimerInfo describes the entry's active countdown and its push channel.
type TimerInfo struct {
	TimerType string `json:"timer_type"`
	TTL       int64  `json:"ttl"`
	Channel   string `json:"channel"`
}

// TokenPair is an access/refresh token pair from the auth endpoints.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SignUpRequest carries the registration payload. Registration is only
// accepted while the queue session token is valid.
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Avatar   string `json:"avatar,omitempty"`
}

type apiError struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// Client talks to one queue server. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given base URL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Join enters the waiting queue. An empty userID asks the server to mint one;
// the assigned ID is returned in the result.
func (c *Client) Join(ctx context.Context, userID string) (JoinResult, error) {
	var res JoinResult
	err := c.do(ctx, http.MethodPost, "/queue/join", userRequest{UserID: userID}, &res, "")
	return res, err
}

// Leave removes the entry in any status.
func (c *Client) Leave(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodPost, "/queue/leave", userRequest{UserID: userID}, nil, "")
}

// Confirm accepts a drafted slot and returns the granted session.
func (c *Client) Confirm(ctx context.Context, userID string) (Session, error) {
	var res Session
	err := c.do(ctx, http.MethodPost, "/queue/confirm", userRequest{UserID: userID}, &res, "")
	return res, err
}

// Heartbeat refreshes the entry's liveness mark.
func (c *Client) Heartbeat(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodPost, "/queue/heartbeat", userRequest{UserID: userID}, nil, "")
}

// Status reports the entry's current status, position and wait estimate.
func (c *Client) Status(ctx context.Context, userID string) (StatusInfo, error) {
	var res StatusInfo
	err := c.do(ctx, http.MethodGet, "/queue/status/"+url.PathEscape(userID), nil, &res, "")
	return res, err
}

// Metrics returns the queue-wide summary.
func (c *Client) Metrics(ctx context.Context) (Metrics, error) {
	var res Metrics
	err := c.do(ctx, http.MethodGet, "/queue/metrics", nil, &res, "")
	return res, err
}

// Timer returns the entry's active countdown: the suggested poll delay for
// waiting entries, the confirm window for drafts, the session remainder for
// connected ones.
func (c *Client) Timer(ctx context.Context, userID string) (TimerInfo, error) {
	var res TimerInfo
	err := c.do(ctx, http.MethodGet, "/queue/timers/"+url.PathEscape(userID), nil, &res, "")
	return res, err
}

// SignUp registers an account. sessionToken must be a live queue session JWT
// obtained from Confirm.
func (c *Client) SignUp(ctx context.Context, sessionToken string, req SignUpRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/register", req, nil, sessionToken)
}

// SignIn exchanges credentials for an access/refresh token pair.
func (c *Client) SignIn(ctx context.Context, email, password string) (TokenPair, error) {
	var res TokenPair
	body := map[string]string{"email": email, "password": password}
	err := c.do(ctx, http.MethodPost, "/auth/login", body, &res, "")
	return res, err
}

// SignOut revokes the access token on the server.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/signout", nil, nil, accessToken)
}

type userRequest struct {
	UserID string `json:"user_id"`
}

// do performs one JSON round trip. Non-2xx replies are mapped to sentinel
// errors by their code field; anything unparseable is ErrServiceUnavailable.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, bearer string) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", ErrServiceUnavailable, err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrServiceUnavailable, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrServiceUnavailable, err)
		}
		return nil
	}

	var apiErr apiError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Code == "" {
		return fmt.Errorf("%w: http %d", ErrServiceUnavailable, resp.StatusCode)
	}
	return fmt.Errorf("%w: %s", codeError(apiErr.Code), apiErr.Detail)
}

func codeError(code string) error {
	switch code {
	case "ALREADY_QUEUED":
		return ErrAlreadyQueued
	case "NOT_FOUND":
		return ErrNotFound
	case "INVALID_STATE":
		return ErrInvalidState
	case "QUEUE_FULL":
		return ErrCapacityExceeded
	default:
		return ErrServiceUnavailable
	}
}
