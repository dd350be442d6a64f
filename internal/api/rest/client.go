// Package rest is the JSON-over-HTTP client of the platform API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/dtroode/inkdesk/internal/logger"
	"github.com/dtroode/inkdesk/internal/model"
)

var (
	_ model.AuthService       = (*Client)(nil)
	_ model.TokenRevoker      = (*Client)(nil)
	_ model.ModerationService = (*Client)(nil)
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Client talks to the platform REST API. Requests carry the bearer token
// from tokens when one is stored.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     model.TokenSource
	breaker    *gobreaker.CircuitBreaker
	logger     *logger.Logger
}

// New creates a Client for baseURL. httpClient may be nil.
func New(baseURL string, httpClient *http.Client, tokens model.TokenSource, logger *logger.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "platform-api",
			MaxRequests: 1,
			Interval:    30 * time.Second,
			Timeout:     10 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: reachable,
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("REST client: circuit breaker state changed",
					"name", name,
					"from", from.String(),
					"to", to.String())
			},
		}),
		logger: logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, email, password string) (model.LoginResult, error) {
	var result model.LoginResult
	err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &result)
	if err != nil {
		return model.LoginResult{}, err
	}
	return result, nil
}

func (c *Client) CurrentUser(ctx context.Context) (model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

type revokeRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (c *Client) RevokeToken(ctx context.Context, refreshToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/revoke", revokeRequest{RefreshToken: refreshToken}, nil)
}

func (c *Client) ListComments(ctx context.Context) ([]model.Comment, error) {
	var comments []model.Comment
	if err := c.do(ctx, http.MethodGet, "/admin/comments", nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) SetCommentStatus(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPatch, "/admin/comments/"+url.PathEscape(id)+"/status", nil, nil)
}

func (c *Client) ListAuthorRequests(ctx context.Context) ([]model.AuthorRequest, error) {
	var requests []model.AuthorRequest
	if err := c.do(ctx, http.MethodGet, "/admin/author-requests", nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

type decideRequest struct {
	Status model.RequestStatus `json:"status"`
}

func (c *Client) DecideAuthorRequest(ctx context.Context, id string, status model.RequestStatus) error {
	if !status.Valid() || status == model.RequestPending {
		return fmt.Errorf("%w: %q", model.ErrInvalidStatus, status)
	}
	return c.do(ctx, http.MethodPatch, "/admin/author-requests/"+url.PathEscape(id), decideRequest{Status: status}, nil)
}

// do sends one request and decodes a 2xx body into out. Non-2xx responses
// become *model.APIError; requests without a response become
// *model.NetworkError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.GetToken(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	_, err = c.breaker.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(req, op, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = &model.NetworkError{Op: op, Err: err}
	}

	c.logger.Debug("REST client: request finished",
		"method", method,
		"path", path,
		"duration_ms", time.Since(start).Milliseconds(),
		"ok", err == nil)
	return err
}

func (c *Client) roundTrip(req *http.Request, op string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &model.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}

// decodeError reads a server error body. JSON bodies provide message and
// error fields; other bodies become the message verbatim.
func decodeError(resp *http.Response) error {
	apiErr := &model.APIError{Status: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if len(data) == 0 {
		return apiErr
	}
	if err := json.Unmarshal(data, apiErr); err != nil {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	apiErr.Status = resp.StatusCode
	return apiErr
}

// reachable reports whether err still proves the server is answering.
func reachable(err error) bool {
	if err == nil {
		return true
	}
	var netErr *model.NetworkError
	if errors.As(err, &netErr) {
		return false
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status < 500
	}
	return true
}
