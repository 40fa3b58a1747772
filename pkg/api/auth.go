package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/floe-dev/floectl/pkg/domain"
)

// SignInRequest is the credentials payload for /auth/login
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpRequest is the registration payload for /auth/sign-up
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// response headers carrying token material on successful sign-in
const (
	headerAccessToken  = "Authorization"
	headerRefreshToken = "Authorization-Refresh"
	headerExpires      = "Expires"
)

// SignIn authenticates and returns the token material the backend sends
// via response headers. A nominally successful response that lacks either
// token is treated as a failed sign-in: the result is nil and the error
// says which header was missing.
func (c *Client) SignIn(ctx context.Context, req SignInRequest) (*domain.Token, error) {
	body := &bytes.Buffer{}
	if err := json.NewEncoder(body).Encode(req); err != nil {
		return nil, fmt.Errorf("encode credentials: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/auth/login", nil), body)
	if err != nil {
		return nil, fmt.Errorf("make request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // nothing useful to do on close failure

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read sign-in response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp.StatusCode, respBody)
	}

	token := domain.Token{
		AccessToken:  resp.Header.Get(headerAccessToken),
		RefreshToken: resp.Header.Get(headerRefreshToken),
		ExpiresAt:    parseExpires(resp.Header.Get(headerExpires)),
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("sign-in response missing %s header", headerAccessToken)
	}
	if token.RefreshToken == "" {
		return nil, fmt.Errorf("sign-in response missing %s header", headerRefreshToken)
	}
	return &token, nil
}

// SignUp registers a new account
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) error {
	return c.postJSON(ctx, "/auth/sign-up", req, nil)
}

// parseExpires handles the expiry header, which the backend has sent both
// as an HTTP date and as epoch milliseconds. Unparseable values yield a
// zero time, the token is then used until the server rejects it.
func parseExpires(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := http.ParseTime(s); err == nil {
		return t
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n > 1e12 { // milliseconds
			return time.UnixMilli(n)
		}
		return time.Unix(n, 0)
	}
	return time.Time{}
}
