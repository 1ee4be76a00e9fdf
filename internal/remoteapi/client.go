// Package remoteapi implements both sides of the remote verification
// contract: GET /api/test/testids/verify?route=<route> returning the
// present/missing/hidden bucketing for server-rendered markup.
package remoteapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"tidgate/internal/testid"
)

// VerifyPath is the endpoint path served and consumed by this package.
const VerifyPath = "/api/test/testids/verify"

// DefaultTimeout bounds the remote call; a hung backend must degrade into a
// remote error, never leave the gate pending.
const DefaultTimeout = 10 * time.Second

// VerifyResponse is the wire form of one remote verification.
type VerifyResponse struct {
	Route     string       `json:"route"`
	Timestamp time.Time    `json:"timestamp"`
	Present   []testid.Key `json:"present"`
	Missing   []testid.Key `json:"missing"`
	Hidden    []testid.Key `json:"hidden"`
}

// Client calls a remote verification endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client with the given timeout; zero means
// DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Verify fetches the remote bucketing for one route. Any transport failure,
// non-2xx status, or malformed body is returned as an error; the caller
// records it as a remote failure and proceeds on local results.
func (c *Client) Verify(ctx context.Context, route string) (*VerifyResponse, error) {
	u := c.baseURL + VerifyPath + "?route=" + url.QueryEscape(route)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build remote request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote verification call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("remote verification status %d: %s", resp.StatusCode, body)
	}

	var out VerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode remote verification body: %w", err)
	}
	return &out, nil
}
