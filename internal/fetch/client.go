// Package fetch retrieves the three upstream store resources that feed a
// refresh cycle: the latest engine snapshot, the decision log, and the
// equity curve.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/yourorg/lending-monitor/internal/config"
)

// Client is a thin reader over the store's REST surface. Every request
// carries the fixed credential pair as both the apikey header and a
// bearer token.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a store client from configuration.
func NewClient(cfg config.Config) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.StoreURL, "/"),
		apiKey:     cfg.StoreKey,
		httpClient: newOneShotClient(),
	}
}

// newOneShotClient builds the HTTP client. RetryMax is zero: each tick
// gets exactly one attempt per resource, and recovery is the next tick.
func newOneShotClient() *http.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 0
	c.Logger = nil
	return c.StandardClient()
}

// Configured reports whether the client holds usable credentials.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

// getJSON issues one bounded GET against the store and decodes the body.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("store request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("store error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
