// Package client provides an HTTP client for the globotrack-server JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/raphaelgruber/globotrack/internal/metrics"
	"github.com/raphaelgruber/globotrack/internal/models"
)

// Client talks to a running globotrack-server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client.
// If baseURL is empty, uses GLOBOTRACK_SERVER_URL env var or defaults to localhost:8585.
// Timeout can be configured via GLOBOTRACK_CLIENT_TIMEOUT env var (default 2m, route searches are slow).
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("GLOBOTRACK_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8585"
	}

	timeout := 2 * time.Minute
	if t := os.Getenv("GLOBOTRACK_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error: %d - %s", e.Status, e.Message)
}

// do sends a request with an optional JSON body and decodes the JSON reply.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// Health checks the server and returns its version.
func (c *Client) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Version, nil
}

// GetServerStats fetches the server's in-memory runtime statistics.
func (c *Client) GetServerStats(ctx context.Context) (*metrics.Snapshot, error) {
	var snap metrics.Snapshot
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Profile is the signed-in state reported by the server.
type Profile struct {
	SignedIn bool                `json:"signedIn"`
	Profile  *models.UserProfile `json:"profile"`
}

// GetProfile fetches the signed-in profile, if any.
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, "/api/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SearchResult is the server's search board after a search.
type SearchResult struct {
	Origin      string               `json:"origin"`
	Destination string               `json:"destination"`
	Results     []models.TravelRoute `json:"results"`
	Message     string               `json:"message"`
	Stale       bool                 `json:"stale"`
}

// SearchRoutes runs a route search on the server.
func (c *Client) SearchRoutes(ctx context.Context, origin, destination string) (*SearchResult, error) {
	body := map[string]string{"origin": origin, "destination": destination}
	var res SearchResult
	if err := c.do(ctx, http.MethodPost, "/api/routes/search", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
