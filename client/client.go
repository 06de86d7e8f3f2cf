// Package client calls a running scope-search service over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/EvanZhouDev/scope-search/models"
)

// DefaultBaseURL is where the service listens when started with defaults.
const DefaultBaseURL = "http://localhost:3000"

// APIError is returned when the service answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("search failed (%d %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("search failed (%d): %s", e.StatusCode, e.Message)
}

// Client is a thin wrapper around POST /search.
type Client struct {
	baseURL string
	apiKey  string
	engine  string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sends key in the X-API-Key header.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithEngine selects the service-side fetch engine ("browser" or "http").
func WithEngine(engine string) Option {
	return func(c *Client) { c.engine = engine }
}

// New creates a Client. An empty baseURL uses DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs query on the service and returns its results in page order.
func (c *Client) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	body, err := json.Marshal(models.SearchRequest{Query: query, Engine: c.engine})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Cannot connect to server: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var er models.ErrorResponse
		if json.Unmarshal(respBody, &er) == nil && er.Error != "" {
			apiErr.Message, apiErr.Code = er.Error, er.Code
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return nil, apiErr
	}

	var sr models.SearchResponse
	if err := json.Unmarshal(respBody, &sr); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if sr.Results == nil {
		sr.Results = []models.SearchResult{}
	}
	return sr.Results, nil
}
