// Package newsapi is a small client for the newsapi.org v2 REST API.
package newsapi

import (
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

	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
)

const (
	defaultBaseURL              = "https://newsapi.org/v2"
	defaultTimeout              = 10 * time.Second
	errorBodyReadLimit    int64 = 1024
	responseBodyReadLimit int64 = 4 << 20
)

var errAPIKeyRequired = errors.New("news api key is required")

// Client wraps the everything and sources endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout overrides the request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient builds the client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// EverythingRequest filters the everything endpoint.
type EverythingRequest struct {
	Query    string
	Sources  string
	Page     int
	PageSize int
}

// Everything returns the raw JSON body of /everything sorted by publish date.
// The body is passed through untouched so clients see the provider's shape.
func (c *Client) Everything(ctx context.Context, req EverythingRequest) (json.RawMessage, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "news client not configured")
	}
	params := url.Values{}
	params.Set("q", req.Query)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("page", strconv.Itoa(req.Page))
	params.Set("pageSize", strconv.Itoa(req.PageSize))
	if req.Sources != "" {
		params.Set("sources", req.Sources)
	}
	return c.get(ctx, "everything", params)
}

// TechnologySources returns the English technology sources.
func (c *Client) TechnologySources(ctx context.Context) (json.RawMessage, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "news client not configured")
	}
	params := url.Values{}
	params.Set("category", "technology")
	params.Set("language", "en")

	body, err := c.get(ctx, "sources", params)
	if err != nil {
		return nil, err
	}
	var apiResp struct {
		Sources json.RawMessage `json:"sources"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode sources response")
	}
	if len(apiResp.Sources) == 0 {
		return json.RawMessage("[]"), nil
	}
	return apiResp.Sources, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/%s?%s", strings.TrimRight(c.baseURL, "/"), strings.TrimLeft(path, "/"), params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build news request")
	}
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute news request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "news request failed")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read news response")
	}
	if !json.Valid(body) {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "news response is not valid json")
	}
	return json.RawMessage(body), nil
}
