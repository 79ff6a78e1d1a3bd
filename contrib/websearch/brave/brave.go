// Package brave implements websearch.Searcher on the Brave Search API.
package brave

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	radsafeerrors "github.com/sweetpotato0/radsafe/errors"
	"github.com/sweetpotato0/radsafe/pkg/logging"
	"github.com/sweetpotato0/radsafe/rag/preprocess"
	"github.com/sweetpotato0/radsafe/websearch"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Brave web search endpoint.
	DefaultBaseURL = "https://api.search.brave.com/res/v1/web/search"
	// EnvAPIKey names the variable holding the subscription token.
	EnvAPIKey = "BRAVE_SEARCH_API_KEY"

	maxCount     = 20
	maxBodyBytes = 4 << 20
)

var (
	_ websearch.Searcher     = (*Client)(nil)
	_ websearch.Availability = (*Client)(nil)
)

// Config holds Brave client settings.
type Config struct {
	APIKey            string
	BaseURL           string
	RequestsPerSecond float64
	Timeout           time.Duration
	HTTPClient        *http.Client
}

// Client calls the Brave Search API. Requests share one rate limiter.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New builds a client. An empty APIKey is allowed: Search then reports
// websearch.ErrNoCredential without touching the network.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: cfg.BaseURL,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:  logging.WithComponent("websearch.brave"),
	}
}

type response struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Available reports whether an API key is configured.
func (c *Client) Available() bool {
	return c.apiKey != ""
}

// Search implements websearch.Searcher.
func (c *Client) Search(ctx context.Context, query string, count int) ([]websearch.Result, error) {
	if c.apiKey == "" {
		return nil, websearch.ErrNoCredential
	}
	if count <= 0 {
		count = websearch.DefaultResultCount
	}
	count = min(count, maxCount)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: brave: %v", radsafeerrors.ErrRateLimited, err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("brave: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("brave: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("brave: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: brave returned 429", radsafeerrors.ErrRateLimited)
		}
		return nil, fmt.Errorf("brave: unexpected status %d: %s", resp.StatusCode, logging.Trim(string(body), 200))
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		// An unexpected shape means no usable results.
		c.logger.Warn("brave response not understood", "error", err)
		return nil, nil
	}

	results := make([]websearch.Result, 0, len(parsed.Web.Results))
	for _, r := range parsed.Web.Results {
		results = append(results, websearch.Result{
			Title:   preprocess.StripTags(r.Title),
			Link:    r.URL,
			Snippet: preprocess.StripTags(r.Description),
		})
	}
	c.logger.Info("brave search completed",
		"query", logging.Trim(query, 120),
		"results", len(results),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return results, nil
}
