// Package opensea fetches collection statistics from the marketplace API.
package opensea

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/cryptogamefiverse/nftdash/internal/config"
	"github.com/cryptogamefiverse/nftdash/internal/constants"
	"github.com/cryptogamefiverse/nftdash/internal/http"
	"github.com/cryptogamefiverse/nftdash/internal/logging"
	"github.com/cryptogamefiverse/nftdash/internal/models"
	"github.com/cryptogamefiverse/nftdash/internal/ratelimit"
)

const maxErrorBody = 512

// Stats are request counters for one Client.
type Stats struct {
	Requests  int64 `json:"requests"`
	Failures  int64 `json:"failures"`
	Throttled int64 `json:"throttled"`
}

// Client is the marketplace API client.
type Client struct {
	httpClient *nethttp.Client
	baseURL    string
	apiKey     string
	limiter    *ratelimit.RateLimiter

	requests  atomic.Int64
	failures  atomic.Int64
	throttled atomic.Int64
}

// NewClient creates a client from cfg. cfg.APIKey may be empty.
func NewClient(cfg *config.Config) (*Client, error) {
	baseURL := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("API base URL is empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}

	httpClient, err := http.CreateClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	// Single attempt unless max_retries is set.
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = httpClient
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = constants.RetryInitialDelay
	retryClient.RetryWaitMax = constants.RetryMaxDelay
	retryClient.Backoff = http.Backoff
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = logging.NewRetryLogger(nil)

	return &Client{
		httpClient: retryClient.StandardClient(),
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		limiter:    ratelimit.NewFromConfig(cfg.RatePerSecond, cfg.Burst),
	}, nil
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Stats returns a snapshot of the request counters.
func (c *Client) Stats() Stats {
	return Stats{
		Requests:  c.requests.Load(),
		Failures:  c.failures.Load(),
		Throttled: c.throttled.Load(),
	}
}

// FetchCollection performs GET /api/v1/collection/{slug}.
func (c *Client) FetchCollection(ctx context.Context, slug string) (*models.Collection, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter cancelled: %w", err)
	}

	endpoint := c.baseURL + fmt.Sprintf(constants.CollectionPath, url.PathEscape(slug))
	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(constants.APIKeyHeader, c.apiKey)
	}

	c.requests.Add(1)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.failures.Add(1)
		return nil, fmt.Errorf("collection %s: request failed: %w", slug, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("slug", slug).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Collection request finished")

	if resp.StatusCode != nethttp.StatusOK {
		c.failures.Add(1)
		return nil, c.statusError(slug, resp)
	}

	var body models.CollectionResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, constants.MaxResponseBytes)).Decode(&body); err != nil {
		c.failures.Add(1)
		return nil, fmt.Errorf("collection %s: failed to decode response: %w", slug, err)
	}
	if body.Collection == nil {
		c.failures.Add(1)
		return nil, fmt.Errorf("collection %s: %w", slug, ErrEmptyResponse)
	}
	if body.Collection.Slug == "" {
		body.Collection.Slug = slug
	}
	if body.Collection.Name == "" {
		body.Collection.Name = slug
	}

	return body.Collection, nil
}

// FetchRow fetches one collection and converts it to a table row.
func (c *Client) FetchRow(ctx context.Context, slug string) (models.Row, error) {
	coll, err := c.FetchCollection(ctx, slug)
	if err != nil {
		return models.Row{}, err
	}
	return models.NewRow(coll), nil
}

func (c *Client) statusError(slug string, resp *nethttp.Response) error {
	switch resp.StatusCode {
	case nethttp.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, slug)

	case nethttp.StatusTooManyRequests:
		c.throttled.Add(1)
		cooldown, ok := http.ParseRetryAfter(resp)
		if !ok {
			cooldown = ratelimit.DefaultCooldown
		}
		c.limiter.SetCooldown(cooldown)

		ev := log.Warn().Str("slug", slug).Dur("cooldown", cooldown)
		if remaining := resp.Header.Get("X-RateLimit-Remaining"); remaining != "" {
			ev = ev.Str("remaining", remaining)
		}
		ev.Msg("Throttled by marketplace")
		return fmt.Errorf("%w: %s", ErrThrottled, slug)

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Slug:       slug,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
}
