package fetcher

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/shopclip/backend/internal/domain"
)

// maxBodyBytes caps how much of a page is read into memory
const maxBodyBytes = 5 << 20

const (
	acceptHeader         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	acceptLanguageHeader = "fr-FR,fr;q=0.9,en;q=0.8"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 13_6) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
}

// Config controls timeouts, retries and outbound throttling
type Config struct {
	Timeout           time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration
	RequestsPerSecond float64
	Burst             int
	// UserAgent overrides the built-in pool when set
	UserAgent string
}

// DefaultConfig mirrors the defaults used by config.Load
func DefaultConfig() Config {
	return Config{
		Timeout:           15 * time.Second,
		MaxRetries:        0,
		RetryBackoff:      500 * time.Millisecond,
		RequestsPerSecond: 2,
		Burst:             5,
	}
}

// Client downloads product listing pages with browser-like headers
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	maxRetries  int
	backoff     time.Duration
	userAgent   string

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewClient creates a new page fetcher
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: rate.NewLimiter(limit, cfg.Burst),
		maxRetries:  cfg.MaxRetries,
		backoff:     cfg.RetryBackoff,
		userAgent:   strings.TrimSpace(cfg.UserAgent),
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *Client) pickUserAgent() string {
	if c.userAgent != "" {
		return c.userAgent
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return userAgents[c.rnd.Intn(len(userAgents))]
}

// doRequest executes a GET request with browser headers
func (c *Client) doRequest(ctx context.Context, pageURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.pickUserAgent())
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", acceptLanguageHeader)
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	return c.httpClient.Do(req)
}

// Fetch downloads pageURL. Transport errors and 5xx responses are retried with
// linear backoff; other non-2xx statuses fail immediately with *HTTPStatusError.
func (c *Client) Fetch(ctx context.Context, pageURL string) (*domain.Page, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries+1; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrFetchFailed, err)
		}

		page, retry, err := c.fetchOnce(ctx, pageURL)
		if err == nil {
			log.Debug("page fetched", "url", pageURL, "bytes", len(page.HTML), "attempt", attempt)
			return page, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}

		log.Debug("retrying page fetch", "url", pageURL, "attempt", attempt, "err", err)
		if err := sleepCtx(ctx, time.Duration(attempt)*c.backoff); err != nil {
			break
		}
	}

	log.Warn("page fetch failed", "url", pageURL, "err", lastErr)
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, pageURL string) (*domain.Page, bool, error) {
	resp, err := c.doRequest(ctx, pageURL)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		statusErr := &HTTPStatusError{URL: pageURL, StatusCode: resp.StatusCode}
		return nil, resp.StatusCode >= 500, statusErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, true, fmt.Errorf("%w: read body: %v", domain.ErrFetchFailed, err)
	}
	if len(body) == 0 {
		return nil, false, fmt.Errorf("%w: empty response body", domain.ErrFetchFailed)
	}

	finalURL := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return &domain.Page{URL: finalURL, HTML: body}, false, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HTTPStatusError reports a non-2xx response from the target site
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// Unwrap lets callers match every upstream failure with domain.ErrFetchFailed
func (e *HTTPStatusError) Unwrap() error { return domain.ErrFetchFailed }
