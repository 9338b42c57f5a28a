package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/smartshop/backend/internal/domain"
)

// DefaultUserAgent is a desktop Chrome user agent shared by the checker and the browser
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// maxDrainBytes bounds how much of a response body is read before closing it
const maxDrainBytes = 64 << 10

var errTooManyRedirects = errors.New("stopped after too many redirects")

// Checker issues GET requests to decide whether a product page is live
type Checker struct {
	httpClient *http.Client
	userAgent  string
}

// CheckerConfig holds the checker's request limits
type CheckerConfig struct {
	Timeout      time.Duration
	MaxRedirects int
	UserAgent    string
}

// NewChecker creates a link checker
func NewChecker(cfg CheckerConfig) *Checker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 7 * time.Second
	}
	if cfg.MaxRedirects < 0 {
		cfg.MaxRedirects = 0
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	maxRedirects := cfg.MaxRedirects
	return &Checker{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return errTooManyRedirects
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
	}
}

// Check returns true when url answers with a 2xx status after redirects.
// Transport failures are returned wrapped in domain.ErrValidationNetwork.
func (c *Checker) Check(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrValidationNetwork, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}
