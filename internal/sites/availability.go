package sites

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrUnavailable indicates the remote item cannot be extracted.
var ErrUnavailable = errors.New("item unavailable")

// Checker verifies that a URL still resolves to extractable media
// before a job is accepted. Sites with an oEmbed endpoint are probed
// through it; anything else gets a plain HEAD request.
type Checker struct {
	client    *http.Client
	endpoints map[string]string
}

// NewChecker builds a Checker with the default endpoints.
func NewChecker() *Checker {
	return NewCheckerWithClient(&http.Client{Timeout: 10 * time.Second})
}

// NewCheckerWithClient allows injecting a custom HTTP client for testing.
func NewCheckerWithClient(client *http.Client) *Checker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Checker{
		client: client,
		endpoints: map[string]string{
			TikTok:  "https://www.tiktok.com/oembed",
			YouTube: "https://www.youtube.com/oembed",
		},
	}
}

// SetEndpoint overrides the oEmbed endpoint for a site.
func (c *Checker) SetEndpoint(site, endpoint string) {
	c.endpoints[site] = endpoint
}

// Check returns nil when the item appears extractable. A definite
// negative answer is reported as ErrUnavailable; transport failures are
// returned as-is so callers can distinguish outage from absence.
func (c *Checker) Check(ctx context.Context, site, rawURL string) error {
	endpoint, ok := c.endpoints[site]
	if !ok {
		return c.head(ctx, rawURL)
	}

	probe := endpoint + "?url=" + url.QueryEscape(rawURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probe, nil)
	if err != nil {
		return fmt.Errorf("build availability request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("availability probe: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: oembed returned %d", ErrUnavailable, resp.StatusCode)
	default:
		return fmt.Errorf("availability probe returned %d", resp.StatusCode)
	}
}

func (c *Checker) head(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build availability request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("availability probe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}
