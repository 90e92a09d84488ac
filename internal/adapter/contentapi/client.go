// Package contentapi implements the content gateway against the trail
// content layer's REST API, with snapshot caching in front of it.
package contentapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/dulegil/region-service/internal/content"
	"github.com/dulegil/region-service/internal/observability"
	"github.com/dulegil/region-service/internal/region"
)

// Client implements content.Gateway over HTTP. Every failure wraps
// content.ErrUnavailable so the planner reports GatewayUnavailable rather
// than "no content".
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a content API client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
		metrics: metrics,
	}
}

// Availability fetches the full two-level availability snapshot in one call.
func (c *Client) Availability(ctx context.Context) (content.Availability, error) {
	start := time.Now()
	var resp availabilityResponse
	err := c.get(ctx, c.baseURL+"/v1/availability", &resp)
	c.observe("availability", start, err)
	if err != nil {
		return content.Availability{}, err
	}

	avail := content.Availability{
		Provinces: make(map[region.Code]bool, len(resp.Provinces)),
		Cities:    make(map[region.Code]map[region.Code]bool, len(resp.Provinces)),
	}
	for _, p := range resp.Provinces {
		code := region.Code(p.Code)
		avail.Provinces[code] = true
		avail.Cities[code] = make(map[region.Code]bool, len(p.Cities))
		for _, city := range p.Cities {
			avail.Cities[code][region.Code(city)] = true
		}
	}
	return avail, nil
}

// TrailsFor fetches the published trails of one city.
func (c *Client) TrailsFor(ctx context.Context, province, city region.Code) ([]content.Trail, error) {
	u := fmt.Sprintf("%s/v1/provinces/%s/cities/%s/trails",
		c.baseURL, url.PathEscape(string(province)), url.PathEscape(string(city)))

	start := time.Now()
	var resp trailsResponse
	err := c.get(ctx, u, &resp)
	c.observe("trails", start, err)
	if err != nil {
		return nil, err
	}
	return resp.Trails, nil
}

func (c *Client) get(ctx context.Context, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("content api request: %w: %w", content.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("content api status %d: %s: %w", resp.StatusCode, body, content.ErrUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w: %w", content.ErrUnavailable, err)
	}
	return nil
}

func (c *Client) observe(call string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.metrics.GatewayRequests.WithLabelValues(call, outcome).Inc()
	c.metrics.GatewayDuration.WithLabelValues(call).Observe(time.Since(start).Seconds())
}

// Content API response types.

type availabilityResponse struct {
	Provinces []availabilityProvince `json:"provinces"`
}

type availabilityProvince struct {
	Code   string   `json:"code"`
	Cities []string `json:"cities"`
}

type trailsResponse struct {
	Trails []content.Trail `json:"trails"`
}
