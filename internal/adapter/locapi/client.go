// Package locapi implements location.Sensor against a device positioning
// bridge: kiosk and head-unit deployments expose their GNSS hardware through
// a small local HTTP endpoint instead of a mobile OS location API.
package locapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dulegil/region-service/internal/geo"
	"github.com/dulegil/region-service/internal/location"
)

// Client fetches one-shot position fixes from the bridge.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a bridge client. Per-attempt timeouts come from the
// acquisition options, not from the HTTP client.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		logger:     logger,
	}
}

// Acquire requests a single fix. The accuracy tier, timeout, and staleness
// tolerance are passed to the bridge so it can decide whether a cached fix
// will do. Failures come back as classified *location.Error values.
func (c *Client) Acquire(ctx context.Context, opts location.Options) (geo.Coordinate, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	params := url.Values{
		"accuracy":   {accuracyParam(opts.HighAccuracy)},
		"timeout_ms": {strconv.FormatInt(opts.Timeout.Milliseconds(), 10)},
		"max_age_ms": {strconv.FormatInt(opts.MaxAge.Milliseconds(), 10)},
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet,
		c.baseURL+"/v1/position?"+params.Encode(), nil)
	if err != nil {
		return geo.Coordinate{}, &location.Error{Kind: location.KindUnknown, Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || attemptCtx.Err() == context.DeadlineExceeded {
			return geo.Coordinate{}, &location.Error{Kind: location.KindTimeout, Cause: err}
		}
		if ctx.Err() != nil {
			return geo.Coordinate{}, ctx.Err()
		}
		// A dead bridge means no position source on this device right now.
		return geo.Coordinate{}, &location.Error{Kind: location.KindPositionUnavailable, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return geo.Coordinate{}, classifyStatus(resp)
	}

	var fix positionResponse
	if err := json.NewDecoder(resp.Body).Decode(&fix); err != nil {
		return geo.Coordinate{}, &location.Error{Kind: location.KindUnknown, Cause: fmt.Errorf("decode position: %w", err)}
	}
	return geo.Coordinate{Lat: fix.Lat, Lon: fix.Lon}, nil
}

func accuracyParam(high bool) string {
	if high {
		return "high"
	}
	return "coarse"
}

// classifyStatus maps bridge error responses onto the acquisition taxonomy.
// The bridge reports a machine-readable code in the body; the HTTP status is
// the fallback when the body is unusable.
func classifyStatus(resp *http.Response) *location.Error {
	body, _ := io.ReadAll(resp.Body)

	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil {
		switch e.Code {
		case "not_supported":
			return &location.Error{Kind: location.KindNotSupported}
		case "permission_denied":
			return &location.Error{Kind: location.KindPermissionDenied}
		case "position_unavailable":
			return &location.Error{Kind: location.KindPositionUnavailable}
		case "timeout":
			return &location.Error{Kind: location.KindTimeout}
		}
	}

	kind := location.KindUnknown
	switch resp.StatusCode {
	case http.StatusForbidden:
		kind = location.KindPermissionDenied
	case http.StatusNotImplemented, http.StatusNotFound:
		kind = location.KindNotSupported
	case http.StatusServiceUnavailable:
		kind = location.KindPositionUnavailable
	case http.StatusGatewayTimeout:
		kind = location.KindTimeout
	}
	return &location.Error{Kind: kind, Cause: fmt.Errorf("bridge status %d: %s", resp.StatusCode, body)}
}

// Bridge response types.

type positionResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type errorResponse struct {
	Code string `json:"code"`
}
