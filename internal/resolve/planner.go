// Package resolve implements the fallback cascade that turns a raw GPS fix
// into a browsable region: exact city match first, then same-province
// alternatives, then fully manual browsing.
package resolve

import (
	"context"
	"log/slog"

	"github.com/dulegil/region-service/internal/content"
	"github.com/dulegil/region-service/internal/geo"
	"github.com/dulegil/region-service/internal/observability"
	"github.com/dulegil/region-service/internal/region"
)

// Kind tags a planner outcome. The values double as metric labels.
type Kind string

const (
	// KindResolved means the nearest city has published content.
	KindResolved Kind = "resolved"
	// KindRelaxedToProvince means the nearest city has no content but its
	// province has content elsewhere.
	KindRelaxedToProvince Kind = "relaxed_to_province"
	// KindNoContentNearby means neither the nearest city nor its province
	// has any content.
	KindNoContentNearby Kind = "no_content_nearby"
	// KindOutOfTerritory means the fix falls outside the supported bounds.
	KindOutOfTerritory Kind = "out_of_territory"
	// KindGatewayUnavailable means the content gateway failed; retry may
	// succeed, unlike NoContentNearby.
	KindGatewayUnavailable Kind = "gateway_unavailable"
)

// Outcome carries everything the caller needs to act without re-querying.
type Outcome struct {
	Kind Kind

	// Region is the nearest resolved region. Set for Resolved and
	// RelaxedToProvince; set for NoContentNearby when a nearest region
	// exists; nil otherwise.
	Region *region.Info

	// Trails is the pre-fetched content list. Resolved only.
	Trails []content.Trail

	// Cities lists the content-bearing cities of the nearest province in
	// catalog order. RelaxedToProvince only.
	Cities []region.Code

	// Err is the underlying gateway error. GatewayUnavailable only.
	Err error
}

// Planner runs the resolution cascade against the catalog and the content
// gateway. Gateway calls are sequenced strictly: each step's outcome decides
// whether the next is needed, and both availability levels come from one
// snapshot so the decision never mixes two views of the content layer.
type Planner struct {
	bounds  geo.Bounds
	gateway content.Gateway
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Planner. bounds is the supported territory envelope.
func New(bounds geo.Bounds, gateway content.Gateway, logger *slog.Logger, metrics *observability.Metrics) *Planner {
	return &Planner{
		bounds:  bounds,
		gateway: gateway,
		logger:  logger,
		metrics: metrics,
	}
}

// Resolve runs the cascade for one coordinate. It never returns an error;
// every failure mode is a tagged outcome.
func (p *Planner) Resolve(ctx context.Context, loc geo.Coordinate) Outcome {
	out := p.resolve(ctx, loc)
	p.metrics.ResolutionOutcomes.WithLabelValues(string(out.Kind)).Inc()
	return out
}

func (p *Planner) resolve(ctx context.Context, loc geo.Coordinate) Outcome {
	if !p.bounds.Contains(loc) {
		p.logger.Info("location outside supported territory", "lat", loc.Lat, "lon", loc.Lon)
		return Outcome{Kind: KindOutOfTerritory}
	}

	nearest, ok := region.Nearest(loc)
	if !ok {
		// Empty catalog. Not a runtime condition, but manual browsing still works.
		p.logger.Warn("region catalog is empty")
		return Outcome{Kind: KindNoContentNearby}
	}

	avail, err := p.gateway.Availability(ctx)
	if err != nil {
		p.logger.Warn("availability fetch failed", "error", err)
		return Outcome{Kind: KindGatewayUnavailable, Err: err}
	}

	if !avail.HasProvince(nearest.Province) {
		p.logger.Debug("nearest province has no content",
			"province", nearest.Province, "city", nearest.City)
		return Outcome{Kind: KindNoContentNearby, Region: &nearest}
	}

	if !avail.HasCity(nearest.Province, nearest.City) {
		return Outcome{
			Kind:   KindRelaxedToProvince,
			Region: &nearest,
			Cities: citiesInCatalogOrder(avail, nearest.Province),
		}
	}

	trails, err := p.gateway.TrailsFor(ctx, nearest.Province, nearest.City)
	if err != nil {
		p.logger.Warn("trail fetch failed",
			"province", nearest.Province, "city", nearest.City, "error", err)
		return Outcome{Kind: KindGatewayUnavailable, Err: err}
	}

	p.logger.Debug("location resolved",
		"province", nearest.Province, "city", nearest.City, "trails", len(trails))
	return Outcome{Kind: KindResolved, Region: &nearest, Trails: trails}
}

// citiesInCatalogOrder filters the province's catalog entries down to the
// content-bearing ones, preserving catalog order so the UI listing is stable.
func citiesInCatalogOrder(avail content.Availability, province region.Code) []region.Code {
	var cities []region.Code
	for _, e := range region.ForProvince(province) {
		if avail.HasCity(province, e.City) {
			cities = append(cities, e.City)
		}
	}
	return cities
}
