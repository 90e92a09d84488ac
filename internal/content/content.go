// Package content defines the collaborator interface to the trail content
// layer. The content layer owns which regions have published trails and what
// those trails are; this core only queries it.
package content

import (
	"context"
	"errors"

	"github.com/dulegil/region-service/internal/region"
)

// ErrUnavailable marks a transport-level gateway failure (network error,
// timeout, bad upstream response). Callers must distinguish it from "no
// content": the first means "try again", the second means "pick manually".
var ErrUnavailable = errors.New("content gateway unavailable")

// Trail describes one published trail. The fields are owned by the content
// layer and passed through opaquely.
type Trail struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Difficulty string  `json:"difficulty"`
	DistanceKm float64 `json:"distance_km"`
	DurationMin int    `json:"duration_min"`
}

// Availability is one consistent snapshot of which regions have published
// content: the provinces with at least one trail and, per province, the
// cities with at least one trail.
type Availability struct {
	Provinces map[region.Code]bool
	Cities    map[region.Code]map[region.Code]bool // province → city set
}

// HasProvince reports whether the province has any published content.
func (a Availability) HasProvince(p region.Code) bool {
	return a.Provinces[p]
}

// HasCity reports whether the city has published content within the province.
func (a Availability) HasCity(p, c region.Code) bool {
	return a.Cities[p][c]
}

// CitiesIn returns the content-bearing city codes of one province.
func (a Availability) CitiesIn(p region.Code) []region.Code {
	cities := make([]region.Code, 0, len(a.Cities[p]))
	for c := range a.Cities[p] {
		cities = append(cities, c)
	}
	return cities
}

// Gateway is the availability/content collaborator, implemented by the
// persistence layer. All methods may fail with an error wrapping
// ErrUnavailable on transport problems.
type Gateway interface {
	// Availability returns the full two-level availability snapshot in one
	// call, so province-level and city-level decisions made together observe
	// the same logical state.
	Availability(ctx context.Context) (Availability, error)

	// TrailsFor returns the published trails of one city.
	TrailsFor(ctx context.Context, province, city region.Code) ([]Trail, error)
}
