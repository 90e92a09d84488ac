package region

import "github.com/dulegil/region-service/internal/geo"

// Info is the result of a nearest-region search: the matched codes plus
// their display names. Derived on demand, never stored.
type Info struct {
	Province     Code   `json:"province"`
	City         Code   `json:"city"`
	ProvinceName string `json:"province_name"`
	CityName     string `json:"city_name"`
}

// Nearest returns the city whose centroid is closest to loc, with its parent
// province. ok is false only when the catalog is empty.
//
// This is a linear scan over all entries. At a few hundred cities the scan
// is microseconds; a spatial index would buy nothing but complexity, so the
// catalog is intentionally unindexed. When two centroids are equidistant to
// floating-point precision, which one wins is unspecified.
func Nearest(loc geo.Coordinate) (Info, bool) {
	return nearestOf(loc, allEntries)
}

// NearestInProvince restricts the search to one province's cities. ok is
// false for an unknown province code or a province with no cities.
func NearestInProvince(loc geo.Coordinate, province Code) (Code, bool) {
	info, ok := nearestOf(loc, entriesByProvince[province])
	return info.City, ok
}

func nearestOf(loc geo.Coordinate, entries []Entry) (Info, bool) {
	if len(entries) == 0 {
		return Info{}, false
	}

	best := entries[0]
	bestDist := geo.DistanceKm(loc, best.Centroid)
	for _, e := range entries[1:] {
		if d := geo.DistanceKm(loc, e.Centroid); d < bestDist {
			best = e
			bestDist = d
		}
	}

	return Info{
		Province:     best.Province,
		City:         best.City,
		ProvinceName: ProvinceName(best.Province),
		CityName:     CityName(best.City),
	}, true
}
