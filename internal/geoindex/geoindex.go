// Package geoindex resolves coordinates to New York tax jurisdictions using
// immutable in-memory county boundary geometry and city point locations.
package geoindex

import (
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"github.com/wooxyyy/Instant-Wellnes-Kits/internal/model"
)

// StateName is fixed for the whole dataset: every boundary polygon is a New
// York county.
const StateName = "New York"

// County is a named jurisdiction boundary. Geom holds the boundary in
// (longitude, latitude) order as a Polygon or MultiPolygon.
type County struct {
	Name       string
	RegionCode string // TIGER GEOID when loaded from a shapefile
	Geom       geom.T
}

// City is a named point location inside a county.
type City struct {
	Name      string
	County    string
	Latitude  float64
	Longitude float64
}

// Index is the process-wide geometry index. It is built once at startup and
// never mutated, so any number of Resolve calls may run concurrently.
type Index struct {
	counties []County
	cities   map[string][]City // keyed by normalized county name, load order preserved
}

// New builds an Index from loaded counties and cities.
func New(counties []County, cities []City) *Index {
	byCounty := make(map[string][]City)
	for _, c := range cities {
		key := normalize(c.County)
		byCounty[key] = append(byCounty[key], c)
	}
	return &Index{counties: counties, cities: byCounty}
}

// Resolve finds the county polygon containing the coordinate and the nearest
// city within that county. ok is false when no polygon contains the point;
// the returned jurisdiction then carries only the state. A county with no
// known cities leaves City empty, which is not an error.
func (ix *Index) Resolve(lat, lon float64) (model.Jurisdiction, bool) {
	pt := geom.Coord{lon, lat}

	var matched *County
	for i := range ix.counties {
		if contains(ix.counties[i].Geom, pt) {
			matched = &ix.counties[i]
			break
		}
	}
	if matched == nil {
		return model.Jurisdiction{State: StateName}, false
	}

	j := model.Jurisdiction{
		State:      StateName,
		County:     strings.ToUpper(matched.Name),
		RegionCode: matched.RegionCode,
	}

	var nearest *City
	minKM := 0.0
	for i, c := range ix.cities[normalize(matched.Name)] {
		d := haversineKM(lat, lon, c.Latitude, c.Longitude)
		if nearest == nil || d < minKM {
			nearest = &ix.cities[normalize(matched.Name)][i]
			minKM = d
		}
	}
	if nearest != nil {
		j.City = nearest.Name
	}

	return j, true
}

// contains reports whether the polygon or multipolygon contains the point.
// A point inside an interior ring (hole) is outside the polygon.
func contains(g geom.T, pt geom.Coord) bool {
	switch p := g.(type) {
	case *geom.Polygon:
		return polygonContains(p, pt)
	case *geom.MultiPolygon:
		for i := 0; i < p.NumPolygons(); i++ {
			if polygonContains(p.Polygon(i), pt) {
				return true
			}
		}
	}
	return false
}

func polygonContains(p *geom.Polygon, pt geom.Coord) bool {
	if p.NumLinearRings() == 0 {
		return false
	}
	if !xy.IsPointInRing(p.Layout(), pt, p.LinearRing(0).FlatCoords()) {
		return false
	}
	for i := 1; i < p.NumLinearRings(); i++ {
		if xy.IsPointInRing(p.Layout(), pt, p.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}

// normalize uppercases and collapses internal whitespace so county names
// from the boundary and city datasets compare equal.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}
