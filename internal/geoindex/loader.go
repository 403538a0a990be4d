package geoindex

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// LoadCountiesGeoJSON reads county boundaries from a GeoJSON
// FeatureCollection. Each feature needs a "name" property and a Polygon or
// MultiPolygon geometry; "geoid" is carried through as the region code when
// present.
func LoadCountiesGeoJSON(path string) ([]County, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geoindex: read counties %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "geoindex: parse counties %s", path)
	}

	var counties []County
	for _, f := range fc.Features {
		name, _ := f.Properties["name"].(string)
		if name == "" {
			continue
		}
		switch f.Geometry.(type) {
		case *geom.Polygon, *geom.MultiPolygon:
		default:
			zap.L().Debug("geoindex: skipping non-polygon feature", zap.String("name", name))
			continue
		}
		geoid, _ := f.Properties["geoid"].(string)
		counties = append(counties, County{Name: name, RegionCode: geoid, Geom: f.Geometry})
	}

	if len(counties) == 0 {
		return nil, eris.Errorf("geoindex: no county polygons in %s", path)
	}
	return counties, nil
}

// LoadCountiesShapefile reads county boundaries from a Census TIGER county
// shapefile. The NAME attribute becomes the county name and GEOID the region
// code.
func LoadCountiesShapefile(path string) ([]County, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geoindex: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	nameIdx := fieldIndex(reader, "NAME")
	geoidIdx := fieldIndex(reader, "GEOID")
	if nameIdx < 0 {
		return nil, eris.Errorf("geoindex: NAME field not found in %s", path)
	}

	var counties []County
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}

		name := strings.TrimSpace(strings.TrimRight(reader.Attribute(nameIdx), "\x00"))
		if name == "" {
			skipped++
			continue
		}
		var geoid string
		if geoidIdx >= 0 {
			geoid = strings.TrimSpace(strings.TrimRight(reader.Attribute(geoidIdx), "\x00"))
		}

		g := polygonToMultiPolygon(poly)
		if g == nil {
			skipped++
			continue
		}
		counties = append(counties, County{Name: name, RegionCode: geoid, Geom: g})
	}
	if skipped > 0 {
		zap.L().Debug("geoindex: skipped shapefile records", zap.Int("skipped", skipped))
	}

	if len(counties) == 0 {
		return nil, eris.Errorf("geoindex: no county polygons in %s", path)
	}
	return counties, nil
}

// cityRecord tolerates datasets that encode coordinates as strings.
type cityRecord struct {
	City      string      `json:"city"`
	County    string      `json:"county"`
	Latitude  json.Number `json:"latitude"`
	Longitude json.Number `json:"longitude"`
}

// LoadCities reads named city locations from a JSON array of
// {city, county, latitude, longitude} records.
func LoadCities(path string) ([]City, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geoindex: read cities %s", path)
	}

	var records []cityRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "geoindex: parse cities %s", path)
	}

	cities := make([]City, 0, len(records))
	for _, r := range records {
		if r.City == "" || r.County == "" {
			continue
		}
		lat, err := r.Latitude.Float64()
		if err != nil {
			return nil, eris.Wrapf(err, "geoindex: city %s latitude", r.City)
		}
		lon, err := r.Longitude.Float64()
		if err != nil {
			return nil, eris.Wrapf(err, "geoindex: city %s longitude", r.City)
		}
		cities = append(cities, City{Name: r.City, County: r.County, Latitude: lat, Longitude: lon})
	}
	return cities, nil
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
func polygonToMultiPolygon(p *shp.Polygon) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("geoindex: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("geoindex: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// fieldIndex finds the index of a named DBF field, case-insensitively.
func fieldIndex(r *shp.Reader, name string) int {
	for i, f := range r.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}
