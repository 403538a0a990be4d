package geoindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

// square builds a closed square ring polygon in (lon, lat) order.
func square(minLon, minLat, maxLon, maxLat float64) *geom.Polygon {
	return geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}})
}

func testIndex() *Index {
	counties := []County{
		{Name: "Alpha", RegionCode: "36001", Geom: square(0, 0, 10, 10)},
		{Name: "Beta", Geom: square(20, 20, 30, 30)},
		{Name: "Empty County", Geom: square(40, 40, 50, 50)},
	}
	cities := []City{
		{Name: "Near Town", County: "ALPHA", Latitude: 2, Longitude: 2},
		{Name: "Far Town", County: "alpha", Latitude: 9, Longitude: 9},
		{Name: "Beta City", County: "Beta", Latitude: 25, Longitude: 25},
	}
	return New(counties, cities)
}

func TestResolveCountyAndNearestCity(t *testing.T) {
	t.Parallel()
	ix := testIndex()

	j, ok := ix.Resolve(1, 1)
	require.True(t, ok)
	assert.Equal(t, StateName, j.State)
	assert.Equal(t, "ALPHA", j.County)
	assert.Equal(t, "Near Town", j.City)
	assert.Equal(t, "36001", j.RegionCode)

	j, ok = ix.Resolve(9.5, 9.5)
	require.True(t, ok)
	assert.Equal(t, "Far Town", j.City)
}

func TestResolveCityMatchIsCaseInsensitive(t *testing.T) {
	t.Parallel()
	ix := testIndex()

	// Cities registered under "ALPHA" and "alpha" both belong to county Alpha.
	j, ok := ix.Resolve(5, 5)
	require.True(t, ok)
	assert.NotEmpty(t, j.City)
}

func TestResolveCountyWithoutCities(t *testing.T) {
	t.Parallel()
	ix := testIndex()

	j, ok := ix.Resolve(45, 45)
	require.True(t, ok)
	assert.Equal(t, "EMPTY COUNTY", j.County)
	assert.Empty(t, j.City)
}

func TestResolveOutsideAllCounties(t *testing.T) {
	t.Parallel()
	ix := testIndex()

	j, ok := ix.Resolve(-60, -60)
	assert.False(t, ok)
	assert.Equal(t, StateName, j.State)
	assert.Empty(t, j.County)
	assert.Empty(t, j.City)
}

func TestResolveTieBreakFirstEncountered(t *testing.T) {
	t.Parallel()

	counties := []County{{Name: "Tie", Geom: square(0, 0, 10, 10)}}
	// Equidistant from (5,5) on opposite sides.
	cities := []City{
		{Name: "First", County: "Tie", Latitude: 5, Longitude: 3},
		{Name: "Second", County: "Tie", Latitude: 5, Longitude: 7},
	}
	ix := New(counties, cities)

	j, ok := ix.Resolve(5, 5)
	require.True(t, ok)
	assert.Equal(t, "First", j.City)
}

func TestContainsRespectsHoles(t *testing.T) {
	t.Parallel()

	donut := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}},
	})
	ix := New([]County{{Name: "Donut", Geom: donut}}, nil)

	_, ok := ix.Resolve(5, 5)
	assert.False(t, ok, "point inside the hole is outside the county")

	j, ok := ix.Resolve(2, 2)
	require.True(t, ok)
	assert.Equal(t, "DONUT", j.County)
}

func TestContainsMultiPolygon(t *testing.T) {
	t.Parallel()

	mp := geom.NewMultiPolygon(geom.XY)
	require.NoError(t, mp.Push(square(0, 0, 2, 2)))
	require.NoError(t, mp.Push(square(8, 8, 10, 10)))
	ix := New([]County{{Name: "Islands", Geom: mp}}, nil)

	_, ok := ix.Resolve(1, 1)
	assert.True(t, ok)
	_, ok = ix.Resolve(9, 9)
	assert.True(t, ok)
	_, ok = ix.Resolve(5, 5)
	assert.False(t, ok)
}

func TestHaversineKM(t *testing.T) {
	t.Parallel()

	// NYC to Albany is roughly 215km.
	d := haversineKM(40.7128, -74.0060, 42.6526, -73.7562)
	assert.InDelta(t, 215, d, 10)

	assert.Zero(t, haversineKM(42, -73, 42, -73))
}
