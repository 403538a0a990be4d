package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wooxyyy/Instant-Wellnes-Kits/internal/config"
	"github.com/wooxyyy/Instant-Wellnes-Kits/internal/model"
)

const testCounties = `{
  "type": "FeatureCollection",
  "features": [{
    "type": "Feature",
    "properties": {"name": "Albany", "geoid": "36001"},
    "geometry": {"type": "Polygon", "coordinates": [[[-74,42],[-73,42],[-73,43],[-74,43],[-74,42]]]}
  }]
}`

const testCities = `[{"city":"Albany","county":"Albany","latitude":42.6526,"longitude":-73.7562}]`

const testRates = `{
  "source_pdf": "pub718.pdf",
  "effective_date": "2025-03-01",
  "rows": [
    {"locality":"New York State only","base":"New York State","kind":"state_only","parent_county":null,"tax_rate_percent":4.0,"tax_rate_decimal":0.04,"reporting_code":"0021"},
    {"locality":"Albany County","base":"Albany","kind":"county","parent_county":null,"tax_rate_percent":8.0,"tax_rate_decimal":0.08,"reporting_code":"0181"}
  ]
}`

func writeTestData(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	return &config.Config{
		Store: config.StoreConfig{Driver: "sqlite", SQLitePath: filepath.Join(dir, "orders.db")},
		Data: config.DataConfig{
			CountiesPath: write("counties.geojson", testCounties),
			CitiesPath:   write("cities.json", testCities),
			RatesPath:    write("rates.json", testRates),
		},
		Batch: config.BatchConfig{Concurrency: 2},
	}
}

func TestInitEnv(t *testing.T) {
	cfg = writeTestData(t)

	env, err := initEnv(context.Background())
	require.NoError(t, err)
	defer env.Close()

	result, err := env.Engine.Process(model.Order{ID: "o1", Latitude: 42.65, Longitude: -73.75, Subtotal: 100})
	require.NoError(t, err)
	assert.Equal(t, "ALBANY", result.Jurisdictions.County)
	require.NotNil(t, result.TaxAmount)
	assert.Equal(t, 8.0, *result.TaxAmount)
}

func TestInitEnvMissingData(t *testing.T) {
	cfg = writeTestData(t)
	cfg.Data.RatesPath = filepath.Join(t.TempDir(), "missing.json")

	_, err := initEnv(context.Background())
	assert.Error(t, err)
}

func TestLoadRatesDispatch(t *testing.T) {
	cfg = writeTestData(t)

	table, err := loadRates()
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
}
