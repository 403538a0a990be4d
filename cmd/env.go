package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/wooxyyy/Instant-Wellnes-Kits/internal/engine"
	"github.com/wooxyyy/Instant-Wellnes-Kits/internal/geoindex"
	"github.com/wooxyyy/Instant-Wellnes-Kits/internal/rates"
	"github.com/wooxyyy/Instant-Wellnes-Kits/internal/store"
)

// taxEnv bundles the loaded reference data, the engine, and the order store
// for a command run.
type taxEnv struct {
	Engine *engine.Engine
	Store  store.Store
}

// Close releases the environment's resources.
func (e *taxEnv) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Error("close store", zap.Error(err))
		}
	}
}

// initEnv loads reference data, builds the engine, and opens the order
// store. Any load failure is startup-fatal.
func initEnv(ctx context.Context) (*taxEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	counties, err := loadCounties()
	if err != nil {
		return nil, err
	}

	cities, err := geoindex.LoadCities(cfg.Data.CitiesPath)
	if err != nil {
		return nil, err
	}
	zap.L().Info("loaded reference geometry",
		zap.Int("counties", len(counties)),
		zap.Int("cities", len(cities)),
	)

	table, err := loadRates()
	if err != nil {
		return nil, err
	}

	eng := engine.New(geoindex.New(counties, cities), table,
		engine.WithBatchConcurrency(cfg.Batch.Concurrency))

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	return &taxEnv{Engine: eng, Store: st}, nil
}

// loadCounties prefers the TIGER shapefile when configured, since it carries
// GEOID region codes; otherwise the GeoJSON boundary file.
func loadCounties() ([]geoindex.County, error) {
	if cfg.Data.CountiesShpPath != "" {
		return geoindex.LoadCountiesShapefile(cfg.Data.CountiesShpPath)
	}
	return geoindex.LoadCountiesGeoJSON(cfg.Data.CountiesPath)
}

// loadRates dispatches on the rate table file extension.
func loadRates() (*rates.Table, error) {
	if strings.EqualFold(filepath.Ext(cfg.Data.RatesPath), ".csv") {
		return rates.LoadCSV(cfg.Data.RatesPath)
	}
	return rates.LoadJSON(cfg.Data.RatesPath)
}

// initStore opens the configured persistence backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.Pool)
	default:
		return store.NewSQLite(cfg.Store.SQLitePath)
	}
}
