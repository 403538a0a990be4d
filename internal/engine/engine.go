// Package engine orchestrates jurisdiction resolution, rate lookup, and
// fixed-point tax computation for point-of-sale orders.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/wooxyyy/Instant-Wellnes-Kits/internal/fixedpoint"
	"github.com/wooxyyy/Instant-Wellnes-Kits/internal/geoindex"
	"github.com/wooxyyy/Instant-Wellnes-Kits/internal/model"
	"github.com/wooxyyy/Instant-Wellnes-Kits/internal/rates"
)

// StateRateMicros is the statewide 4% rate in micros. It is always the
// state_rate component of a resolved breakdown.
const StateRateMicros = 40_000

const defaultBatchConcurrency = 8

// Option configures an Engine.
type Option func(*Engine)

// WithBatchConcurrency bounds how many orders a batch computes in parallel.
func WithBatchConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batchConcurrency = n
		}
	}
}

// WithClock overrides the default-timestamp clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine computes tax results against immutable reference data. All methods
// are safe for concurrent use; nothing is mutated after construction.
type Engine struct {
	geo              *geoindex.Index
	table            *rates.Table
	batchConcurrency int
	now              func() time.Time
}

// New builds an Engine over the loaded geometry index and rate table.
func New(geo *geoindex.Index, table *rates.Table, opts ...Option) *Engine {
	e := &Engine{
		geo:              geo,
		table:            table,
		batchConcurrency: defaultBatchConcurrency,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Process resolves the order's coordinate to jurisdictions, looks up the
// applicable rate, and computes the tax result. An order outside the coverage
// area yields an unresolvable result with nil monetary fields, never an
// error.
func (e *Engine) Process(order model.Order) (model.TaxResult, error) {
	jurisdiction, ok := e.geo.Resolve(order.Latitude, order.Longitude)
	if !ok {
		return e.Compute(order, jurisdiction, nil)
	}
	row, ok := e.table.Resolve(jurisdiction.County, jurisdiction.City)
	if !ok {
		return e.Compute(order, jurisdiction, nil)
	}
	return e.Compute(order, jurisdiction, row)
}

// Compute produces the tax result for one order given its resolved
// jurisdiction and rate row. A nil row is the defined "unresolvable" state:
// null amounts, zeroed breakdown, whatever jurisdiction fields were resolved.
func (e *Engine) Compute(order model.Order, jurisdiction model.Jurisdiction, row *rates.Row) (model.TaxResult, error) {
	timestamp := strings.TrimSpace(order.Timestamp)
	if timestamp == "" {
		timestamp = e.now().UTC().Format(time.RFC3339)
	}

	result := model.TaxResult{
		OrderID:       order.ID,
		Timestamp:     timestamp,
		Jurisdictions: jurisdiction,
		Breakdown:     model.Breakdown{SpecialRates: []model.SpecialRate{}},
	}
	if row == nil {
		return result, nil
	}

	subtotalCents, err := fixedpoint.CentsFromFloat(order.Subtotal)
	if err != nil {
		return model.TaxResult{}, eris.Wrapf(err, "engine: order %s subtotal", order.ID)
	}
	rateMicros, err := fixedpoint.Micros(row.RateDecimal)
	if err != nil {
		return model.TaxResult{}, eris.Wrapf(err, "engine: rate for %s", row.Locality)
	}

	taxCents, err := fixedpoint.MulDiv(subtotalCents, rateMicros, fixedpoint.MicrosPerUnit)
	if err != nil {
		return model.TaxResult{}, eris.Wrapf(err, "engine: order %s tax", order.ID)
	}
	totalCents := subtotalCents + taxCents

	composite := fixedpoint.ToFloat(rateMicros, fixedpoint.MicrosScale)
	tax := fixedpoint.ToFloat(taxCents, fixedpoint.CentsScale)
	total := fixedpoint.ToFloat(totalCents, fixedpoint.CentsScale)
	result.CompositeTaxRate = &composite
	result.TaxAmount = &tax
	result.TotalAmount = &total

	result.Breakdown = e.breakdown(jurisdiction.County, row, rateMicros)

	result.Jurisdictions.ReportingCode = row.ReportingCode
	if result.Jurisdictions.ReportingCode == "" {
		result.Jurisdictions.ReportingCode = jurisdiction.RegionCode
	}

	return result, nil
}

// breakdown splits the composite rate into state, county, and city layers.
//
// The state layer is always the fixed statewide rate. The city layer can
// only be derived when the county's outside-cities rate gives a reference
// point and the published numbers are consistent with it (outside >= state,
// composite >= outside); a composite city rate subsumes its county's rate,
// so without that reference the whole remainder is attributed to the county.
// This condition is a documented policy of the published dataset and is
// preserved exactly.
func (e *Engine) breakdown(county string, row *rates.Row, compositeMicros int64) model.Breakdown {
	stateMicros := int64(StateRateMicros)
	countyMicros := compositeMicros - stateMicros
	var cityMicros int64

	if row.Kind == rates.KindCity {
		if outside, ok := e.table.OutsideRate(county); ok {
			if outsideMicros, err := fixedpoint.Micros(outside.RateDecimal); err == nil &&
				outsideMicros >= stateMicros && compositeMicros >= outsideMicros {
				countyMicros = outsideMicros - stateMicros
				cityMicros = compositeMicros - outsideMicros
			}
		}
	}

	return model.Breakdown{
		StateRate:    fixedpoint.ToFloat(stateMicros, fixedpoint.MicrosScale),
		CountyRate:   fixedpoint.ToFloat(countyMicros, fixedpoint.MicrosScale),
		CityRate:     fixedpoint.ToFloat(cityMicros, fixedpoint.MicrosScale),
		SpecialRates: []model.SpecialRate{},
	}
}

// ProcessBatch computes results for a batch of orders concurrently. Results
// come back in input order, one per order. Orders are independent; the first
// genuine computation error cancels the batch.
func (e *Engine) ProcessBatch(ctx context.Context, orders []model.Order) ([]model.TaxResult, error) {
	results := make([]model.TaxResult, len(orders))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.batchConcurrency)
	for i, order := range orders {
		i, order := i, order
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.Process(order)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
