package ingest

import (
	"encoding/json"
	"io"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/wooxyyy/Instant-Wellnes-Kits/internal/model"
)

// exportRow flattens a tax result for CSV export. Nil amounts render as
// empty cells for unresolvable orders.
type exportRow struct {
	OrderID          string   `csv:"order_id"`
	Timestamp        string   `csv:"timestamp"`
	State            string   `csv:"state"`
	County           string   `csv:"county"`
	City             string   `csv:"city"`
	ReportingCode    string   `csv:"reporting_code"`
	CompositeTaxRate *float64 `csv:"composite_tax_rate"`
	TaxAmount        *float64 `csv:"tax_amount"`
	TotalAmount      *float64 `csv:"total_amount"`
}

// WriteResultsJSON writes results as indented JSON.
func WriteResultsJSON(w io.Writer, results []model.TaxResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(results), "ingest: encode results json")
}

// WriteResultsCSV writes results as a flat CSV.
func WriteResultsCSV(w io.Writer, results []model.TaxResult) error {
	rows := make([]exportRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, exportRow{
			OrderID:          r.OrderID,
			Timestamp:        r.Timestamp,
			State:            r.Jurisdictions.State,
			County:           r.Jurisdictions.County,
			City:             r.Jurisdictions.City,
			ReportingCode:    r.Jurisdictions.ReportingCode,
			CompositeTaxRate: r.CompositeTaxRate,
			TaxAmount:        r.TaxAmount,
			TotalAmount:      r.TotalAmount,
		})
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "ingest: encode results csv")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "ingest: write results csv")
	}
	return nil
}
