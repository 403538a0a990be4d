package rates

import (
	"encoding/json"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// jsonRow mirrors the generated pub718 JSON. The decimal rate is decoded as
// json.Number so its literal digits survive into the fixed-point kernel.
type jsonRow struct {
	Locality      string      `json:"locality"`
	Base          string      `json:"base"`
	Kind          string      `json:"kind"`
	ParentCounty  *string     `json:"parent_county"`
	RatePercent   float64     `json:"tax_rate_percent"`
	RateDecimal   json.Number `json:"tax_rate_decimal"`
	ReportingCode string      `json:"reporting_code"`
}

type ratesFile struct {
	SourcePDF     string    `json:"source_pdf"`
	EffectiveDate string    `json:"effective_date"`
	Rows          []jsonRow `json:"rows"`
}

// LoadJSON reads the generated pub718 rate table JSON and builds the indexed
// table. A malformed or incomplete table is a startup-fatal error.
func LoadJSON(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rates: read %s", path)
	}

	var f ratesFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "rates: parse %s", path)
	}

	rows := make([]Row, 0, len(f.Rows))
	for _, r := range f.Rows {
		parent := ""
		if r.ParentCounty != nil {
			parent = *r.ParentCounty
		}
		rows = append(rows, Row{
			Locality:      r.Locality,
			Base:          r.Base,
			Kind:          Kind(r.Kind),
			ParentCounty:  parent,
			RatePercent:   r.RatePercent,
			RateDecimal:   r.RateDecimal.String(),
			ReportingCode: r.ReportingCode,
		})
	}

	t, err := NewTable(rows)
	if err != nil {
		return nil, err
	}
	zap.L().Info("rates: loaded table",
		zap.String("path", path),
		zap.String("effective_date", f.EffectiveDate),
		zap.Int("rows", t.Len()),
	)
	return t, nil
}

// csvRow mirrors the generated pub718 CSV columns.
type csvRow struct {
	Locality      string  `csv:"locality"`
	Base          string  `csv:"base"`
	Kind          string  `csv:"kind"`
	ParentCounty  string  `csv:"parent_county"`
	RatePercent   float64 `csv:"tax_rate_percent"`
	RateDecimal   string  `csv:"tax_rate_decimal"`
	ReportingCode string  `csv:"reporting_code"`
}

// LoadCSV reads the generated pub718 rate table CSV and builds the indexed
// table.
func LoadCSV(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rates: read %s", path)
	}

	var records []csvRow
	if err := csvutil.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "rates: parse %s", path)
	}

	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{
			Locality:      r.Locality,
			Base:          r.Base,
			Kind:          Kind(r.Kind),
			ParentCounty:  r.ParentCounty,
			RatePercent:   r.RatePercent,
			RateDecimal:   r.RateDecimal,
			ReportingCode: r.ReportingCode,
		})
	}

	t, err := NewTable(rows)
	if err != nil {
		return nil, err
	}
	zap.L().Info("rates: loaded table", zap.String("path", path), zap.Int("rows", t.Len()))
	return t, nil
}
