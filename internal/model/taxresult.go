package model

// Jurisdiction is the set of taxing jurisdictions resolved for a coordinate.
// County and City are empty when no boundary polygon contained the point or
// the county has no incorporated cities. RegionCode carries the county's
// TIGER GEOID when boundaries were loaded from a shapefile; it backs the
// reporting-code fallback and is not serialized itself.
type Jurisdiction struct {
	State         string `json:"state"`
	County        string `json:"county,omitempty"`
	City          string `json:"city,omitempty"`
	ReportingCode string `json:"reporting_code,omitempty"`
	RegionCode    string `json:"-"`
}

// SpecialRate is a placeholder for special taxing district rates. The
// breakdown always carries an empty list in this version.
type SpecialRate struct {
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

// Breakdown splits a composite rate into its jurisdiction layers. The rates
// always sum to the composite rate (exact in integer micros).
type Breakdown struct {
	StateRate    float64       `json:"state_rate"`
	CountyRate   float64       `json:"county_rate"`
	CityRate     float64       `json:"city_rate"`
	SpecialRates []SpecialRate `json:"special_rates"`
}

// TaxResult is the outcome of computing tax for one order. The monetary
// fields are nil when the order's coordinate resolved to no jurisdiction or
// no rate row: that is a representable output, not an error.
type TaxResult struct {
	OrderID          string       `json:"order_id,omitempty"`
	Timestamp        string       `json:"timestamp"`
	CompositeTaxRate *float64     `json:"composite_tax_rate"`
	TaxAmount        *float64     `json:"tax_amount"`
	TotalAmount      *float64     `json:"total_amount"`
	Breakdown        Breakdown    `json:"breakdown"`
	Jurisdictions    Jurisdiction `json:"jurisdictions"`
}

// Resolved reports whether a rate was found and amounts were computed.
func (r TaxResult) Resolved() bool {
	return r.CompositeTaxRate != nil
}
