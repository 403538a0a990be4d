// Package rates holds the published jurisdiction tax rate table and the
// hierarchical lookup over it.
package rates

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// Kind classifies a published rate row.
type Kind string

const (
	KindNYC           Kind = "nyc"            // consolidated New York City rate
	KindCity          Kind = "city"           // incorporated city inside a county
	KindCountyOutside Kind = "county_outside" // county rate outside any incorporated city
	KindCounty        Kind = "county"         // plain county rate
	KindStateOnly     Kind = "state_only"     // statewide floor, always present
)

// Row is one published rate table entry. RateDecimal stays a decimal string
// so it reaches the fixed-point kernel as an exact literal.
type Row struct {
	Locality      string
	Base          string
	Kind          Kind
	ParentCounty  string
	RatePercent   float64
	RateDecimal   string
	ReportingCode string
}

// nycCounties is the consolidated set: these five boroughs share the single
// "nyc" rate row in place of separate county and city rows.
var nycCounties = map[string]bool{
	"BRONX":    true,
	"KINGS":    true,
	"NEW YORK": true,
	"QUEENS":   true,
	"RICHMOND": true,
}

// IsConsolidated reports whether the county belongs to the consolidated
// New York City set.
func IsConsolidated(county string) bool {
	return nycCounties[NormalizeName(county)]
}

var (
	cityParenRe  = regexp.MustCompile(`\s*\(CITY\)\s*`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// NormalizeName uppercases a locality name, strips "(CITY)" parentheticals,
// and collapses whitespace, matching how the published table spells names.
func NormalizeName(s string) string {
	s = strings.ToUpper(s)
	s = cityParenRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Table is the immutable, indexed rate table. Lookup maps are built once at
// load; concurrent Resolve calls need no locking.
type Table struct {
	rows        []Row
	nycRow      *Row
	stateRow    *Row
	cityRows    map[string]*Row // normalized parent + "|" + normalized base
	outsideRows map[string]*Row // normalized base
	countyRows  map[string]*Row // normalized base
}

// NewTable indexes the loaded rows. Duplicate (kind, parent, base) keys keep
// the first row encountered; that tie-break is defined behavior, not an
// error. A table without the mandatory state_only row is rejected, since the
// resolver's ultimate fallback would be missing.
func NewTable(rows []Row) (*Table, error) {
	t := &Table{
		rows:        rows,
		cityRows:    make(map[string]*Row),
		outsideRows: make(map[string]*Row),
		countyRows:  make(map[string]*Row),
	}

	for i := range t.rows {
		row := &t.rows[i]
		switch row.Kind {
		case KindNYC:
			if t.nycRow == nil {
				t.nycRow = row
			}
		case KindStateOnly:
			if t.stateRow == nil {
				t.stateRow = row
			}
		case KindCity:
			key := NormalizeName(row.ParentCounty) + "|" + NormalizeName(row.Base)
			if _, ok := t.cityRows[key]; !ok {
				t.cityRows[key] = row
			}
		case KindCountyOutside:
			key := NormalizeName(row.Base)
			if _, ok := t.outsideRows[key]; !ok {
				t.outsideRows[key] = row
			}
		case KindCounty:
			key := NormalizeName(row.Base)
			if _, ok := t.countyRows[key]; !ok {
				t.countyRows[key] = row
			}
		default:
			return nil, eris.Errorf("rates: unknown rate kind %q for locality %q", row.Kind, row.Locality)
		}
	}

	if t.stateRow == nil {
		return nil, eris.New("rates: mandatory state_only row is missing")
	}
	return t, nil
}

// Resolve walks the rate hierarchy for the resolved jurisdiction names and
// returns the first matching row: consolidated NYC, then city, then
// county-outside, then county, then the statewide floor. ok is false only if
// no step matched, which a complete dataset makes impossible.
func (t *Table) Resolve(county, city string) (*Row, bool) {
	nCounty := NormalizeName(county)
	nCity := NormalizeName(city)

	if nycCounties[nCounty] && t.nycRow != nil {
		return t.nycRow, true
	}
	if nCity != "" {
		if row, ok := t.cityRows[nCounty+"|"+nCity]; ok {
			return row, true
		}
	}
	if row, ok := t.outsideRows[nCounty]; ok {
		return row, true
	}
	if row, ok := t.countyRows[nCounty]; ok {
		return row, true
	}
	if t.stateRow != nil {
		return t.stateRow, true
	}
	return nil, false
}

// OutsideRate returns the county's outside-incorporated-cities rate row, the
// reference point for splitting a composite city rate into county and city
// components.
func (t *Table) OutsideRate(county string) (*Row, bool) {
	row, ok := t.outsideRows[NormalizeName(county)]
	return row, ok
}

// Len reports the number of loaded rows.
func (t *Table) Len() int {
	return len(t.rows)
}
