package rates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRows() []Row {
	return []Row{
		{Locality: "New York State only", Base: "New York State only", Kind: KindStateOnly, RateDecimal: "0.04", ReportingCode: "0021"},
		{Locality: "New York City", Base: "New York City", Kind: KindNYC, RateDecimal: "0.08875", ReportingCode: "8081"},
		{Locality: "Cayuga – except", Base: "Cayuga", Kind: KindCountyOutside, RateDecimal: "0.08", ReportingCode: "0511"},
		{Locality: "Auburn (city)", Base: "Auburn (city)", Kind: KindCity, ParentCounty: "Cayuga", RateDecimal: "0.08", ReportingCode: "0561"},
		{Locality: "Albany", Base: "Albany", Kind: KindCounty, RateDecimal: "0.08", ReportingCode: "0181"},
		{Locality: "Oneida – except", Base: "Oneida", Kind: KindCountyOutside, RateDecimal: "0.08750", ReportingCode: "3010"},
		{Locality: "Rome (city)", Base: "Rome (city)", Kind: KindCity, ParentCounty: "Oneida", RateDecimal: "0.08750", ReportingCode: "3051"},
		{Locality: "Utica (city)", Base: "Utica (city)", Kind: KindCity, ParentCounty: "Oneida", RateDecimal: "0.08750", ReportingCode: "3061"},
	}
}

func newTestTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable(testRows())
	require.NoError(t, err)
	return table
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Auburn (city)", "AUBURN"},
		{"rome  (CITY)", "ROME"},
		{"  Saint   Lawrence  ", "SAINT LAWRENCE"},
		{"albany", "ALBANY"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), "NormalizeName(%q)", tt.in)
	}
}

func TestResolveConsolidatedPrecedence(t *testing.T) {
	t.Parallel()
	table := newTestTable(t)

	// All five boroughs resolve to the single nyc row, regardless of city.
	for _, county := range []string{"Bronx", "KINGS", "New York", "Queens", "richmond"} {
		row, ok := table.Resolve(county, "Some City")
		require.True(t, ok, county)
		assert.Equal(t, KindNYC, row.Kind, county)
		assert.Equal(t, "0.08875", row.RateDecimal)
	}
}

func TestResolveCityRow(t *testing.T) {
	t.Parallel()
	table := newTestTable(t)

	row, ok := table.Resolve("Cayuga", "Auburn")
	require.True(t, ok)
	assert.Equal(t, KindCity, row.Kind)
	assert.Equal(t, "0561", row.ReportingCode)

	// A city belonging to a different county must not match.
	row, ok = table.Resolve("Cayuga", "Rome")
	require.True(t, ok)
	assert.Equal(t, KindCountyOutside, row.Kind)
}

func TestResolveCountyOutsideBeforeCounty(t *testing.T) {
	t.Parallel()
	table := newTestTable(t)

	row, ok := table.Resolve("Oneida", "Elsewhere Village")
	require.True(t, ok)
	assert.Equal(t, KindCountyOutside, row.Kind)
	assert.Equal(t, "3010", row.ReportingCode)
}

func TestResolvePlainCounty(t *testing.T) {
	t.Parallel()
	table := newTestTable(t)

	row, ok := table.Resolve("Albany", "")
	require.True(t, ok)
	assert.Equal(t, KindCounty, row.Kind)
}

func TestResolveFallsBackToStateOnly(t *testing.T) {
	t.Parallel()
	table := newTestTable(t)

	row, ok := table.Resolve("Nowhere County", "Nowhere City")
	require.True(t, ok)
	assert.Equal(t, KindStateOnly, row.Kind)
	assert.Equal(t, "0.04", row.RateDecimal)
}

func TestDuplicateRowsFirstWins(t *testing.T) {
	t.Parallel()

	rows := testRows()
	rows = append(rows, Row{Locality: "Albany", Base: "Albany", Kind: KindCounty, RateDecimal: "0.99", ReportingCode: "dup"})
	table, err := NewTable(rows)
	require.NoError(t, err)

	row, ok := table.Resolve("Albany", "")
	require.True(t, ok)
	assert.Equal(t, "0181", row.ReportingCode)
}

func TestNewTableRequiresStateOnly(t *testing.T) {
	t.Parallel()

	rows := []Row{{Locality: "Albany", Base: "Albany", Kind: KindCounty, RateDecimal: "0.08"}}
	_, err := NewTable(rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state_only")
}

func TestNewTableRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	rows := []Row{{Locality: "X", Base: "X", Kind: Kind("district"), RateDecimal: "0.01"}}
	_, err := NewTable(rows)
	assert.Error(t, err)
}

func TestOutsideRate(t *testing.T) {
	t.Parallel()
	table := newTestTable(t)

	row, ok := table.OutsideRate("oneida")
	require.True(t, ok)
	assert.Equal(t, "0.08750", row.RateDecimal)

	_, ok = table.OutsideRate("Albany")
	assert.False(t, ok)
}

func TestIsConsolidated(t *testing.T) {
	t.Parallel()

	assert.True(t, IsConsolidated("kings"))
	assert.True(t, IsConsolidated("New  York"))
	assert.False(t, IsConsolidated("Albany"))
}
