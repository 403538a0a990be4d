package ingest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wooxyyy/Instant-Wellnes-Kits/internal/model"
)

func TestReadOrders(t *testing.T) {
	t.Parallel()

	csv := strings.Join([]string{
		"id,longitude,latitude,timestamp,subtotal",
		"o1,-73.7562,42.6526,2025-03-05 10:00:00.000000000,19.99",
		"o2,-78.8784,42.8864,,100.0",
		",-73.0,42.0,,5.0",          // missing id: rejected
		"o4,not-a-number,42.0,,5.0", // bad longitude: rejected
		"o5,-73.9,40.7,,12.5",
	}, "\n")

	path := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	orders, rowErrs, err := ReadOrders(path)
	require.NoError(t, err)

	require.Len(t, orders, 3)
	assert.Equal(t, []string{"o1", "o2", "o5"}, []string{orders[0].ID, orders[1].ID, orders[2].ID})
	assert.Equal(t, 19.99, orders[0].Subtotal)
	assert.Equal(t, "2025-03-05 10:00:00.000000000", orders[0].Timestamp)

	require.Len(t, rowErrs, 2)
	assert.Equal(t, 3, rowErrs[0].Record)
	assert.Equal(t, 4, rowErrs[1].Record)
}

func TestReadOrdersMissingFile(t *testing.T) {
	t.Parallel()

	_, _, err := ReadOrders(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestAppendJournal(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "input.csv")
	orders := []model.Order{
		{ID: "o1", Longitude: -73.7562, Latitude: 42.6526, Timestamp: "ts1", Subtotal: 19.99},
		{ID: "o2", Longitude: -78.0, Latitude: 42.0, Timestamp: "ts2", Subtotal: 100},
	}

	require.NoError(t, AppendJournal(path, orders))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,longitude,latitude,timestamp,subtotal", lines[0])
	assert.Equal(t, "o1,-73.7562,42.6526,ts1,19.99", lines[1])
	// Integral values carry one decimal place.
	assert.Equal(t, "o2,-78.0,42.0,ts2,100.0", lines[2])

	// A second append must not repeat the header.
	require.NoError(t, AppendJournal(path, orders[:1]))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, len(strings.Split(strings.TrimSpace(string(data)), "\n")))
}

func TestAppendJournalEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, AppendJournal(path, nil))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no journal file for an empty batch")
}

func TestJournalTimestamp(t *testing.T) {
	t.Parallel()

	ts := JournalTimestamp(time.Date(2025, 3, 5, 10, 2, 3, 456_000_000, time.UTC))
	assert.Equal(t, "2025-03-05 10:02:03.456000000", ts)
}

func TestWriteResultsJSON(t *testing.T) {
	t.Parallel()

	rate := 0.08
	var buf bytes.Buffer
	err := WriteResultsJSON(&buf, []model.TaxResult{{
		OrderID:          "o1",
		Timestamp:        "ts",
		CompositeTaxRate: &rate,
		Breakdown:        model.Breakdown{SpecialRates: []model.SpecialRate{}},
		Jurisdictions:    model.Jurisdiction{State: "New York", County: "ALBANY"},
	}})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"composite_tax_rate": 0.08`)
	assert.Contains(t, out, `"special_rates": []`)
	assert.Contains(t, out, `"county": "ALBANY"`)
}

func TestWriteResultsCSV(t *testing.T) {
	t.Parallel()

	rate, tax, total := 0.08, 8.0, 108.0
	results := []model.TaxResult{
		{
			OrderID:          "o1",
			Timestamp:        "ts",
			CompositeTaxRate: &rate,
			TaxAmount:        &tax,
			TotalAmount:      &total,
			Jurisdictions:    model.Jurisdiction{State: "New York", County: "ALBANY", City: "Albany", ReportingCode: "0181"},
		},
		{OrderID: "o2", Timestamp: "ts", Jurisdictions: model.Jurisdiction{State: "New York"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteResultsCSV(&buf, results))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "order_id,timestamp,state,county,city,reporting_code,composite_tax_rate,tax_amount,total_amount", lines[0])
	assert.Equal(t, "o1,ts,New York,ALBANY,Albany,0181,0.08,8,108", lines[1])
	// Unresolvable order: empty numeric cells.
	assert.Equal(t, "o2,ts,New York,,,,,,", lines[2])
}
