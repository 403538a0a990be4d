// Package ingest reads order batches from CSV and maintains the input CSV
// journal that mirrors every accepted order.
package ingest

import (
	"bytes"
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/wooxyyy/Instant-Wellnes-Kits/internal/model"
)

const journalHeader = "id,longitude,latitude,timestamp,subtotal\n"

// csvOrder matches the input CSV header: id,longitude,latitude,timestamp,subtotal.
type csvOrder struct {
	ID        string  `csv:"id"`
	Longitude float64 `csv:"longitude"`
	Latitude  float64 `csv:"latitude"`
	Timestamp string  `csv:"timestamp"`
	Subtotal  float64 `csv:"subtotal"`
}

// RowError records a rejected CSV row without aborting the batch.
type RowError struct {
	Record int // 1-based data record number
	Err    error
}

// ReadOrders parses an orders CSV. Rows that fail to parse or validate are
// collected as RowErrors; the rest become orders in file order.
func ReadOrders(path string) ([]model.Order, []RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer func() { _ = f.Close() }()

	return readOrders(f)
}

func readOrders(r io.Reader) ([]model.Order, []RowError, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		return nil, nil, eris.Wrap(err, "ingest: read csv header")
	}

	var orders []model.Order
	var rowErrs []RowError
	record := 0
	for {
		record++
		var row csvOrder
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			rowErrs = append(rowErrs, RowError{Record: record, Err: err})
			continue
		}

		order := model.Order{
			ID:        row.ID,
			Latitude:  row.Latitude,
			Longitude: row.Longitude,
			Subtotal:  row.Subtotal,
			Timestamp: row.Timestamp,
		}
		if err := order.Validate(); err != nil {
			rowErrs = append(rowErrs, RowError{Record: record, Err: err})
			continue
		}
		orders = append(orders, order)
	}

	if len(rowErrs) > 0 {
		zap.L().Warn("ingest: rejected csv rows", zap.Int("rejected", len(rowErrs)), zap.Int("accepted", len(orders)))
	}
	return orders, rowErrs, nil
}

// AppendJournal appends accepted orders to the input CSV journal, creating
// the file with its header when missing.
func AppendJournal(path string, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrapf(err, "ingest: open journal %s", path)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return eris.Wrap(err, "ingest: stat journal")
	}

	var buf bytes.Buffer
	if info.Size() == 0 {
		buf.WriteString(journalHeader)
	}
	for _, o := range orders {
		buf.WriteString(o.ID)
		buf.WriteByte(',')
		buf.WriteString(formatNumber(o.Longitude))
		buf.WriteByte(',')
		buf.WriteString(formatNumber(o.Latitude))
		buf.WriteByte(',')
		buf.WriteString(o.Timestamp)
		buf.WriteByte(',')
		buf.WriteString(formatNumber(o.Subtotal))
		buf.WriteByte('\n')
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		return eris.Wrap(err, "ingest: append journal")
	}
	return nil
}

// formatNumber renders a journal number the way the historical files do:
// integral values carry one decimal place, everything else its shortest form.
func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// JournalTimestamp renders a default order timestamp in the journal's
// historical format: millisecond precision padded to nanoseconds.
func JournalTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05.000") + "000000"
}
