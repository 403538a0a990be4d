package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFromEmptyRows(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	n, err := CopyFrom(context.Background(), mock, "orders", []string{"order_id"}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := [][]any{
		{"o1", -73.9, 40.7, "2025-03-05 10:00:00", 19.99, "csv_orders_block"},
		{"o2", -73.8, 40.8, "2025-03-05 10:01:00", 5.00, "csv_orders_block"},
	}
	cols := []string{"order_id", "longitude", "latitude", "timestamp", "subtotal", "source"}

	mock.ExpectCopyFrom(pgx.Identifier{"orders"}, cols).WillReturnResult(2)

	n, err := CopyFrom(context.Background(), mock, "orders", cols, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
