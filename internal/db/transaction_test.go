package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fastRetry = RetryPolicy{Attempts: 3, Backoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}

func TestRetryRetriesOnBusy(t *testing.T) {
	attempts := 0
	var waits []time.Duration

	err := retry(context.Background(), fastRetry, func(_ int, wait time.Duration, _ error) {
		waits = append(waits, wait)
	}, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("database is locked")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, attempts)
	require.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, waits)
}

func TestRetryStopsOnNonBusy(t *testing.T) {
	attempts := 0
	err := retry(context.Background(), fastRetry, nil, func() error {
		attempts++
		return errors.New("no such table: documents")
	})

	require.EqualError(t, err, "no such table: documents")
	require.Equal(t, 1, attempts)
}

func TestRetryStopsAfterAttempts(t *testing.T) {
	attempts := 0
	policy := fastRetry
	policy.Attempts = 2
	err := retry(context.Background(), policy, nil, func() error {
		attempts++
		return errors.New("database is busy")
	})

	require.Error(t, err)
	require.Equal(t, 2, attempts)
}

func TestRetryStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	err := retry(ctx, RetryPolicy{Attempts: 5, Backoff: time.Hour, MaxBackoff: time.Hour}, nil, func() error {
		attempts++
		cancel()
		return errors.New("database is locked")
	})

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, attempts)
}

func TestRetryPolicyDefaults(t *testing.T) {
	p := RetryPolicy{}.withDefaults()
	require.Equal(t, DefaultRetryPolicy(), p)

	p = RetryPolicy{Backoff: 2 * time.Second}.withDefaults()
	require.Equal(t, 3, p.Attempts)
	require.Equal(t, 2*time.Second, p.MaxBackoff)
}

func TestIsBusyError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("SQLITE_BUSY: try again"), true},
		{errors.New("Database is Locked"), true},
		{errors.New("no such table: documents"), false},
		{context.DeadlineExceeded, false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, isBusyError(tt.err), "%v", tt.err)
	}
}

func TestTransactionWithRetry(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	attempts := 0

	err := db.TransactionWithRetry(ctx, fastRetry, func(tx *sql.Tx) error {
		attempts++
		if attempts < 2 {
			return errors.New("database is locked")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 2, attempts)
}

func TestTransactionRollsBack(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO documents (id, name, kind, drafts, data, created_at, updated_at)
			VALUES ('d1', 'n', 'ada', 1, x'00', '', '')
		`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count))
	require.Zero(t, count)
}
