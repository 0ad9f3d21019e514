package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"modernc.org/sqlite"
)

// Primary SQLite result codes for contention. Extended codes carry these in
// their low byte.
const (
	sqliteBusy   = 5
	sqliteLocked = 6
)

// RetryPolicy controls how a transaction is retried while the database is
// busy. Zero fields take the DefaultRetryPolicy values.
type RetryPolicy struct {
	// Attempts is the total number of tries, including the first.
	Attempts int

	// Backoff is the wait before the first retry. It doubles per retry.
	Backoff time.Duration

	// MaxBackoff caps a single wait.
	MaxBackoff time.Duration
}

// DefaultRetryPolicy suits short library writes from the CLI.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:   3,
		Backoff:    50 * time.Millisecond,
		MaxBackoff: time.Second,
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.Attempts <= 0 {
		p.Attempts = def.Attempts
	}
	if p.Backoff <= 0 {
		p.Backoff = def.Backoff
	}
	if p.MaxBackoff < p.Backoff {
		p.MaxBackoff = max(def.MaxBackoff, p.Backoff)
	}
	return p
}

// TransactionWithRetry runs fn in a transaction, retrying the whole
// transaction when SQLite reports the database busy or locked.
func (db *DB) TransactionWithRetry(ctx context.Context, policy RetryPolicy, fn func(*sql.Tx) error) error {
	onRetry := func(attempt int, wait time.Duration, err error) {
		db.logger.Debug().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("database busy, retrying")
	}
	return retry(ctx, policy.withDefaults(), onRetry, func() error {
		return db.Transaction(ctx, fn)
	})
}

// retry calls fn until it succeeds, fails with a non-busy error, runs out of
// attempts or ctx ends.
func retry(ctx context.Context, p RetryPolicy, onRetry func(int, time.Duration, error), fn func() error) error {
	wait := p.Backoff
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil || !isBusyError(err) || attempt >= p.Attempts {
			return err
		}

		if onRetry != nil {
			onRetry(attempt, wait, err)
		}
		if err := sleepContext(ctx, wait); err != nil {
			return err
		}
		wait = min(wait*2, p.MaxBackoff)
	}
}

// isBusyError reports whether err means another connection holds the lock.
// Driver errors are matched by result code; wrapped errors by message.
func isBusyError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code() & 0xff
		return code == sqliteBusy || code == sqliteLocked
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"database is locked", "database is busy", "sqlite_busy"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
