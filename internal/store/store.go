package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// WithTx runs fn inside a single transaction and commits if fn returns nil.
// Transactions begin in immediate mode (set on the DSN), so the whole
// read-check-write sequence inside fn holds the write lock. SQLITE_BUSY and
// SQLITE_LOCKED are retried with fibonacci backoff; every other error aborts
// and rolls back.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(10*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return markBusyRetryable(fmt.Errorf("begin tx: %w", err))
		}
		defer tx.Rollback()

		if err := fn(tx); err != nil {
			return markBusyRetryable(err)
		}
		if err := tx.Commit(); err != nil {
			return markBusyRetryable(fmt.Errorf("commit tx: %w", err))
		}
		return nil
	})
}

func markBusyRetryable(err error) error {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return retry.RetryableError(err)
		}
	}
	return err
}
