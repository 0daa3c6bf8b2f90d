// Package txn runs units of work under serializable isolation and
// retries them when the storage engine reports a serialization
// conflict.  Domain errors (validation, not-found, explicit conflicts)
// pass through untouched; only MySQL deadlocks and lock-wait timeouts
// trigger a re-run of the whole function.
package txn

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/go-sql-driver/mysql"
)

// maxAttempts bounds how many times a conflicting unit of work is run
// before giving up.
const maxAttempts = 3

// baseBackoff is the unit for the exponential delay between attempts:
// attempt n sleeps 2^n × baseBackoff before re-running.
const baseBackoff = 100 * time.Millisecond

// ErrRetriesExhausted is returned once every attempt has failed with a
// serialization conflict.  Handlers surface it as HTTP 409 with a
// "high demand" message, distinct from immediate domain conflicts.
var ErrRetriesExhausted = errors.New("txn: transaction conflict after retries, try again")

// MySQL error numbers treated as serialization failures.
const (
	mysqlDeadlock        = 1213 // ER_LOCK_DEADLOCK
	mysqlLockWaitTimeout = 1205 // ER_LOCK_WAIT_TIMEOUT
)

// WithSerializable executes fn inside a SERIALIZABLE transaction.  The
// transaction is rolled back whenever fn returns an error or the
// commit fails.  Serialization conflicts (from fn or from the commit
// itself) re-run fn in a fresh transaction with exponential backoff;
// any other error is returned as-is after rollback.
func WithSerializable(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	return retrySerializable(ctx, func() error {
		tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if err != nil {
			return err
		}
		committed := false
		defer func() {
			if !committed {
				_ = tx.Rollback()
			}
		}()
		if err := fn(tx); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		committed = true
		return nil
	}, sleepCtx)
}

// retrySerializable runs attempt up to maxAttempts times, sleeping
// 2^n × baseBackoff between attempts when the failure was a
// serialization conflict.  The sleep function is injected so tests can
// observe the schedule without waiting.
func retrySerializable(ctx context.Context, attempt func() error, sleep func(context.Context, time.Duration) error) error {
	var err error
	for n := 1; n <= maxAttempts; n++ {
		err = attempt()
		if err == nil {
			return nil
		}
		if !IsSerializationFailure(err) {
			return err
		}
		if n == maxAttempts {
			break
		}
		delay := (1 << n) * baseBackoff
		log.Printf("txn: serialization conflict on attempt %d, retrying in %s: %v", n, delay, err)
		if serr := sleep(ctx, delay); serr != nil {
			return serr
		}
	}
	log.Printf("txn: giving up after %d attempts: %v", maxAttempts, err)
	return ErrRetriesExhausted
}

// IsSerializationFailure reports whether err is a MySQL deadlock or
// lock-wait timeout, the two signals the engine uses when concurrent
// serializable transactions cannot all commit.  Uniqueness violations
// and other driver errors are deliberately excluded.
func IsSerializationFailure(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	return me.Number == mysqlDeadlock || me.Number == mysqlLockWaitTimeout
}

// sleepCtx waits for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
