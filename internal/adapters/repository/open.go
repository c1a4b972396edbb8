package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/okian/salaryqa/pkg/logger"
)

// Supported store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Open returns the Store for driver. dsn is ignored by the memory driver.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (Store, error) {
	switch driver {
	case DriverMemory:
		return NewMemoryStore(ctx, opts...), nil
	case DriverSQLite, DriverPostgres:
		return OpenSQL(ctx, driver, dsn, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// openDB opens a database handle and waits for it to answer a ping, retrying
// with exponential backoff up to the connect timeout.
func openDB(ctx context.Context, driver, dsn string, o options) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		db, err = sql.Open(DriverSQLite, sqliteDSN(dsn))
		if err == nil {
			db.SetMaxOpenConns(1) // sqlite
			db.SetConnMaxLifetime(0)
		}
	case DriverPostgres:
		db, err = sql.Open(DriverPostgres, dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = o.connectTimeout
	ping := func() error { return db.PingContext(ctx) }
	notify := func(err error, wait time.Duration) {
		o.logger.Warn(ctx, "database not ready, retrying",
			logger.String("driver", driver),
			logger.Duration("wait", wait),
			logger.Error(err),
		)
	}
	if err := backoff.RetryNotify(ping, backoff.WithContext(b, ctx), notify); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// sqliteDSN turns a bare path into a DSN with foreign keys and a busy timeout.
func sqliteDSN(dsn string) string {
	if strings.HasPrefix(dsn, "file:") {
		return dsn
	}
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", dsn)
}

// isUniqueViolation reports whether err is a primary key or unique constraint
// failure from either driver.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrConstraint
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}
