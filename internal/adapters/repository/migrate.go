package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies all pending up migrations to the database at dsn.
func Migrate(ctx context.Context, driver, dsn string, opts ...Option) error {
	return withMigrator(ctx, driver, dsn, opts, func(m *migrate.Migrate) error {
		return m.Up()
	})
}

// Rollback reverts every applied migration on the database at dsn.
func Rollback(ctx context.Context, driver, dsn string, opts ...Option) error {
	return withMigrator(ctx, driver, dsn, opts, func(m *migrate.Migrate) error {
		return m.Down()
	})
}

// withMigrator runs fn against a dedicated connection. The migrator owns the
// connection and closes it.
func withMigrator(ctx context.Context, driver, dsn string, opts []Option, fn func(*migrate.Migrate) error) error {
	o := applyOptions(opts)
	db, err := openDB(ctx, driver, dsn, o)
	if err != nil {
		return err
	}

	var inst database.Driver
	switch driver {
	case DriverSQLite:
		inst, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	case DriverPostgres:
		inst, err = migratepg.WithInstance(db, &migratepg.Config{})
	}
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		_ = inst.Close()
		return fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, inst)
	if err != nil {
		_ = inst.Close()
		return fmt.Errorf("migrator: %w", err)
	}
	defer m.Close()

	if err := fn(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: %w", driver, err)
	}
	return nil
}
