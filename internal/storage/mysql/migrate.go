package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	drv "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrate applies every pending up migration found at sourceURL
// (e.g. "file://migrations") to the database behind dsn.
func Migrate(sourceURL, dsn string) error {
	cfg, err := drv.ParseDSN(dsn)
	if err != nil {
		return fmt.Errorf("parse dsn: %w", err)
	}
	// migration files hold more than one statement
	cfg.MultiStatements = true

	m, err := migrate.New(sourceURL, "mysql://"+cfg.FormatDSN())
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return err
	}
	return nil
}

// Open connects and pings. parseTime is forced on so DATE columns scan into time.Time.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := drv.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.ParseTime = true
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
