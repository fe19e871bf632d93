package pg

import (
	"fmt"

	_ "github.com/lib/pq"
	"github.com/nimasrn/paywise/pkg/logger"
	"github.com/pressly/goose/v3"
)

// Migrate applies the goose migrations found in dir to the postgres database.
func Migrate(cfg Config, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db, err := newSqlConnection(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err = goose.Up(db, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err == nil {
		logger.Info("[pg] migrations applied", "version", version, "dir", dir)
	}
	return nil
}

// MigrationStatus prints the state of every migration in dir.
func MigrationStatus(cfg Config, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	db, err := newSqlConnection(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return goose.Status(db, dir)
}
