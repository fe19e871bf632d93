package pg

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

type txContextKey string

const txKey txContextKey = "trx"

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type DB struct {
	read  *gorm.DB
	write *gorm.DB
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		Logger: newGormLogger(os.Stdout),
	}
}

// newGormLogger logs slow queries and errors. Missing rows are expected
// lookups and are not logged.
func newGormLogger(w io.Writer) logger.Interface {
	return logger.New(log.New(w, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func Create(config Config, withDebug bool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(config.DSN()), gormConfig())
	if err != nil {
		return nil, err
	}

	if withDebug {
		db = db.Debug()
	}
	return db, nil
}

// CreateSQLite opens a sqlite database pinned to one connection, so an
// in-memory database lives as long as the process and writes are serialized.
func CreateSQLite(dsn string, withDebug bool) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)

	if withDebug {
		db = db.Debug()
	}
	return db, nil
}

func CreateReadWrite(readConfig Config, writeConfig Config, withDebug bool) (*DB, error) {
	read, err := Create(readConfig, withDebug)
	if err != nil {
		return nil, err
	}
	write, err := Create(writeConfig, withDebug)
	if err != nil {
		return nil, err
	}
	return &DB{read, write}, nil
}

// New wraps a single handle used for both reads and writes.
func New(db *gorm.DB) *DB {
	return &DB{read: db, write: db}
}

// Open builds the store for the configured driver.
func Open(driver, sqliteDSN string, readConfig, writeConfig Config, withDebug bool) (*DB, error) {
	switch driver {
	case DriverSQLite, "":
		db, err := CreateSQLite(sqliteDSN, withDebug)
		if err != nil {
			return nil, err
		}
		return New(db), nil
	case DriverPostgres:
		return CreateReadWrite(readConfig, writeConfig, withDebug)
	default:
		return nil, fmt.Errorf("pg: unknown driver %q", driver)
	}
}

// WithinTransaction runs fn in a write transaction. Repositories pick the
// transaction up from the context through Read and Write.
func (r *DB) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return fn(ctx)
	}
	return r.write.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey, tx))
	})
}

func (r *DB) Write(ctx context.Context) *gorm.DB {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if ok {
		return tx
	}

	return r.write.WithContext(ctx)
}

func (r *DB) Read(ctx context.Context) *gorm.DB {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if ok {
		return tx
	}

	return r.read.WithContext(ctx)
}

// Close closes the underlying connections.
func (r *DB) Close() error {
	w, err := r.write.DB()
	if err != nil {
		return err
	}
	if r.read != r.write {
		if rd, err := r.read.DB(); err == nil {
			_ = rd.Close()
		}
	}
	return w.Close()
}

// Ping checks the write connection.
func (r *DB) Ping(ctx context.Context) error {
	w, err := r.write.DB()
	if err != nil {
		return err
	}
	return w.PingContext(ctx)
}
