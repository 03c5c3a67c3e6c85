// Package sqlite stores the question bank and finished results in a SQL
// database. SQLite is the default; PostgreSQL works through the same code.
package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite3  = "sqlite3"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultDSN = "linuk.db"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know by default.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

type Store struct {
	db     *sqlx.DB
	driver string
}

// Open connects with driver (sqlite3, sqlite or postgres) and creates the
// schema when missing.
func Open(driver, dsn string) (*Store, error) {
	driver = strings.TrimSpace(driver)
	if driver == "" {
		driver = DriverSQLite3
	}
	switch driver {
	case DriverSQLite3, DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if strings.TrimSpace(dsn) == "" {
		if driver == DriverPostgres {
			return nil, fmt.Errorf("postgres requires a DSN")
		}
		dsn = DefaultDSN
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if driver != DriverPostgres {
		db.SetMaxOpenConns(1)
		if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	store := &Store{db: db, driver: driver}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
