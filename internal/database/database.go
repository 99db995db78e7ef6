package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver ("pgx")
	_ "github.com/sijms/go-ora/v2"     // Oracle driver ("oracle")
	_ "modernc.org/sqlite"             // SQLite driver ("sqlite")
)

func init() {
	// go-ora takes :name placeholders; sqlx does not know the driver name.
	sqlx.BindDriver("oracle", sqlx.NAMED)
}

// DriverName maps a configured db.driver to the database/sql driver name.
func DriverName(driver string) string {
	switch driver {
	case "postgres":
		return "pgx"
	case "sqlite":
		return "sqlite"
	default:
		return "oracle"
	}
}

// NewSQLXDB opens and pings a database for the configured driver. Repository
// queries are written with ? placeholders and rebound per driver.
func NewSQLXDB(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(DriverName(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	// Oracle reports unquoted column names in upper case.
	if driver == "oracle" {
		db.Mapper = reflectx.NewMapperTagFunc("db", strings.ToUpper, strings.ToUpper)
	}
	if driver == "sqlite" {
		// A single writer avoids SQLITE_BUSY under concurrent evaluations.
		db.SetMaxOpenConns(1)
	}

	return db, nil
}
