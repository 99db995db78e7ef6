package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"omr-eval/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationsFS embed.FS

// Oracle errors that mean a migration step was already applied (or reverted).
var oracleIdempotentCodes = []string{"ORA-00955", "ORA-01408", "ORA-00942", "ORA-01418"}

// RunMigrations applies all pending up migrations for the configured driver.
func RunMigrations(db *sql.DB, driver string) error {
	if driver == "oracle" {
		return runOracleScripts(db, ".up.sql", false)
	}
	m, err := newMigrate(db, driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not apply migrations: %w", err)
	}
	logger.Get().Info("Migrations completed successfully", zap.String("driver", driver))
	return nil
}

// RollbackMigrations reverts every migration for the configured driver.
func RollbackMigrations(db *sql.DB, driver string) error {
	if driver == "oracle" {
		return runOracleScripts(db, ".down.sql", true)
	}
	m, err := newMigrate(db, driver)
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not revert migrations: %w", err)
	}
	logger.Get().Info("Migrations reverted", zap.String("driver", driver))
	return nil
}

func newMigrate(db *sql.DB, driver string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, path.Join("migrations", driver))
	if err != nil {
		return nil, fmt.Errorf("could not open migrations for %s: %w", driver, err)
	}

	var target migratedb.Driver
	switch driver {
	case "postgres":
		target, err = pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	case "sqlite":
		target, err = sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	default:
		return nil, fmt.Errorf("unsupported migration driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("could not prepare %s migration driver: %w", driver, err)
	}

	return migrate.NewWithInstance("iofs", src, driver, target)
}

// runOracleScripts executes one statement per file, since go-ora does not
// accept multi-statement scripts and golang-migrate has no Oracle driver.
func runOracleScripts(db *sql.DB, suffix string, reverse bool) error {
	dir := path.Join("migrations", "oracle")
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("could not read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), suffix) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	if reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(names)))
	}

	log := logger.Get()
	for _, name := range names {
		content, err := fs.ReadFile(migrationsFS, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("could not read migration file %s: %w", name, err)
		}

		stmt := strings.TrimSuffix(strings.TrimSpace(string(content)), ";")
		if _, err := db.Exec(stmt); err != nil {
			if isOracleIdempotent(err) {
				log.Info("Skipped migration", zap.String("file", name), zap.Error(err))
				continue
			}
			return fmt.Errorf("could not execute migration %s: %w", name, err)
		}
		log.Info("Executed migration", zap.String("file", name))
	}

	log.Info("Migrations completed successfully", zap.String("driver", "oracle"))
	return nil
}

func isOracleIdempotent(err error) bool {
	msg := err.Error()
	for _, code := range oracleIdempotentCodes {
		if strings.Contains(msg, code) {
			return true
		}
	}
	return false
}
