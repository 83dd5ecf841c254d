package postgres

import (
	"database/sql"
	"embed"
	"log/slog"

	"restapi/internal/errors"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate applies every pending up migration. The caller keeps ownership of sqlDB.
func Migrate(sqlDB *sql.DB, logger *slog.Logger) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return errors.Wrap(err, "failed to open embedded migrations")
	}
	defer src.Close()

	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return errors.Wrap(err, "could not create postgres driver instance for migrations")
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return errors.Wrap(err, "could not create migrate instance")
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "failed to apply migrations")
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return errors.Wrap(verr, "failed to read migration version")
	}
	if dirty {
		return errors.Errorf("database is dirty at migration version %d", version)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply", slog.Uint64("version", uint64(version)))
	} else {
		logger.Info("Database migrations applied", slog.Uint64("version", uint64(version)))
	}

	return nil
}
