package db

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"social-ads/db/migrations"
)

// Migrate moves the schema at addr to migrations.Version from the embedded
// files. A dirty schema is left for an operator to force; a schema newer
// than the binary is refused.
func Migrate(addr string, logger *slog.Logger) (err error) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	mg, err := migrate.NewWithSourceInstance("iofs", src, addr)
	if err != nil {
		_ = src.Close()
		return fmt.Errorf("connect migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := mg.Close()
		if err == nil {
			err = errors.Join(srcErr, dbErr)
		}
	}()

	current, dirty, err := mg.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		current = 0
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("schema version %d is dirty", current)
	}
	if current > migrations.Version {
		return fmt.Errorf("schema version %d is newer than supported %d", current, migrations.Version)
	}
	if current == migrations.Version {
		logger.Info("schema up to date", slog.Uint64("version", uint64(current)))
		return nil
	}

	if err := mg.Migrate(migrations.Version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %d -> %d: %w", current, migrations.Version, err)
	}
	logger.Info("schema migrated",
		slog.Uint64("from", uint64(current)),
		slog.Uint64("to", uint64(migrations.Version)))
	return nil
}
