package migrations

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"codeberg.org/studyhall/server/internal/logger"
)

//go:embed sql/*.sql
var files embed.FS

// applies the embedded schema migrations
type Migrator struct {
	migrate *migrate.Migrate
}

func New(databaseURL string) (*Migrator, error) {
	source, err := iofs.New(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, driverURL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return &Migrator{migrate: m}, nil
}

// the pgx/v5 driver registers itself under the pgx5 scheme
func driverURL(databaseURL string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(databaseURL, scheme) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, scheme)
		}
	}

	return databaseURL
}

func (m *Migrator) Up() error {
	logger.Info("running migrations up")

	err := m.migrate.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to apply")
		return nil
	}

	if err != nil {
		return fmt.Errorf("migration up failed: %w", err)
	}

	return m.logVersion("migrations completed")
}

func (m *Migrator) Down() error {
	logger.Info("running migrations down")

	err := m.migrate.Down()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to roll back")
		return nil
	}

	if err != nil {
		return fmt.Errorf("migration down failed: %w", err)
	}

	logger.Info("all migrations rolled back")

	return nil
}

// Steps applies n migrations, positive is up and negative is down
func (m *Migrator) Steps(n int) error {
	logger.Info("running migration steps", "steps", n)

	err := m.migrate.Steps(n)
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to apply")
		return nil
	}

	if err != nil {
		return fmt.Errorf("migration steps failed: %w", err)
	}

	return m.logVersion("migration steps completed")
}

// Version returns the applied version, 0 when nothing has been applied
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}

	return version, dirty, nil
}

func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	return errors.Join(sourceErr, dbErr)
}

func (m *Migrator) logVersion(msg string) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}

	logger.Info(msg, "version", version, "dirty", dirty)

	return nil
}
