package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/niksmo/storefront/internal/adapter/storage"
	"github.com/spf13/pflag"
)

const (
	storagePathFlag = "storage-path"
	downFlag        = "down"
)

func main() {
	storagePath, down := getFlagsValues()
	validateFlags(storagePath)
	makeMigrations(storagePath, down)
}

type MigrationLogger struct {
	logger  *slog.Logger
	verbose bool
}

func NewMigrationLogger() *MigrationLogger {
	return &MigrationLogger{
		logger:  slog.Default(),
		verbose: true,
	}
}

func (ml *MigrationLogger) Printf(format string, v ...any) {
	ml.logger.Info(fmt.Sprintf(format, v...))
}

func (ml *MigrationLogger) Verbose() bool {
	return ml.verbose
}

// getFlagsValues reads the postgres DSN without scheme,
// e.g. user:pass@localhost:5432/storefront?sslmode=disable.
func getFlagsValues() (dsn string, down bool) {
	storagePath := pflag.StringP(storagePathFlag, "s", "", "postgres DSN without scheme")
	downMigration := pflag.Bool(downFlag, false, "roll back all migrations")
	pflag.Parse()
	return *storagePath, *downMigration
}

func validateFlags(storagePath string) {
	if storagePath == "" {
		slog.Error("too few args", "err", fmt.Errorf("--%s flag: required", storagePathFlag))
		fallDown()
	}
}

func makeMigrations(storagePath string, down bool) {
	src, err := iofs.New(storage.Migrations, storage.MigrationsDir)
	if err != nil {
		slog.Error("failed to open migrations", "err", err)
		fallDown()
	}

	m, err := migrate.NewWithSourceInstance(
		"iofs", src, fmt.Sprintf("pgx5://%s", storagePath),
	)
	if err != nil {
		slog.Error("failed to migrate", "err", err)
		fallDown()
	}

	m.Log = NewMigrationLogger()

	apply := m.Up
	if down {
		apply = m.Down
	}

	if err := apply(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.Log.Printf("no migrations to apply")
			return
		}
		slog.Error("failed to migrate", "err", err)
		fallDown()
	}
	m.Log.Printf("migration applied\n")
}

func fallDown() {
	os.Exit(2)
}
