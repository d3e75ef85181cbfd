package database

import (
	"embed"
	goerrors "errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate applies all pending schema migrations to the database at the
// given URL. Already up-to-date is not an error.
func Migrate(url string) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return err
	}
	defer m.Close()

	err = m.Up()
	if goerrors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
