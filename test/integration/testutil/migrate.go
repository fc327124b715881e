//go:build integration

package testutil

import (
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// SchemaVersion reports the applied migration version of dbName.
func SchemaVersion(dbName string) (uint, bool, error) {
	m, err := migrate.New(fmt.Sprintf("file://%s", MigrationsDir()), DSN(dbName))
	if err != nil {
		return 0, false, fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()
	return m.Version()
}
