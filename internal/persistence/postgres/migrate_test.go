package postgres

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrationURL(t *testing.T) {
	require.Equal(t, "pgx5://u:p@db:5432/timeflow?sslmode=disable",
		migrationURL("postgres://u:p@db:5432/timeflow?sslmode=disable"))
	require.Equal(t, "pgx5://db/timeflow", migrationURL("postgresql://db/timeflow"))
	require.Equal(t, "pgx5://db/timeflow", migrationURL("pgx5://db/timeflow"))
}

func TestMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationsFS, "migrations/*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	require.Len(t, downs, len(ups))
}
