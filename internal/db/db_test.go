package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := database.Migrate(context.Background()); err != nil {
		database.Close()
		t.Fatalf("failed to migrate database: %v", err)
	}
	return database
}

func TestMigrateUpIsIdempotent(t *testing.T) {
	ctx := context.Background()
	database, err := OpenInMemory()
	require.NoError(t, err)
	defer database.Close()

	applied, err := database.MigrateUp(ctx)
	require.NoError(t, err)
	require.Equal(t, len(migrations), applied)

	version, err := database.SchemaVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, migrations[len(migrations)-1].version, version)

	applied, err = database.MigrateUp(ctx)
	require.NoError(t, err)
	require.Zero(t, applied)
}

func TestOpenFileDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "lib", "weaver.db")

	database, err := Open(DefaultConfig(path))
	require.NoError(t, err)
	require.Equal(t, path, database.Path())
	require.NoError(t, database.Migrate(ctx))
	require.NoError(t, database.Close())

	database, err = Open(DefaultConfig(path))
	require.NoError(t, err)
	defer database.Close()
	version, err := database.SchemaVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, version)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	require.Error(t, err)
}
