package db

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"relief-portal-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindMigrationsDirWalksUp(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, migrationsDirName), 0o755))
	nested := filepath.Join(root, "internal", "db")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)

	path, err := findMigrationsDir(migrationsDirName)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(filepath.Join(root, migrationsDirName))
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFindMigrationsDirMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := findMigrationsDir("no-such-migrations-dir")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMigrationFilesSortedSQLOnly(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_users.sql", "0001_relief.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "0003_dir.sql"), 0o755))

	files, err := migrationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_relief.sql", "0002_users.sql"}, files)
}

func TestPoolForFillsDefaults(t *testing.T) {
	limits := poolFor(config.DBConfig{})
	assert.Equal(t, 10, limits.maxOpen)
	assert.Equal(t, 5, limits.maxIdle)
	assert.Equal(t, 30*time.Minute, limits.maxLifetime)

	limits = poolFor(config.DBConfig{MaxOpenConns: 4, MaxIdleConns: 8, ConnMaxLifetime: time.Minute})
	assert.Equal(t, 4, limits.maxOpen)
	assert.Equal(t, 4, limits.maxIdle)
	assert.Equal(t, time.Minute, limits.maxLifetime)
}
