package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sql-guard/internal/config"
	"sql-guard/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("ALTER TABLE t ADD COLUMN c INT;\n"), 0o644))
}

func setupMigrations(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "2024_01_01_000000_create_users", "up.sql"))
	writeFile(t, filepath.Join(dir, "2024_01_01_000000_create_users", "down.sql"))
	writeFile(t, filepath.Join(dir, "2024_06_01_000000_add_index", "up.sql"))
	writeFile(t, filepath.Join(dir, "loose.sql"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("docs"), 0o644))
	return dir
}

func TestMigrationWalker_Discover(t *testing.T) {
	dir := setupMigrations(t)
	w := NewMigrationWalker(&config.Config{})

	files, err := w.Discover(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "2024_01_01_000000_create_users", "up.sql"),
		filepath.Join(dir, "2024_06_01_000000_add_index", "up.sql"),
		filepath.Join(dir, "loose.sql"),
	}, files)
}

func TestMigrationWalker_CheckDown(t *testing.T) {
	dir := setupMigrations(t)
	w := NewMigrationWalker(&config.Config{CheckDown: true})

	files, err := w.Discover(dir)
	require.NoError(t, err)
	assert.Contains(t, files, filepath.Join(dir, "2024_01_01_000000_create_users", "down.sql"))
}

func TestMigrationWalker_StartAfterFilter(t *testing.T) {
	dir := setupMigrations(t)
	w := NewMigrationWalker(&config.Config{StartAfter: "2024_01_01_000000"})

	files, err := w.Discover(dir)
	require.NoError(t, err)

	assert.NotContains(t, files, filepath.Join(dir, "2024_01_01_000000_create_users", "up.sql"),
		"migrations at the threshold are skipped")
	assert.Contains(t, files, filepath.Join(dir, "2024_06_01_000000_add_index", "up.sql"))
	assert.Contains(t, files, filepath.Join(dir, "loose.sql"),
		"loose SQL files bypass the timestamp filter")
}

func TestMigrationWalker_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "migration.sql")
	writeFile(t, path)

	files, err := NewMigrationWalker(&config.Config{}).Discover(path)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestMigrationWalker_MissingPath(t *testing.T) {
	_, err := NewMigrationWalker(&config.Config{}).Discover(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestWorkerPool_PreservesOrderAndIsolatesFailures(t *testing.T) {
	boom := errors.New("boom")
	proc := func(path string) (model.FileReport, error) {
		if filepath.Base(path) == "bad.sql" {
			return model.FileReport{File: path}, boom
		}
		return model.FileReport{File: path}, nil
	}

	paths := []string{"a.sql", "bad.sql", "c.sql", "d.sql"}
	results := NewWorkerPool(3, proc).Run(context.Background(), paths)

	require.Len(t, results, len(paths))
	for i, res := range results {
		assert.Equal(t, paths[i], res.File, "results must come back in input order")
	}
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.NoError(t, results[2].Err, "one failed file must not affect the others")
	assert.NoError(t, results[3].Err)
}
