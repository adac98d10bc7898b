package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sql-guard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
start_after: "2024_01_01_000000"
check_down: true
disable_checks:
  - drop_column
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "2024_01_01_000000", cfg.StartAfter)
	assert.True(t, cfg.CheckDown)
	assert.Equal(t, []string{"drop_column"}, cfg.DisableChecks)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "disable_checks: [unclosed\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_TimestampValidation(t *testing.T) {
	valid := []string{"2024_01_01_000000", "2024-01-01-000000", "20240101000000"}
	for _, ts := range valid {
		path := writeConfig(t, "start_after: \""+ts+"\"\n")
		_, err := Load(path)
		assert.NoError(t, err, "timestamp %q should be accepted", ts)
	}

	invalid := []string{
		"2024_01-01_000000", // mixed separators
		"2024_01_01",        // too short
		"202a_01_01_000000", // non-digit
		"2024/01/01/000000", // wrong separator
	}
	for _, ts := range invalid {
		path := writeConfig(t, "start_after: \""+ts+"\"\n")
		_, err := Load(path)
		assert.Error(t, err, "timestamp %q should be rejected", ts)
	}
}

func TestValidateCheckNames(t *testing.T) {
	valid := []string{"drop_column", "truncate_table"}

	cfg := &Config{DisableChecks: []string{"drop_column"}}
	assert.NoError(t, cfg.ValidateCheckNames(valid))

	cfg = &Config{DisableChecks: []string{"no_such_check"}}
	err := cfg.ValidateCheckNames(valid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no_such_check")
	assert.Contains(t, err.Error(), "drop_column", "error should list valid names")
}

func TestIsCheckEnabled(t *testing.T) {
	cfg := &Config{DisableChecks: []string{"drop_column", "truncate_table"}}

	assert.False(t, cfg.IsCheckEnabled("drop_column"))
	assert.False(t, cfg.IsCheckEnabled("truncate_table"))
	assert.True(t, cfg.IsCheckEnabled("rename_table"))
}

func TestShouldCheckMigration(t *testing.T) {
	cfg := &Config{StartAfter: "2024_01_01_000000"}

	// Strictly after the threshold.
	assert.True(t, cfg.ShouldCheckMigration("2024_01_02_000000_new_migration"))
	assert.True(t, cfg.ShouldCheckMigration("2024-06-15-120000_other_style"))
	assert.True(t, cfg.ShouldCheckMigration("20240102000000_no_separators"))

	// At or before the threshold.
	assert.False(t, cfg.ShouldCheckMigration("2024_01_01_000000_exact_match"))
	assert.False(t, cfg.ShouldCheckMigration("2023_12_31_235959_old"))
	assert.False(t, cfg.ShouldCheckMigration("20231231235959_old_no_sep"))

	// No usable timestamp prefix: checked by default.
	assert.True(t, cfg.ShouldCheckMigration("not_a_timestamp"))

	// No filter configured: everything is checked.
	assert.True(t, (&Config{}).ShouldCheckMigration("2020_01_01_000000_ancient"))
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err, "generated default config must load cleanly")
	assert.False(t, cfg.CheckDown)
	assert.Empty(t, cfg.DisableChecks)

	assert.Error(t, WriteDefault(path), "must refuse to overwrite an existing config")
}
