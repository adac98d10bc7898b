package parser

import (
	"testing"

	"github.com/pingcap/tidb/parser/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, sql string) []ast.StmtNode {
	t.Helper()
	stmts, err := NewSQLParser().ParseScript(sql)
	require.NoError(t, err)
	return stmts
}

func TestLocate_SingleStatement(t *testing.T) {
	sql := "ALTER TABLE users DROP COLUMN email;"
	lines, warnings := Locate(sql, mustParse(t, sql))

	assert.Equal(t, []int{1}, lines)
	assert.Empty(t, warnings)
}

// Two statements with the same leading keyword must resolve to strictly
// increasing lines; the cursor must not stick on the first match.
func TestLocate_SameKeywordAdvancesCursor(t *testing.T) {
	sql := "ALTER TABLE users DROP COLUMN email;\n" +
		"\n" +
		"ALTER TABLE posts DROP COLUMN body;\n" +
		"ALTER TABLE comments DROP COLUMN author;"
	lines, warnings := Locate(sql, mustParse(t, sql))

	assert.Equal(t, []int{1, 3, 4}, lines)
	assert.Empty(t, warnings)
}

// A leading keyword inside a longer identifier is not a statement start.
func TestLocate_KeywordInsideIdentifier(t *testing.T) {
	sql := "CREATE TABLE audit_log (\n" +
		"    altered_at DATETIME,\n" +
		"    created_at DATETIME\n" +
		");\n" +
		"ALTER TABLE audit_log DROP COLUMN altered_at;"
	lines, warnings := Locate(sql, mustParse(t, sql))

	assert.Equal(t, []int{1, 5}, lines, "ALTER must not match the altered_at column line")
	assert.Empty(t, warnings)
}

// Keywords inside comment lines are not statement starts.
func TestLocate_SkipsCommentLines(t *testing.T) {
	sql := "-- ALTER TABLE users was considered here\n" +
		"ALTER TABLE users DROP COLUMN email;"
	lines, warnings := Locate(sql, mustParse(t, sql))

	assert.Equal(t, []int{2}, lines)
	assert.Empty(t, warnings)
}

// Two statements on one line: the second cannot be located once the line is
// consumed, so it falls back to line 1 with a warning.
func TestLocate_FallbackWarnsAndNeverAborts(t *testing.T) {
	sql := "ALTER TABLE a DROP COLUMN x; ALTER TABLE a DROP COLUMN y;"
	stmts := mustParse(t, sql)
	require.Len(t, stmts, 2)

	lines, warnings := Locate(sql, stmts)

	assert.Equal(t, []int{1, 1}, lines)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Keyword, "ALTER")
	assert.NotEmpty(t, warnings[0].Preview)
}

func TestLocate_CaseInsensitiveKeyword(t *testing.T) {
	sql := "alter table users drop column email;\n" +
		"TRUNCATE TABLE sessions;"
	lines, warnings := Locate(sql, mustParse(t, sql))

	assert.Equal(t, []int{1, 2}, lines)
	assert.Empty(t, warnings)
}

func TestLocate_MixedStatementKinds(t *testing.T) {
	sql := "CREATE INDEX idx_users_email ON users (email);\n" +
		"DROP INDEX idx_old ON users;\n" +
		"RENAME TABLE users TO members;"
	lines, warnings := Locate(sql, mustParse(t, sql))

	assert.Equal(t, []int{1, 2, 3}, lines)
	assert.Empty(t, warnings)
}

func TestFirstToken(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"ALTER TABLE t", "ALTER"},
		{"  alter table t", "alter"},
		{"ALTERED_AT DATETIME", "ALTERED_AT"},
		{");", ""},
		{"", ""},
		{"`alter` INT", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, firstToken(tt.line), "line %q", tt.line)
	}
}
