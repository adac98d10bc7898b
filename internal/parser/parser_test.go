package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLParser_ParseScript(t *testing.T) {
	sp := NewSQLParser()

	tests := []struct {
		name      string
		sql       string
		wantCount int
		wantErr   bool
	}{
		{
			name:      "single alter",
			sql:       "ALTER TABLE users ADD COLUMN email VARCHAR(255);",
			wantCount: 1,
		},
		{
			name:      "multiple statements",
			sql:       "ALTER TABLE users DROP COLUMN email;\nCREATE INDEX idx_name ON users (name);\nTRUNCATE TABLE sessions;",
			wantCount: 3,
		},
		{
			name:      "comments only",
			sql:       "-- nothing to see here\n",
			wantCount: 0,
		},
		{
			name:    "invalid SQL",
			sql:     "THIS IS NOT SQL",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts, err := sp.ParseScript(tt.sql)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, stmts)
				return
			}
			require.NoError(t, err)
			assert.Len(t, stmts, tt.wantCount)
		})
	}
}

// A syntax error anywhere in the file must suppress all statements, including
// the valid ones before it.
func TestSQLParser_ParseScript_AllOrNothing(t *testing.T) {
	sp := NewSQLParser()

	sql := "ALTER TABLE users DROP COLUMN email;\nTHIS IS NOT SQL;\n"
	stmts, err := sp.ParseScript(sql)

	require.Error(t, err)
	assert.Nil(t, stmts, "valid statements before the error must not leak through")
}
