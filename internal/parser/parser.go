package parser

import (
	"fmt"
	"sync"

	"github.com/pingcap/tidb/parser"
	"github.com/pingcap/tidb/parser/ast"
	_ "github.com/pingcap/tidb/parser/test_driver"
)

// SQLParser wraps the TiDB parser. Parser instances are stateful, so a pool
// hands each calling goroutine its own; SQLParser itself is safe to share
// across files analyzed in parallel.
type SQLParser struct {
	pool sync.Pool
}

func NewSQLParser() *SQLParser {
	return &SQLParser{
		pool: sync.Pool{
			New: func() any { return parser.New() },
		},
	}
}

// ParseScript parses the complete text of one migration file into an ordered
// sequence of statements.
//
// Parsing is all-or-nothing: if any statement in the file fails to parse, the
// whole file yields zero statements and an error. Callers must not assume
// that statements before the syntax error were checked. The practical effect
// is that one unsupported construct disables checking for the entire file,
// which is surfaced as a fatal error rather than an empty result.
func (sp *SQLParser) ParseScript(sql string) ([]ast.StmtNode, error) {
	p := sp.pool.Get().(*parser.Parser)
	defer sp.pool.Put(p)

	stmts, _, err := p.Parse(sql, "", "")
	if err != nil {
		return nil, fmt.Errorf("SQL parse error: %w", err)
	}
	return stmts, nil
}
