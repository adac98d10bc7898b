package model

import (
	"github.com/pingcap/tidb/parser/ast"
)

// Rule represents a single safety check. Rules are stateless predicates over
// one parsed statement: they never see line numbers, exemptions, or other
// statements. A rule that does not apply to a statement returns no
// violations; it never fails.
type Rule interface {
	// Name returns the stable identifier used for enable/disable configuration
	Name() string
	// Check examines one statement and returns any violations found
	Check(node ast.StmtNode) []Violation
}

// Reporter defines how to output per-file results
type Reporter interface {
	Report(reports []FileReport) error
}
