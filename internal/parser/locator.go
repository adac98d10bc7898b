package parser

import (
	"strings"

	"sql-guard/internal/model"

	"github.com/pingcap/tidb/parser/ast"
)

// Locate assigns each statement a best-effort 1-indexed starting line in the
// original text. The parser discards statement positions, so this scans the
// text forward with a consuming cursor: for each statement in order, the
// first not-yet-consumed line whose leading token is one of the statement
// kind's leading keywords is taken as its start, and the cursor advances past
// it. Consuming the matched line keeps repeated statements of the same kind
// (two ALTER TABLEs, say) mapped to distinct lines in source order.
//
// The keyword must match the line's first token as a whole token, so a
// column or table identifier that merely begins with a keyword never counts
// as a statement start. Pure comment lines are never candidates.
//
// A statement that cannot be matched falls back to line 1 and produces a
// LocateWarning; the miss never aborts analysis.
func Locate(sql string, stmts []ast.StmtNode) ([]int, []model.LocateWarning) {
	lines := strings.Split(sql, "\n")
	resolved := make([]int, len(stmts))
	var warnings []model.LocateWarning

	cursor := 0
	for i, stmt := range stmts {
		keywords := leadingKeywords(stmt)

		matched := 0
		for j := cursor; j < len(lines); j++ {
			if isCommentLine(lines[j]) {
				continue
			}
			token := firstToken(lines[j])
			if token == "" {
				continue
			}
			if matchesAny(token, keywords) {
				matched = j + 1
				cursor = j + 1
				break
			}
		}

		if matched == 0 {
			// Line 1 can never fall inside an exemption range, so the
			// fallback fails open: the statement still gets checked.
			resolved[i] = 1
			warnings = append(warnings, model.LocateWarning{
				Keyword: strings.Join(keywords, "|"),
				Preview: preview(stmt),
			})
			continue
		}
		resolved[i] = matched
	}

	return resolved, warnings
}

// leadingKeywords returns the tokens that can begin a statement of the given
// kind in source text.
func leadingKeywords(stmt ast.StmtNode) []string {
	switch stmt.(type) {
	case *ast.AlterTableStmt, *ast.AlterDatabaseStmt, *ast.AlterSequenceStmt:
		return []string{"ALTER"}
	case *ast.CreateTableStmt, *ast.CreateIndexStmt, *ast.CreateDatabaseStmt,
		*ast.CreateViewStmt, *ast.CreateSequenceStmt:
		return []string{"CREATE"}
	case *ast.DropTableStmt, *ast.DropIndexStmt, *ast.DropDatabaseStmt,
		*ast.DropSequenceStmt:
		return []string{"DROP"}
	case *ast.TruncateTableStmt:
		return []string{"TRUNCATE"}
	case *ast.RenameTableStmt:
		return []string{"RENAME"}
	case *ast.InsertStmt:
		return []string{"INSERT", "REPLACE"}
	case *ast.UpdateStmt:
		return []string{"UPDATE"}
	case *ast.DeleteStmt:
		return []string{"DELETE"}
	case *ast.SelectStmt, *ast.SetOprStmt:
		return []string{"SELECT"}
	default:
		if token := firstToken(stmt.Text()); token != "" {
			return []string{strings.ToUpper(token)}
		}
		return nil
	}
}

func matchesAny(token string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.EqualFold(token, kw) {
			return true
		}
	}
	return false
}

// firstToken returns the leading identifier-shaped token of a line: the
// maximal run of letters, digits, underscores and dollar signs after leading
// whitespace. Taking the maximal run is what makes keyword matching
// whole-token: "ALTERED_AT" yields "ALTERED_AT", not "ALTER".
func firstToken(line string) string {
	s := strings.TrimSpace(line)
	i := 0
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	return s[:i]
}

func isIdentChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '_' || c == '$'
}

// isCommentLine reports whether a line is purely a single-line comment.
func isCommentLine(line string) bool {
	s := strings.TrimSpace(line)
	return strings.HasPrefix(s, "--") || strings.HasPrefix(s, "#")
}

func preview(stmt ast.StmtNode) string {
	text := strings.TrimSpace(stmt.Text())
	if text == "" {
		return "<no statement text>"
	}
	if len(text) > 60 {
		return text[:60] + "..."
	}
	return text
}
