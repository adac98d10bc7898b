package auditor

import (
	"os"

	"sql-guard/internal/config"
	"sql-guard/internal/model"
	"sql-guard/internal/parser"

	"github.com/pingcap/tidb/parser/ast"
)

// Auditor owns the ordered set of registered rules and runs them against
// each statement of a migration file, honoring safety-assured exemptions.
type Auditor struct {
	rules  []model.Rule
	parser *parser.SQLParser
}

// New builds an auditor with every built-in rule enabled.
func New(p *parser.SQLParser) *Auditor {
	return NewWithConfig(p, &config.Config{})
}

// NewWithConfig builds an auditor with the built-in rules minus those
// disabled in the configuration.
func NewWithConfig(p *parser.SQLParser, cfg *config.Config) *Auditor {
	a := &Auditor{parser: p}
	for _, rule := range DefaultRules() {
		if cfg.IsCheckEnabled(rule.Name()) {
			a.Register(rule)
		}
	}
	return a
}

// NewEmpty builds an auditor with no rules registered. Callers compose the
// rule set themselves via Register.
func NewEmpty(p *parser.SQLParser) *Auditor {
	return &Auditor{parser: p}
}

// Register appends a rule. Registration order is the only ordering guarantee
// rules get: for each statement, rules run in the order they were registered.
func (a *Auditor) Register(rule model.Rule) {
	a.rules = append(a.rules, rule)
}

// RuleNames returns the names of the registered rules in order.
func (a *Auditor) RuleNames() []string {
	names := make([]string, len(a.rules))
	for i, rule := range a.rules {
		names[i] = rule.Name()
	}
	return names
}

// Evaluate runs every registered rule over each statement in order and
// returns the violations in statement order, then rule-registration order.
// lines[i] is the resolved source line of stmts[i]; a statement whose line
// falls inside any exemption range is skipped entirely, for all rules. No
// deduplication or reordering is performed.
func (a *Auditor) Evaluate(stmts []ast.StmtNode, lines []int, ranges []model.ExemptionRange) []model.Violation {
	var violations []model.Violation

	for i, stmt := range stmts {
		line := 1
		if i < len(lines) {
			line = lines[i]
		}
		if exempt(line, ranges) {
			continue
		}
		for _, rule := range a.rules {
			for _, v := range rule.Check(stmt) {
				v.Rule = rule.Name()
				v.Line = line
				violations = append(violations, v)
			}
		}
	}

	return violations
}

// exempt reports whether line falls inside any exemption range. Ranges are
// disjoint by construction of the directive scan, so order does not matter.
func exempt(line int, ranges []model.ExemptionRange) bool {
	for _, r := range ranges {
		if r.Contains(line) {
			return true
		}
	}
	return false
}

// AuditScript analyzes the complete raw text of one migration file.
//
// A parse failure or a malformed directive block is fatal for the file:
// no violations are produced and the error is returned, distinct from the
// "zero violations" result of a safe file. Locator misses are not fatal;
// they surface as warnings alongside whatever violations were found.
func (a *Auditor) AuditScript(sql string) ([]model.Violation, []model.LocateWarning, error) {
	stmts, err := a.parser.ParseScript(sql)
	if err != nil {
		return nil, nil, err
	}

	ranges, err := parser.ScanExemptions(sql)
	if err != nil {
		return nil, nil, err
	}

	lines, warnings := parser.Locate(sql, stmts)
	return a.Evaluate(stmts, lines, ranges), warnings, nil
}

// AuditFile analyzes one migration file on disk.
func (a *Auditor) AuditFile(path string) (model.FileReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.FileReport{File: path}, err
	}

	violations, warnings, err := a.AuditScript(string(data))
	return model.FileReport{
		File:       path,
		Violations: violations,
		Warnings:   warnings,
	}, err
}
