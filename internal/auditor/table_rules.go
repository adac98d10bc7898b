package auditor

import (
	"fmt"

	"sql-guard/internal/model"

	"github.com/pingcap/tidb/parser/ast"
)

// RenameTableRule detects RENAME TABLE and ALTER TABLE ... RENAME.
type RenameTableRule struct{}

func (r *RenameTableRule) Name() string { return "rename_table" }

func (r *RenameTableRule) Check(node ast.StmtNode) []model.Violation {
	switch stmt := node.(type) {
	case *ast.RenameTableStmt:
		var violations []model.Violation
		for _, pair := range stmt.TableToTables {
			violations = append(violations,
				renameTableViolation(pair.OldTable.Name.O, pair.NewTable.Name.O))
		}
		return violations

	case *ast.AlterTableStmt:
		var violations []model.Violation
		for _, spec := range stmt.Specs {
			if spec.Tp != ast.AlterTableRenameTable {
				continue
			}
			violations = append(violations,
				renameTableViolation(stmt.Table.Name.O, spec.NewTable.Name.O))
		}
		return violations
	}

	return nil
}

func renameTableViolation(oldName, newName string) model.Violation {
	return model.Violation{
		Level:     model.RiskLevelFatal,
		Operation: "RENAME TABLE",
		Problem: fmt.Sprintf(
			"Renaming table '%s' to '%s' breaks every query using the old name the instant the migration runs; "+
				"application servers deployed against the old schema fail until restarted.",
			oldName, newName),
		SafeAlternative: fmt.Sprintf(
			"1. Create the new table and dual-write from the application, or expose the old name as a view:\n"+
				"   RENAME TABLE %s TO %s;\n"+
				"   CREATE VIEW %s AS SELECT * FROM %s;\n"+
				"2. Migrate readers to '%s', then drop the view in a later migration.",
			oldName, newName, oldName, newName, newName),
	}
}

// TruncateTableRule detects TRUNCATE TABLE.
type TruncateTableRule struct{}

func (r *TruncateTableRule) Name() string { return "truncate_table" }

func (r *TruncateTableRule) Check(node ast.StmtNode) []model.Violation {
	stmt, ok := node.(*ast.TruncateTableStmt)
	if !ok {
		return nil
	}
	table := stmt.Table.Name.O

	return []model.Violation{{
		Level:     model.RiskLevelFatal,
		Operation: "TRUNCATE TABLE",
		Problem: fmt.Sprintf(
			"TRUNCATE TABLE %s deletes every row irreversibly, commits implicitly (it cannot be rolled back even "+
				"inside a transaction), and resets AUTO_INCREMENT.",
			table),
		SafeAlternative: fmt.Sprintf(
			"1. Archive the data first if any of it might be needed:\n"+
				"   CREATE TABLE %s_archive AS SELECT * FROM %s;\n"+
				"2. If rows must go, prefer batched deletes that replicate row-by-row and can be stopped:\n"+
				"   DELETE FROM %s WHERE ... LIMIT 10000;\n"+
				"Truncating in a migration is almost never intended; double-check the target table.",
			table, table, table),
	}}
}

// DefaultRules returns every built-in rule in registration order. The order
// is stable across runs; configuration can disable rules by name but cannot
// reorder them.
func DefaultRules() []model.Rule {
	return []model.Rule{
		&AddAutoIncrementRule{},
		&AddColumnDefaultRule{},
		&AddIndexRule{},
		&AddNotNullRule{},
		&AddPrimaryKeyRule{},
		&AddUniqueConstraintRule{},
		&DropColumnRule{},
		&DropIndexRule{},
		&DropPrimaryKeyRule{},
		&ModifyColumnTypeRule{},
		&RenameColumnRule{},
		&RenameTableRule{},
		&TruncateTableRule{},
	}
}

// AllRuleNames returns the names of every built-in rule, for configuration
// validation and help text.
func AllRuleNames() []string {
	rules := DefaultRules()
	names := make([]string, len(rules))
	for i, rule := range rules {
		names[i] = rule.Name()
	}
	return names
}
