package auditor

import (
	"fmt"

	"sql-guard/internal/model"

	"github.com/pingcap/tidb/parser/ast"
)

// DropColumnRule detects ALTER TABLE ... DROP COLUMN.
type DropColumnRule struct{}

func (r *DropColumnRule) Name() string { return "drop_column" }

func (r *DropColumnRule) Check(node ast.StmtNode) []model.Violation {
	alter, ok := node.(*ast.AlterTableStmt)
	if !ok {
		return nil
	}

	var violations []model.Violation
	table := alter.Table.Name.O

	for _, spec := range alter.Specs {
		if spec.Tp != ast.AlterTableDropColumn {
			continue
		}
		column := spec.OldColumnName.Name.O

		violations = append(violations, model.Violation{
			Level:     model.RiskLevelFatal,
			Operation: "DROP COLUMN",
			Problem: fmt.Sprintf(
				"Dropping column '%s' from table '%s' is irreversible and breaks any code still reading it. "+
					"A deploy race between schema and application causes immediate query failures, and the data cannot be recovered.",
				column, table),
			SafeAlternative: fmt.Sprintf(
				"1. Remove every reference to the column from application code and deploy.\n"+
					"2. Confirm nothing reads the column (slow query log, application metrics).\n"+
					"3. Drop the column in a later migration:\n"+
					"   ALTER TABLE %s DROP COLUMN %s;",
				table, column),
		})
	}

	return violations
}

// AddColumnDefaultRule detects ALTER TABLE ... ADD COLUMN with a DEFAULT value.
type AddColumnDefaultRule struct{}

func (r *AddColumnDefaultRule) Name() string { return "add_column_with_default" }

func (r *AddColumnDefaultRule) Check(node ast.StmtNode) []model.Violation {
	alter, ok := node.(*ast.AlterTableStmt)
	if !ok {
		return nil
	}

	var violations []model.Violation
	table := alter.Table.Name.O

	for _, spec := range alter.Specs {
		if spec.Tp != ast.AlterTableAddColumns {
			continue
		}
		for _, col := range spec.NewColumns {
			if !hasColumnOption(col, ast.ColumnOptionDefaultValue) {
				continue
			}
			column := col.Name.Name.O

			violations = append(violations, model.Violation{
				Level:     model.RiskLevelWarning,
				Operation: "ADD COLUMN with DEFAULT",
				Problem: fmt.Sprintf(
					"Adding column '%s' with a DEFAULT on table '%s' requires a full table rebuild on MySQL before 8.0, "+
						"holding a lock for the duration. On 8.0 it is instant only for constant defaults.",
					column, table),
				SafeAlternative: fmt.Sprintf(
					"1. Add the column without a default:\n"+
						"   ALTER TABLE %s ADD COLUMN %s %s;\n"+
						"2. Backfill existing rows in batches outside the migration.\n"+
						"3. Set the default for new rows only:\n"+
						"   ALTER TABLE %s ALTER COLUMN %s SET DEFAULT <value>;\n"+
						"On MySQL 8.0+ with a constant default, verify the ALTER reports ALGORITHM=INSTANT and keep it as is.",
					table, column, col.Tp.String(), table, column),
			})
		}
	}

	return violations
}

// AddNotNullRule detects MODIFY/CHANGE COLUMN adding a NOT NULL constraint.
type AddNotNullRule struct{}

func (r *AddNotNullRule) Name() string { return "add_not_null_constraint" }

func (r *AddNotNullRule) Check(node ast.StmtNode) []model.Violation {
	alter, ok := node.(*ast.AlterTableStmt)
	if !ok {
		return nil
	}

	var violations []model.Violation
	table := alter.Table.Name.O

	for _, spec := range alter.Specs {
		if spec.Tp != ast.AlterTableModifyColumn && spec.Tp != ast.AlterTableChangeColumn {
			continue
		}
		for _, col := range spec.NewColumns {
			if !hasColumnOption(col, ast.ColumnOptionNotNull) {
				continue
			}
			column := col.Name.Name.O

			violations = append(violations, model.Violation{
				Level:     model.RiskLevelWarning,
				Operation: "ADD NOT NULL constraint",
				Problem: fmt.Sprintf(
					"Making column '%s' NOT NULL on table '%s' fails outright if any existing row holds NULL, "+
						"and the constraint change rebuilds the column while blocking concurrent writes.",
					column, table),
				SafeAlternative: fmt.Sprintf(
					"1. Backfill NULLs first, in batches:\n"+
						"   UPDATE %s SET %s = <value> WHERE %s IS NULL;\n"+
						"2. Enforce the constraint at the application layer during the transition.\n"+
						"3. Apply the NOT NULL change once no NULLs remain.",
					table, column, column),
			})
		}
	}

	return violations
}

// ModifyColumnTypeRule detects MODIFY/CHANGE COLUMN statements, which may
// change the column type. Without schema context the old type is unknown, so
// every modify is flagged.
type ModifyColumnTypeRule struct{}

func (r *ModifyColumnTypeRule) Name() string { return "modify_column_type" }

func (r *ModifyColumnTypeRule) Check(node ast.StmtNode) []model.Violation {
	alter, ok := node.(*ast.AlterTableStmt)
	if !ok {
		return nil
	}

	var violations []model.Violation
	table := alter.Table.Name.O

	for _, spec := range alter.Specs {
		if spec.Tp != ast.AlterTableModifyColumn && spec.Tp != ast.AlterTableChangeColumn {
			continue
		}
		for _, col := range spec.NewColumns {
			column := col.Name.Name.O

			violations = append(violations, model.Violation{
				Level:     model.RiskLevelFatal,
				Operation: "ALTER COLUMN TYPE",
				Problem: fmt.Sprintf(
					"Modifying column '%s' on table '%s' to %s may require a full table copy (ALGORITHM=COPY), "+
						"blocking writes for the duration and risking silent truncation of existing values.",
					column, table, col.Tp.String()),
				SafeAlternative: fmt.Sprintf(
					"1. Add a new column with the target type:\n"+
						"   ALTER TABLE %s ADD COLUMN %s_new %s;\n"+
						"2. Dual-write from the application and backfill in batches.\n"+
						"3. Swap reads to the new column, then drop the old one in a later migration.\n"+
						"For widening changes only (e.g. INT to BIGINT is not in-place, but VARCHAR growth within the same length bytes is), "+
						"verify with ALGORITHM=INPLACE so MySQL rejects a copy instead of performing it silently.",
					table, column, col.Tp.String()),
			})
		}
	}

	return violations
}

// RenameColumnRule detects column renames via RENAME COLUMN or CHANGE COLUMN
// with differing names.
type RenameColumnRule struct{}

func (r *RenameColumnRule) Name() string { return "rename_column" }

func (r *RenameColumnRule) Check(node ast.StmtNode) []model.Violation {
	alter, ok := node.(*ast.AlterTableStmt)
	if !ok {
		return nil
	}

	var violations []model.Violation
	table := alter.Table.Name.O

	for _, spec := range alter.Specs {
		var oldName, newName string
		switch spec.Tp {
		case ast.AlterTableRenameColumn:
			oldName = spec.OldColumnName.Name.O
			newName = spec.NewColumnName.Name.O
		case ast.AlterTableChangeColumn:
			if len(spec.NewColumns) == 0 {
				continue
			}
			oldName = spec.OldColumnName.Name.O
			newName = spec.NewColumns[0].Name.Name.O
			if spec.OldColumnName.Name.L == spec.NewColumns[0].Name.Name.L {
				continue // type change only, handled by modify_column_type
			}
		default:
			continue
		}

		violations = append(violations, model.Violation{
			Level:     model.RiskLevelFatal,
			Operation: "RENAME COLUMN",
			Problem: fmt.Sprintf(
				"Renaming column '%s' to '%s' on table '%s' breaks every query using the old name the moment the migration runs; "+
					"there is no window in which both names resolve.",
				oldName, newName, table),
			SafeAlternative: fmt.Sprintf(
				"1. Add a new column '%s' and dual-write from the application.\n"+
					"2. Backfill: UPDATE %s SET %s = %s WHERE %s IS NULL;\n"+
					"3. Switch reads to '%s', stop writing '%s', and drop it in a later migration.",
				newName, table, newName, oldName, newName, newName, oldName),
		})
	}

	return violations
}

// AddAutoIncrementRule detects new or modified columns declared AUTO_INCREMENT.
type AddAutoIncrementRule struct{}

func (r *AddAutoIncrementRule) Name() string { return "add_auto_increment_column" }

func (r *AddAutoIncrementRule) Check(node ast.StmtNode) []model.Violation {
	alter, ok := node.(*ast.AlterTableStmt)
	if !ok {
		return nil
	}

	var violations []model.Violation
	table := alter.Table.Name.O

	for _, spec := range alter.Specs {
		switch spec.Tp {
		case ast.AlterTableAddColumns, ast.AlterTableModifyColumn, ast.AlterTableChangeColumn:
		default:
			continue
		}
		for _, col := range spec.NewColumns {
			if !hasColumnOption(col, ast.ColumnOptionAutoIncrement) {
				continue
			}
			column := col.Name.Name.O

			violations = append(violations, model.Violation{
				Level:     model.RiskLevelWarning,
				Operation: "ADD AUTO_INCREMENT column",
				Problem: fmt.Sprintf(
					"Adding AUTO_INCREMENT column '%s' to table '%s' rewrites the whole table to assign values to existing rows, "+
						"holding locks for the duration on large tables.",
					column, table),
				SafeAlternative: fmt.Sprintf(
					"If the table is large, create the column without AUTO_INCREMENT, backfill identifiers in batches, "+
						"then add the attribute:\n"+
						"   ALTER TABLE %s MODIFY COLUMN %s %s AUTO_INCREMENT;\n"+
						"For small or new tables this is safe as written.",
					table, column, col.Tp.String()),
			})
		}
	}

	return violations
}

// hasColumnOption reports whether a column definition carries the given option.
func hasColumnOption(col *ast.ColumnDef, tp ast.ColumnOptionType) bool {
	for _, opt := range col.Options {
		if opt.Tp == tp {
			return true
		}
	}
	return false
}
