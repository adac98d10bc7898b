package auditor

import (
	"fmt"

	"sql-guard/internal/model"

	"github.com/pingcap/tidb/parser/ast"
)

// AddIndexRule detects index builds that block concurrent writes: CREATE
// INDEX without LOCK=NONE, and ALTER TABLE ... ADD INDEX without an explicit
// LOCK=NONE clause in the same statement.
type AddIndexRule struct{}

func (r *AddIndexRule) Name() string { return "add_index_blocking" }

func (r *AddIndexRule) Check(node ast.StmtNode) []model.Violation {
	switch stmt := node.(type) {
	case *ast.CreateIndexStmt:
		if stmt.KeyType == ast.IndexKeyTypeUnique {
			return nil // covered by add_unique_constraint
		}
		if stmt.LockAlg != nil && stmt.LockAlg.LockTp == ast.LockTypeNone {
			return nil
		}
		table := stmt.Table.Name.O
		index := stmt.IndexName

		return []model.Violation{{
			Level:     model.RiskLevelWarning,
			Operation: "ADD INDEX without LOCK=NONE",
			Problem: fmt.Sprintf(
				"Creating index '%s' on table '%s' without an explicit LOCK=NONE lets MySQL fall back to a "+
					"write-blocking build when the online path is unavailable, stalling INSERT/UPDATE/DELETE for the duration.",
				index, table),
			SafeAlternative: fmt.Sprintf(
				"Request the online build explicitly so the statement fails fast instead of blocking:\n"+
					"   CREATE INDEX %s ON %s (...) ALGORITHM=INPLACE LOCK=NONE;\n"+
					"If MySQL rejects it, the index cannot be built online; schedule it in a maintenance window.",
				index, table),
		}}

	case *ast.AlterTableStmt:
		table := stmt.Table.Name.O
		if alterHasLockNone(stmt) {
			return nil
		}

		var violations []model.Violation
		for _, spec := range stmt.Specs {
			if spec.Tp != ast.AlterTableAddConstraint || spec.Constraint == nil {
				continue
			}
			if spec.Constraint.Tp != ast.ConstraintIndex && spec.Constraint.Tp != ast.ConstraintKey {
				continue
			}
			index := spec.Constraint.Name

			violations = append(violations, model.Violation{
				Level:     model.RiskLevelWarning,
				Operation: "ADD INDEX without LOCK=NONE",
				Problem: fmt.Sprintf(
					"Adding index '%s' to table '%s' via ALTER TABLE without LOCK=NONE may block writes for the "+
						"duration of the build on large tables.",
					index, table),
				SafeAlternative: fmt.Sprintf(
					"Append the online-DDL clauses so a blocking build is rejected up front:\n"+
						"   ALTER TABLE %s ADD INDEX %s (...), ALGORITHM=INPLACE, LOCK=NONE;",
					table, index),
			})
		}
		return violations
	}

	return nil
}

// DropIndexRule detects index drops, which silently degrade query plans.
type DropIndexRule struct{}

func (r *DropIndexRule) Name() string { return "drop_index" }

func (r *DropIndexRule) Check(node ast.StmtNode) []model.Violation {
	switch stmt := node.(type) {
	case *ast.DropIndexStmt:
		return []model.Violation{dropIndexViolation(stmt.IndexName, stmt.Table.Name.O)}

	case *ast.AlterTableStmt:
		var violations []model.Violation
		for _, spec := range stmt.Specs {
			if spec.Tp != ast.AlterTableDropIndex {
				continue
			}
			violations = append(violations, dropIndexViolation(spec.Name, stmt.Table.Name.O))
		}
		return violations
	}

	return nil
}

func dropIndexViolation(index, table string) model.Violation {
	return model.Violation{
		Level:     model.RiskLevelWarning,
		Operation: "DROP INDEX",
		Problem: fmt.Sprintf(
			"Dropping index '%s' from table '%s' immediately changes query plans; a query that depended on it "+
				"degrades to a table scan with no warning.",
			index, table),
		SafeAlternative: fmt.Sprintf(
			"1. Make the index invisible first and watch query latency:\n"+
				"   ALTER TABLE %s ALTER INDEX %s INVISIBLE;\n"+
				"2. If nothing regresses after a full traffic cycle, drop it:\n"+
				"   DROP INDEX %s ON %s;\n"+
				"An invisible index can be restored instantly; a dropped one needs a full rebuild.",
			table, index, index, table),
	}
}

// AddUniqueConstraintRule detects unique index or constraint creation, which
// must scan the table for duplicates before completing.
type AddUniqueConstraintRule struct{}

func (r *AddUniqueConstraintRule) Name() string { return "add_unique_constraint" }

func (r *AddUniqueConstraintRule) Check(node ast.StmtNode) []model.Violation {
	switch stmt := node.(type) {
	case *ast.CreateIndexStmt:
		if stmt.KeyType != ast.IndexKeyTypeUnique {
			return nil
		}
		return []model.Violation{uniqueConstraintViolation(stmt.IndexName, stmt.Table.Name.O)}

	case *ast.AlterTableStmt:
		var violations []model.Violation
		for _, spec := range stmt.Specs {
			if spec.Tp != ast.AlterTableAddConstraint || spec.Constraint == nil {
				continue
			}
			switch spec.Constraint.Tp {
			case ast.ConstraintUniq, ast.ConstraintUniqKey, ast.ConstraintUniqIndex:
				violations = append(violations,
					uniqueConstraintViolation(spec.Constraint.Name, stmt.Table.Name.O))
			}
		}
		return violations
	}

	return nil
}

func uniqueConstraintViolation(index, table string) model.Violation {
	return model.Violation{
		Level:     model.RiskLevelWarning,
		Operation: "ADD UNIQUE constraint",
		Problem: fmt.Sprintf(
			"Adding unique index '%s' on table '%s' scans the whole table for duplicates and fails the migration "+
				"if any exist, after having blocked writes during the scan.",
			index, table),
		SafeAlternative: fmt.Sprintf(
			"1. Find and resolve duplicates before migrating:\n"+
				"   SELECT ..., COUNT(*) FROM %s GROUP BY ... HAVING COUNT(*) > 1;\n"+
				"2. Build the index online once the data is clean:\n"+
				"   CREATE UNIQUE INDEX %s ON %s (...) ALGORITHM=INPLACE LOCK=NONE;",
			table, index, table),
	}
}

// AddPrimaryKeyRule detects ALTER TABLE ... ADD PRIMARY KEY.
type AddPrimaryKeyRule struct{}

func (r *AddPrimaryKeyRule) Name() string { return "add_primary_key" }

func (r *AddPrimaryKeyRule) Check(node ast.StmtNode) []model.Violation {
	alter, ok := node.(*ast.AlterTableStmt)
	if !ok {
		return nil
	}

	var violations []model.Violation
	table := alter.Table.Name.O

	for _, spec := range alter.Specs {
		if spec.Tp != ast.AlterTableAddConstraint || spec.Constraint == nil {
			continue
		}
		if spec.Constraint.Tp != ast.ConstraintPrimaryKey {
			continue
		}

		violations = append(violations, model.Violation{
			Level:     model.RiskLevelFatal,
			Operation: "ADD PRIMARY KEY",
			Problem: fmt.Sprintf(
				"Adding a primary key to existing table '%s' rebuilds the clustered index, copying the entire table "+
					"and blocking writes for the duration.",
				table),
			SafeAlternative: fmt.Sprintf(
				"Define the primary key when the table is created. For an existing large table, use an online "+
					"schema-change tool (gh-ost, pt-online-schema-change) to rebuild '%s' without blocking writes.",
				table),
		})
	}

	return violations
}

// DropPrimaryKeyRule detects ALTER TABLE ... DROP PRIMARY KEY.
type DropPrimaryKeyRule struct{}

func (r *DropPrimaryKeyRule) Name() string { return "drop_primary_key" }

func (r *DropPrimaryKeyRule) Check(node ast.StmtNode) []model.Violation {
	alter, ok := node.(*ast.AlterTableStmt)
	if !ok {
		return nil
	}

	var violations []model.Violation
	table := alter.Table.Name.O

	for _, spec := range alter.Specs {
		if spec.Tp != ast.AlterTableDropPrimaryKey {
			continue
		}

		violations = append(violations, model.Violation{
			Level:     model.RiskLevelFatal,
			Operation: "DROP PRIMARY KEY",
			Problem: fmt.Sprintf(
				"Dropping the primary key of table '%s' rebuilds the clustered index and every secondary index, "+
					"blocking all access; replication formats that rely on the key can break afterwards.",
				table),
			SafeAlternative: fmt.Sprintf(
				"If the key must change, add the replacement in the same statement so only one rebuild occurs:\n"+
					"   ALTER TABLE %s DROP PRIMARY KEY, ADD PRIMARY KEY (...);\n"+
					"Run it through an online schema-change tool on large tables.",
				table),
		})
	}

	return violations
}

// alterHasLockNone reports whether an ALTER TABLE statement carries an
// explicit LOCK=NONE clause.
func alterHasLockNone(alter *ast.AlterTableStmt) bool {
	for _, spec := range alter.Specs {
		if spec.Tp == ast.AlterTableLock && spec.LockType == ast.LockTypeNone {
			return true
		}
	}
	return false
}
