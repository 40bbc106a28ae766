package store

import (
	"context"
	"fmt"
	"log"

	"lattice-cms/internal/schema"
)

// Migrator executes a compiled schema against the database: creates missing
// tables, adds missing columns, and ensures indexes. It never drops anything;
// removal is a manual operation.
type Migrator struct {
	store *Store
}

func NewMigrator(store *Store) *Migrator {
	return &Migrator{store: store}
}

// Apply brings the database up to date with a full compile pass.
func (m *Migrator) Apply(ctx context.Context, sch *schema.Schema) error {
	for i := range sch.Tables {
		if err := m.MigrateTable(ctx, &sch.Tables[i]); err != nil {
			return err
		}
	}
	log.Printf("Migration for pass %s applied (%d tables)", sch.PassID, len(sch.Tables))
	return nil
}

// MigrateTable ensures one physical table matches its compiled spec. Creates
// the table if it doesn't exist, or adds missing columns.
func (m *Migrator) MigrateTable(ctx context.Context, t *schema.TableSpec) error {
	exists, err := m.store.Dialect.TableExists(ctx, m.store.DB, t.Name)
	if err != nil {
		return fmt.Errorf("check table exists: %w", err)
	}

	if !exists {
		if err := m.createTable(ctx, t); err != nil {
			return err
		}
	} else if err := m.alterTable(ctx, t); err != nil {
		return err
	}

	return m.createIndexes(ctx, t)
}

func (m *Migrator) createTable(ctx context.Context, t *schema.TableSpec) error {
	ddl := m.store.Dialect.TableDeclaration(*t)
	if _, err := m.store.DB.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", t.Name, err)
	}
	return nil
}

func (m *Migrator) alterTable(ctx context.Context, t *schema.TableSpec) error {
	existing, err := m.store.Dialect.GetColumns(ctx, m.store.DB, t.Name)
	if err != nil {
		return fmt.Errorf("get columns for %s: %w", t.Name, err)
	}

	for _, col := range t.Columns {
		if _, ok := existing[col.Name]; ok {
			continue
		}
		// ADD COLUMN cannot carry PRIMARY KEY or UNIQUE; uniqueness for new
		// columns comes from createIndexes.
		add := col
		add.PrimaryKey = false
		add.Unique = false
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", t.Name, m.store.Dialect.ColumnDef(add))
		if _, err := m.store.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("add column %s.%s: %w", t.Name, col.Name, err)
		}
	}
	return nil
}

func (m *Migrator) createIndexes(ctx context.Context, t *schema.TableSpec) error {
	for _, col := range t.Columns {
		var stmt string
		switch {
		case col.Unique && !col.PrimaryKey:
			stmt = m.store.Dialect.IndexSQL(t.Name, col.Name, true)
		case isForeignKeyColumn(t, col.Name):
			stmt = m.store.Dialect.IndexSQL(t.Name, col.Name, false)
		default:
			continue
		}
		if _, err := m.store.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create index on %s.%s: %w", t.Name, col.Name, err)
		}
	}
	return nil
}

// isForeignKeyColumn reports whether a column on a relation or junction table
// is one the hydration engine filters by, and therefore worth indexing.
func isForeignKeyColumn(t *schema.TableSpec, col string) bool {
	if t.OwnerType != schema.OwnerRelation && t.OwnerType != schema.OwnerJunction {
		return false
	}
	switch col {
	case "parent_id", "target_id", "collection_id", "global_id", "block_id":
		return true
	}
	return false
}
