package schema

import (
	"fmt"

	"lattice-cms/internal/template"
)

// ColumnSpec is the dialect-independent description of one column. The
// dialect adapter translates Kind into a native type.
type ColumnSpec struct {
	Name       string
	Kind       string // text, integer, boolean, date, json, uuid, timestamp
	PrimaryKey bool
	NotNull    bool
	Unique     bool
	Default    any
}

// TableSpec is one physical table: ordered columns under a deterministic name.
type TableSpec struct {
	Name      string
	OwnerType string
	Columns   []ColumnSpec
}

// ColumnNames returns the column names in declaration order.
func (t *TableSpec) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn returns true if the table declares the named column.
func (t *TableSpec) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// CompileError is fatal: it aborts the whole compile pass and propagates to
// the caller of the compiler.
type CompileError struct {
	Template string
	Field    string
	Reason   string
}

func (e *CompileError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("compile %s: field %s: %s", e.Template, e.Field, e.Reason)
	}
	return fmt.Sprintf("compile %s: %s", e.Template, e.Reason)
}

type tableGenerator struct {
	meta *Metadata
	kind string // owner kind of the root template, fixed through recursion
	slug string
}

// GenerateTables compiles one template definition into its base table plus
// every secondary table its field tree spawns (file relation tables,
// array-of-object child tables, many-to-many junctions), recursively.
func GenerateTables(def *template.TemplateDefinition, meta *Metadata) ([]TableSpec, error) {
	if !template.ValidKind(def.Kind) {
		return nil, &CompileError{Template: def.Slug, Reason: fmt.Sprintf("unknown content kind %q", def.Kind)}
	}
	if def.DataType != "" && !template.ValidDataType(def.DataType) {
		return nil, &CompileError{Template: def.Slug, Reason: fmt.Sprintf("unknown data type %q", def.DataType)}
	}
	if Normalize(def.Slug) == "" {
		return nil, &CompileError{Template: def.Slug, Reason: "slug normalizes to empty name"}
	}

	g := &tableGenerator{meta: meta, kind: def.Kind, slug: def.Slug}

	base := TableSpec{
		Name:      BaseTable(def.Kind, def.Slug),
		OwnerType: def.Kind,
		Columns:   CoreColumns(def.DataType),
	}

	var secondary []TableSpec
	if err := g.generateFields(&base, def.Fields, &secondary); err != nil {
		return nil, err
	}

	tables := append([]TableSpec{base}, secondary...)
	for _, t := range tables {
		if !meta.RecordTable(TableMetadata{TableName: t.Name, OwnerType: t.OwnerType, FieldNames: t.ColumnNames()}) {
			return nil, &CompileError{Template: def.Slug, Reason: fmt.Sprintf("duplicate table name %s", t.Name)}
		}
	}
	return tables, nil
}

// generateFields applies the per-field dispatch to every field in sorted
// order, adding scalar columns to owner and appending secondary tables to out.
// Array-of-object items recurse through here with the child table as owner.
func (g *tableGenerator) generateFields(owner *TableSpec, fields map[string]*template.FieldDefinition, out *[]TableSpec) error {
	for _, name := range template.SortedFieldNames(fields) {
		f := fields[name]
		col := Normalize(name)
		if col == "" {
			return &CompileError{Template: g.slug, Field: name, Reason: "field name normalizes to empty"}
		}
		if owner.HasColumn(col) {
			return &CompileError{Template: g.slug, Field: name, Reason: fmt.Sprintf("duplicate column %s on %s", col, owner.Name)}
		}

		switch {
		case f.Type == template.TypeFile:
			// No column on the owner: multiplicity is decided at hydration
			// time, so single vs multiple never needs a migration.
			*out = append(*out, g.fileTable(owner.Name, name))
			g.meta.RecordRelation(RelationRecord{
				SourceTable:      owner.Name,
				FieldName:        col,
				Kind:             RelFile,
				TargetTable:      "files",
				ForeignKeyColumn: "parent_id",
			})

		case f.IsArrayOfObjects():
			child := TableSpec{
				Name:      ChildTable(owner.Name, name),
				OwnerType: OwnerRelation,
				Columns:   g.childCoreColumns(),
			}
			if err := g.generateFields(&child, f.Items.Properties, out); err != nil {
				return err
			}
			*out = append(*out, child)
			g.meta.RecordRelation(RelationRecord{
				SourceTable:      owner.Name,
				FieldName:        col,
				Kind:             RelStandard,
				TargetTable:      child.Name,
				ForeignKeyColumn: OwnerKeyColumn(g.kind),
			})

		case f.IsManyToMany():
			*out = append(*out, g.junctionTable(owner.Name, name))
			targetKind, targetSlug := f.Relation.TargetKind()
			g.meta.RecordRelation(RelationRecord{
				SourceTable:      owner.Name,
				FieldName:        col,
				Kind:             RelManyToMany,
				TargetTable:      BaseTable(targetKind, targetSlug),
				ForeignKeyColumn: "target_id",
			})

		case f.Type == template.TypeRelation:
			// one-to-one / one-to-many: scalar column holding the target id.
			owner.Columns = append(owner.Columns, ColumnSpec{
				Name:    col,
				Kind:    "uuid",
				NotNull: f.Required,
			})
			targetKind, targetSlug := f.Relation.TargetKind()
			g.meta.RecordRelation(RelationRecord{
				SourceTable:      owner.Name,
				FieldName:        col,
				Kind:             RelStandard,
				TargetTable:      BaseTable(targetKind, targetSlug),
				ForeignKeyColumn: col,
			})

		case f.IsSimpleArray():
			owner.Columns = append(owner.Columns, ColumnSpec{Name: col, Kind: "json", NotNull: f.Required})

		default:
			// Scalar-like kinds, plus anything unrecognized: a plain column.
			// Unknown types degrade to text instead of failing the compile.
			owner.Columns = append(owner.Columns, ColumnSpec{
				Name:    col,
				Kind:    f.ColumnKind(),
				NotNull: f.Required,
				Default: f.Default,
			})
		}
	}
	return nil
}

// fileTable builds the generic file relation table for a file field. The
// (parent_id, parent_type) pair is shared across all content kinds.
func (g *tableGenerator) fileTable(prefix, field string) TableSpec {
	return TableSpec{
		Name:      ChildTable(prefix, field),
		OwnerType: OwnerRelation,
		Columns: []ColumnSpec{
			{Name: "id", Kind: "uuid", PrimaryKey: true},
			{Name: "parent_id", Kind: "uuid", NotNull: true},
			{Name: "parent_type", Kind: "text", NotNull: true},
			{Name: "file_id", Kind: "uuid", NotNull: true},
			{Name: "sort", Kind: "integer", Default: 0},
			{Name: "alt_override", Kind: "text"},
			{Name: "created_at", Kind: "timestamp"},
		},
	}
}

// junctionTable builds the join table for a many-to-many relation field.
func (g *tableGenerator) junctionTable(prefix, field string) TableSpec {
	return TableSpec{
		Name:      JunctionTable(prefix, field),
		OwnerType: OwnerJunction,
		Columns: []ColumnSpec{
			{Name: "id", Kind: "uuid", PrimaryKey: true},
			{Name: OwnerKeyColumn(g.kind), Kind: "uuid", NotNull: true},
			{Name: "target_id", Kind: "uuid", NotNull: true},
			{Name: "created_at", Kind: "timestamp"},
			{Name: "updated_at", Kind: "timestamp"},
		},
	}
}

// childCoreColumns returns the fixed columns every array-of-object child
// table carries; the foreign key column name is owner-kind specific.
func (g *tableGenerator) childCoreColumns() []ColumnSpec {
	return []ColumnSpec{
		{Name: "id", Kind: "uuid", PrimaryKey: true},
		{Name: OwnerKeyColumn(g.kind), Kind: "uuid", NotNull: true},
		{Name: "sort", Kind: "integer", Default: 0},
		{Name: "created_at", Kind: "timestamp"},
		{Name: "updated_at", Kind: "timestamp"},
	}
}
