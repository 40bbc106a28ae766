package schema

import "lattice-cms/internal/template"

// CoreColumns returns the auto-injected columns for a template's data type.
// These precede author-declared columns on every base table.
func CoreColumns(dataType string) []ColumnSpec {
	cols := []ColumnSpec{
		{Name: "id", Kind: "uuid", PrimaryKey: true},
	}

	switch dataType {
	case template.DataRepeatable, template.DataRelational:
		cols = append(cols,
			ColumnSpec{Name: "title", Kind: "text"},
			ColumnSpec{Name: "slug", Kind: "text", Unique: true},
			ColumnSpec{Name: "status", Kind: "text", Default: "draft"},
			ColumnSpec{Name: "sort", Kind: "integer", Default: 0},
			ColumnSpec{Name: "author", Kind: "text"},
		)
		if dataType == template.DataRelational {
			cols = append(cols, ColumnSpec{Name: "parent_id", Kind: "uuid"})
		}
	}

	cols = append(cols,
		ColumnSpec{Name: "created_at", Kind: "timestamp"},
		ColumnSpec{Name: "updated_at", Kind: "timestamp"},
	)
	return cols
}

// CoreTables returns the fixed tables every deployment carries regardless of
// registered templates. File relation rows point into files by file_id.
func CoreTables() []TableSpec {
	return []TableSpec{
		{
			Name:      "files",
			OwnerType: OwnerCore,
			Columns: []ColumnSpec{
				{Name: "id", Kind: "uuid", PrimaryKey: true},
				{Name: "filename", Kind: "text", NotNull: true},
				{Name: "path", Kind: "text", NotNull: true},
				{Name: "mime_type", Kind: "text"},
				{Name: "size", Kind: "integer"},
				{Name: "alt", Kind: "text"},
				{Name: "created_at", Kind: "timestamp"},
				{Name: "updated_at", Kind: "timestamp"},
			},
		},
		{
			Name:      "users",
			OwnerType: OwnerCore,
			Columns: []ColumnSpec{
				{Name: "id", Kind: "uuid", PrimaryKey: true},
				{Name: "email", Kind: "text", NotNull: true, Unique: true},
				{Name: "name", Kind: "text"},
				{Name: "created_at", Kind: "timestamp"},
				{Name: "updated_at", Kind: "timestamp"},
			},
		},
	}
}
