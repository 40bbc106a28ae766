package schema

import (
	"strings"
	"unicode"

	"lattice-cms/internal/template"
)

// Table naming contract. These functions are the single source of truth for
// physical names; the hydration engine derives the same names at read time, so
// any change here is a breaking migration.

// Normalize converts a field or slug name to snake_case: camelCase humps,
// spaces, and dashes all become underscores.
func Normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	prevUnderscore := true // swallow leading separators
	for _, r := range name {
		switch {
		case r == ' ' || r == '-' || r == '_':
			if !prevUnderscore {
				b.WriteByte('_')
				prevUnderscore = true
			}
		case unicode.IsUpper(r):
			if !prevUnderscore {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevUnderscore = false
		default:
			b.WriteRune(r)
			prevUnderscore = false
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// BaseTable returns the base table name for a content type:
// collection_{slug}, global_{slug}, or block_{slug}.
func BaseTable(kind, slug string) string {
	return kind + "_" + Normalize(slug)
}

// ChildTable returns the secondary table name for a file or array-of-object
// field: {prefix}_{field}.
func ChildTable(prefix, field string) string {
	return prefix + "_" + Normalize(field)
}

// JunctionTable returns the many-to-many join table name:
// junction_{prefix}_{field}.
func JunctionTable(prefix, field string) string {
	return "junction_" + prefix + "_" + Normalize(field)
}

// OwnerKeyColumn returns the kind-specific foreign key column used by
// array/object child tables and junction tables.
func OwnerKeyColumn(kind string) string {
	switch kind {
	case template.KindGlobal:
		return "global_id"
	case template.KindBlock:
		return "block_id"
	default:
		return "collection_id"
	}
}
