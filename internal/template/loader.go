package template

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// LoadAll reads every stored template from the _templates system table and
// replaces the registry contents. A row whose definition document fails to
// parse is logged and skipped; it never aborts the load.
func LoadAll(ctx context.Context, db *sql.DB, reg *Registry) error {
	rows, err := db.QueryContext(ctx,
		"SELECT kind, slug, name, data_type, definition, options FROM _templates ORDER BY kind, slug")
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	defer rows.Close()

	var defs []*TemplateDefinition
	for rows.Next() {
		var kind, slug, name, dataType string
		var defJSON, optJSON []byte
		if err := rows.Scan(&kind, &slug, &name, &dataType, &defJSON, &optJSON); err != nil {
			return fmt.Errorf("scan template row: %w", err)
		}

		fields, err := ParseFields(defJSON)
		if err != nil {
			log.Printf("WARN: skipping template %s/%s: %v", kind, slug, err)
			continue
		}
		opts, err := ParseOptions(optJSON)
		if err != nil {
			log.Printf("WARN: template %s/%s has invalid options, ignoring: %v", kind, slug, err)
			opts = Options{}
		}

		defs = append(defs, &TemplateDefinition{
			Slug:     slug,
			Name:     name,
			Kind:     kind,
			DataType: dataType,
			Options:  opts,
			Fields:   fields,
		})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate template rows: %w", err)
	}

	reg.Load(defs)
	log.Printf("Loaded %d templates into registry", len(defs))
	return nil
}

// Reload is an alias for LoadAll, called after admin mutations.
func Reload(ctx context.Context, db *sql.DB, reg *Registry) error {
	return LoadAll(ctx, db, reg)
}
