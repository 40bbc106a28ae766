package hydrate

import (
	"context"
	"errors"
	"fmt"

	"lattice-cms/internal/schema"
	"lattice-cms/internal/store"
	"lattice-cms/internal/template"
)

// loadFileField resolves a file field from its {prefix}_{field} relation
// table, ordered by sort. A missing table yields the field's empty value, not
// an error: multiplicity is declared per template, so a single file field
// hydrates to one id/object or "", a multiple one to an ordered slice.
func (h *Hydrator) loadFileField(ctx context.Context, col, tablePrefix, kind string, rowID any, f *template.FieldDefinition, opts Options) (any, error) {
	table := schema.ChildTable(tablePrefix, col)
	if !h.tables.Has(table) {
		return emptyFileValue(f), nil
	}

	pb := h.dialect.NewParamBuilder()
	query := fmt.Sprintf(
		"SELECT file_id FROM %s WHERE parent_id = %s AND parent_type = %s ORDER BY sort ASC",
		table, pb.Add(rowID), pb.Add(kind),
	)
	rows, err := store.QueryRows(ctx, h.db, query, pb.Params()...)
	if err != nil {
		if errors.Is(h.dialect.MapError(err), store.ErrNoTable) {
			return emptyFileValue(f), nil
		}
		return emptyFileValue(f), fmt.Errorf("%w: %s: %v", ErrMissingTable, table, err)
	}

	ids := make([]any, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r["file_id"])
	}

	multiple := f.File != nil && f.File.Multiple

	if !opts.LoadFullObjects {
		if multiple {
			return ids, nil
		}
		if len(ids) == 0 {
			return "", nil
		}
		return ids[0], nil
	}

	records, err := h.fetchFileRecords(ctx, ids)
	if err != nil {
		return emptyFileValue(f), err
	}
	if multiple {
		return records, nil
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// fetchFileRecords loads full file rows for the given ids, preserving the
// caller's order. Ids with no matching file row are dropped.
func (h *Hydrator) fetchFileRecords(ctx context.Context, ids []any) ([]any, error) {
	if len(ids) == 0 {
		return []any{}, nil
	}

	pb := h.dialect.NewParamBuilder()
	query := fmt.Sprintf("SELECT * FROM files WHERE %s", h.dialect.InExpr("id", pb, ids))
	rows, err := store.QueryRows(ctx, h.db, query, pb.Params()...)
	if err != nil {
		return nil, fmt.Errorf("fetch file records: %w", err)
	}

	byID := make(map[string]map[string]any, len(rows))
	for _, r := range rows {
		byID[stringID(r["id"])] = r
	}

	ordered := make([]any, 0, len(ids))
	for _, id := range ids {
		if rec, ok := byID[stringID(id)]; ok {
			ordered = append(ordered, rec)
		}
	}
	return ordered, nil
}

// emptyFileValue returns the multiplicity-appropriate empty value.
func emptyFileValue(f *template.FieldDefinition) any {
	if f.File != nil && f.File.Multiple {
		return []any{}
	}
	return ""
}
