package hydrate

import (
	"context"
	"errors"
	"fmt"

	"lattice-cms/internal/schema"
	"lattice-cms/internal/store"
	"lattice-cms/internal/template"
)

// resolveRelation replaces a one-to-one / one-to-many relation field's stored
// target id with the fully hydrated target object, or nil when the id does
// not resolve. Repeat visits and depth overruns return the raw id unchanged
// rather than recursing.
func (h *Hydrator) resolveRelation(ctx context.Context, value any, f *template.FieldDefinition, opts Options, st *visitState) (any, error) {
	id := stringID(value)
	if id == "" {
		return nil, nil
	}
	if f.Relation == nil {
		return nil, nil
	}

	targetKind, targetSlug := f.Relation.TargetKind()
	def := h.types.Get(targetKind, targetSlug)
	if def == nil {
		return nil, fmt.Errorf("%w: no template %s/%s", ErrUnresolvedTarget, targetKind, targetSlug)
	}

	targetTable := schema.BaseTable(targetKind, targetSlug)
	if st.depth >= opts.maxDepth() || st.visited.enter(targetTable, id) {
		return value, nil
	}

	row, err := h.fetchTargetRow(ctx, targetTable, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	h.hydrate(ctx, row, def.Fields, targetTable, targetKind, opts, st.deeper())
	h.applyComputed(row, def.Options.Computed)
	return row, nil
}

// loadManyToMany joins the junction table against the target base table and
// hydrates every joined target. The result order carries no contract.
func (h *Hydrator) loadManyToMany(ctx context.Context, col, tablePrefix, kind string, rowID any, f *template.FieldDefinition, opts Options, st *visitState) (any, error) {
	junction := schema.JunctionTable(tablePrefix, col)
	if !h.tables.Has(junction) {
		return []any{}, nil
	}
	if st.depth >= opts.maxDepth() {
		return []any{}, nil
	}

	targetKind, targetSlug := f.Relation.TargetKind()
	def := h.types.Get(targetKind, targetSlug)
	if def == nil {
		return []any{}, fmt.Errorf("%w: no template %s/%s", ErrUnresolvedTarget, targetKind, targetSlug)
	}
	targetTable := schema.BaseTable(targetKind, targetSlug)
	if !h.tables.Has(targetTable) {
		return []any{}, nil
	}

	pb := h.dialect.NewParamBuilder()
	query := fmt.Sprintf(
		"SELECT t.* FROM %s t JOIN %s j ON j.target_id = t.id WHERE j.%s = %s",
		targetTable, junction, schema.OwnerKeyColumn(kind), pb.Add(rowID),
	)
	rows, err := store.QueryRows(ctx, h.db, query, pb.Params()...)
	if err != nil {
		if errors.Is(h.dialect.MapError(err), store.ErrNoTable) {
			return []any{}, nil
		}
		return []any{}, fmt.Errorf("%w: %s: %v", ErrMissingTable, junction, err)
	}

	targets := make([]any, 0, len(rows))
	for _, row := range rows {
		if st.visited.enter(targetTable, row["id"]) {
			targets = append(targets, row)
			continue
		}
		h.hydrate(ctx, row, def.Fields, targetTable, targetKind, opts, st.deeper())
		h.applyComputed(row, def.Options.Computed)
		targets = append(targets, row)
	}
	return targets, nil
}

// fetchTargetRow loads one row by primary key.
func (h *Hydrator) fetchTargetRow(ctx context.Context, table, id string) (map[string]any, error) {
	pb := h.dialect.NewParamBuilder()
	query := fmt.Sprintf("SELECT * FROM %s WHERE id = %s", table, pb.Add(id))
	row, err := store.QueryRow(ctx, h.db, query, pb.Params()...)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("fetch %s %s: %w", table, id, err)
	}
	return row, nil
}
