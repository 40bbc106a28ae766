package hydrate

import (
	"context"
	"errors"
	"fmt"

	"lattice-cms/internal/schema"
	"lattice-cms/internal/store"
	"lattice-cms/internal/template"
)

// loadArrayField resolves an array-of-object field from its child table,
// ordered by sort, then recursively hydrates each item row with the item's
// own properties and the child table as the new prefix. That recursion is
// what resolves files, arrays, and relations nested inside array items.
func (h *Hydrator) loadArrayField(ctx context.Context, col, tablePrefix, kind string, rowID any, f *template.FieldDefinition, opts Options, st *visitState) (any, error) {
	table := schema.ChildTable(tablePrefix, col)
	if !h.tables.Has(table) {
		return []any{}, nil
	}
	if st.depth >= opts.maxDepth() {
		return []any{}, nil
	}

	fk := schema.OwnerKeyColumn(kind)
	pb := h.dialect.NewParamBuilder()
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = %s ORDER BY sort ASC", table, fk, pb.Add(rowID))
	rows, err := store.QueryRows(ctx, h.db, query, pb.Params()...)
	if err != nil {
		if errors.Is(h.dialect.MapError(err), store.ErrNoTable) {
			return []any{}, nil
		}
		return []any{}, fmt.Errorf("%w: %s: %v", ErrMissingTable, table, err)
	}

	var props map[string]*template.FieldDefinition
	if f.Items != nil {
		props = f.Items.Properties
	}

	items := make([]any, 0, len(rows))
	for _, item := range rows {
		h.hydrate(ctx, item, props, table, kind, opts, st.deeper())
		items = append(items, item)
	}
	return items, nil
}
