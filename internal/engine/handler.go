package engine

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"lattice-cms/internal/hydrate"
	"lattice-cms/internal/schema"
	"lattice-cms/internal/store"
	"lattice-cms/internal/template"
)

// Handler serves hydrated content. All reads go through the hydration
// engine; rows in a listing hydrate one at a time to bound query pressure on
// the pool.
type Handler struct {
	store    *store.Store
	types    *template.Registry
	tables   *schema.TableRegistry
	hydrator *hydrate.Hydrator
	maxDepth int
}

// NewHandler wires a content handler. maxDepth bounds relation recursion per
// request; zero means the hydration default.
func NewHandler(s *store.Store, types *template.Registry, tables *schema.TableRegistry, maxDepth int) *Handler {
	return &Handler{
		store:    s,
		types:    types,
		tables:   tables,
		hydrator: hydrate.New(s.DB, s.Dialect, types, tables),
		maxDepth: maxDepth,
	}
}

// List handles GET /api/:kind/:slug
func (h *Handler) List(c *fiber.Ctx) error {
	def, err := h.resolveType(c)
	if err != nil {
		return err
	}

	baseTable, ok := h.tables.Lookup(schema.BaseTable(def.Kind, def.Slug))
	if !ok {
		// Template registered but never compiled: nothing physical to read.
		return c.JSON(fiber.Map{
			"data": []map[string]any{},
			"meta": fiber.Map{"page": 1, "per_page": 0, "total": 0},
		})
	}

	plan, err := ParseQueryParams(c, def, baseTable)
	if err != nil {
		return err
	}

	qr := BuildSelectSQL(plan, h.store.Dialect)
	rows, err := store.QueryRows(c.Context(), h.store.DB, qr.SQL, qr.Params...)
	if err != nil {
		return fmt.Errorf("list %s/%s: %w", def.Kind, def.Slug, err)
	}

	cr := BuildCountSQL(plan, h.store.Dialect)
	countRow, err := store.QueryRow(c.Context(), h.store.DB, cr.SQL, cr.Params...)
	if err != nil {
		return fmt.Errorf("count %s/%s: %w", def.Kind, def.Slug, err)
	}

	opts := hydrate.Options{LoadFullObjects: plan.Full, MaxDepth: h.maxDepth}
	for _, row := range rows {
		h.hydrator.HydrateRow(c.Context(), row, def, opts)
	}

	if rows == nil {
		rows = []map[string]any{}
	}

	return c.JSON(fiber.Map{
		"data": rows,
		"meta": fiber.Map{
			"page":     plan.Page,
			"per_page": plan.PerPage,
			"total":    countRow["count"],
		},
	})
}

// GetByID handles GET /api/:kind/:slug/:id
func (h *Handler) GetByID(c *fiber.Ctx) error {
	def, err := h.resolveType(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	tableName := schema.BaseTable(def.Kind, def.Slug)
	table, ok := h.tables.Lookup(tableName)
	if !ok {
		return NotFoundError(def.Slug, id)
	}

	pb := h.store.Dialect.NewParamBuilder()
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = %s",
		joinColumns(table), tableName, pb.Add(id))
	row, err := store.QueryRow(c.Context(), h.store.DB, query, pb.Params()...)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotFoundError(def.Slug, id)
		}
		return fmt.Errorf("get %s/%s/%s: %w", def.Kind, def.Slug, id, err)
	}

	full := c.QueryBool("full")
	h.hydrator.HydrateRow(c.Context(), row, def, hydrate.Options{LoadFullObjects: full, MaxDepth: h.maxDepth})

	return c.JSON(fiber.Map{"data": row})
}

// resolveType resolves the :kind/:slug route params against the type
// registry. Always returns a non-nil error when the template is unknown.
func (h *Handler) resolveType(c *fiber.Ctx) (*template.TemplateDefinition, error) {
	kind := c.Params("kind")
	slug := c.Params("slug")
	if !template.ValidKind(kind) {
		return nil, UnknownTypeError("content kind", kind)
	}
	def := h.types.Get(kind, slug)
	if def == nil {
		return nil, UnknownTypeError(kind, slug)
	}
	return def, nil
}

func joinColumns(t *schema.TableSpec) string {
	names := t.ColumnNames()
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
