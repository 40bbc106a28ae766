package admin

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"lattice-cms/internal/schema"
	"lattice-cms/internal/store"
	"lattice-cms/internal/template"
)

type Handler struct {
	store    *store.Store
	types    *template.Registry
	tables   *schema.TableRegistry
	migrator *store.Migrator
}

func NewHandler(s *store.Store, types *template.Registry, tables *schema.TableRegistry, mig *store.Migrator) *Handler {
	return &Handler{store: s, types: types, tables: tables, migrator: mig}
}

func RegisterAdminRoutes(app *fiber.App, h *Handler) {
	admin := app.Group("/api/_admin")

	admin.Get("/templates", h.ListTemplates)
	admin.Get("/templates/:kind/:slug", h.GetTemplate)
	admin.Post("/templates", h.UpsertTemplate)
	admin.Delete("/templates/:kind/:slug", h.DeleteTemplate)

	admin.Post("/compile", h.Compile)
	admin.Get("/schema", h.ShowSchema)
}

func (h *Handler) ListTemplates(c *fiber.Ctx) error {
	rows, err := store.QueryRows(c.Context(), h.store.DB,
		"SELECT kind, slug, name, data_type, created_at, updated_at FROM _templates ORDER BY kind, slug")
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return c.JSON(fiber.Map{"data": rows})
}

func (h *Handler) GetTemplate(c *fiber.Ctx) error {
	kind, slug := c.Params("kind"), c.Params("slug")
	def := h.types.Get(kind, slug)
	if def == nil {
		return c.Status(404).JSON(fiber.Map{"error": fiber.Map{"code": "NOT_FOUND", "message": "Template not found: " + kind + "/" + slug}})
	}
	return c.JSON(fiber.Map{"data": def})
}

// UpsertTemplate registers or replaces one template definition and reloads
// the type registry. Physical tables do not change until the next compile.
func (h *Handler) UpsertTemplate(c *fiber.Ctx) error {
	var def template.TemplateDefinition
	if err := c.BodyParser(&def); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": fiber.Map{"code": "INVALID_PAYLOAD", "message": "Invalid JSON body"}})
	}

	if err := validateTemplate(&def); err != nil {
		return c.Status(422).JSON(fiber.Map{"error": fiber.Map{"code": "VALIDATION_FAILED", "message": err.Error()}})
	}

	defJSON, err := template.EncodeFields(def.Fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	optJSON, err := encodeOptions(def.Options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}

	pb := h.store.Dialect.NewParamBuilder()
	stmt := fmt.Sprintf(`INSERT INTO _templates (kind, slug, name, data_type, definition, options)
		VALUES (%s, %s, %s, %s, %s, %s)
		ON CONFLICT (kind, slug) DO UPDATE SET
			name = excluded.name,
			data_type = excluded.data_type,
			definition = excluded.definition,
			options = excluded.options,
			updated_at = %s`,
		pb.Add(def.Kind), pb.Add(def.Slug), pb.Add(def.Name), pb.Add(def.DataType),
		pb.Add(string(defJSON)), pb.Add(string(optJSON)), h.store.Dialect.NowExpr())

	if _, err := store.Exec(c.Context(), h.store.DB, stmt, pb.Params()...); err != nil {
		return fmt.Errorf("upsert template %s/%s: %w", def.Kind, def.Slug, err)
	}

	if err := template.Reload(c.Context(), h.store.DB, h.types); err != nil {
		return fmt.Errorf("reload registry: %w", err)
	}

	return c.Status(201).JSON(fiber.Map{"data": def})
}

func (h *Handler) DeleteTemplate(c *fiber.Ctx) error {
	kind, slug := c.Params("kind"), c.Params("slug")
	if h.types.Get(kind, slug) == nil {
		return c.Status(404).JSON(fiber.Map{"error": fiber.Map{"code": "NOT_FOUND", "message": "Template not found: " + kind + "/" + slug}})
	}

	pb := h.store.Dialect.NewParamBuilder()
	stmt := fmt.Sprintf("DELETE FROM _templates WHERE kind = %s AND slug = %s", pb.Add(kind), pb.Add(slug))
	if _, err := store.Exec(c.Context(), h.store.DB, stmt, pb.Params()...); err != nil {
		return fmt.Errorf("delete template %s/%s: %w", kind, slug, err)
	}

	if err := template.Reload(c.Context(), h.store.DB, h.types); err != nil {
		return fmt.Errorf("reload registry: %w", err)
	}

	// Physical tables are kept; dropping data is a manual operation.
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": kind + "/" + slug}})
}

// Compile runs a full schema pass over every registered template, applies it
// to the database, and swaps the table registry.
func (h *Handler) Compile(c *fiber.Ctx) error {
	compiler := schema.NewCompiler(h.types)
	sch, err := compiler.Compile()
	if err != nil {
		return c.Status(422).JSON(fiber.Map{"error": fiber.Map{"code": "COMPILE_FAILED", "message": err.Error()}})
	}

	if err := h.migrator.Apply(c.Context(), sch); err != nil {
		return fmt.Errorf("apply schema pass %s: %w", sch.PassID, err)
	}

	h.tables.Load(sch)

	tableNames := make([]string, len(sch.Tables))
	for i, t := range sch.Tables {
		tableNames[i] = t.Name
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"pass_id": sch.PassID,
			"tables":  tableNames,
			"relations": fiber.Map{
				"standard":  sch.Relations.Standard,
				"files":     sch.Relations.Files,
				"junctions": sch.Relations.Junctions,
			},
		},
	})
}

// ShowSchema returns the current compiled schema without applying anything.
func (h *Handler) ShowSchema(c *fiber.Ctx) error {
	compiler := schema.NewCompiler(h.types)
	sch, err := compiler.Compile()
	if err != nil {
		return c.Status(422).JSON(fiber.Map{"error": fiber.Map{"code": "COMPILE_FAILED", "message": err.Error()}})
	}
	return c.JSON(fiber.Map{"data": sch})
}
