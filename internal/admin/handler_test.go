package admin

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"

	"lattice-cms/internal/schema"
	"lattice-cms/internal/store"
	"lattice-cms/internal/template"
)

func testAdminApp(t *testing.T, defs []*template.TemplateDefinition) (*fiber.App, sqlmock.Sqlmock, *schema.TableRegistry) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	mock.MatchExpectationsInOrder(false)

	types := template.NewRegistry()
	types.Load(defs)
	tables := schema.NewTableRegistry(&schema.Schema{})
	s := &store.Store{DB: db, Dialect: store.NewDialect("sqlite")}

	app := fiber.New()
	RegisterAdminRoutes(app, NewHandler(s, types, tables, store.NewMigrator(s)))
	return app, mock, tables
}

func TestGetTemplate(t *testing.T) {
	def := &template.TemplateDefinition{Kind: template.KindCollection, Slug: "posts", Name: "Posts"}
	app, _, _ := testAdminApp(t, []*template.TemplateDefinition{def})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/_admin/templates/collection/posts", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/api/_admin/templates/collection/missing", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("missing template status = %d, want 404", resp.StatusCode)
	}
}

func TestUpsertTemplate_ValidationFailure(t *testing.T) {
	app, _, _ := testAdminApp(t, nil)

	body := strings.NewReader(`{"kind": "widget", "slug": "x"}`)
	req := httptest.NewRequest("POST", "/api/_admin/templates", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 422 {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
}

func TestCompile_AppliesAndSwapsRegistry(t *testing.T) {
	app, mock, tables := testAdminApp(t, nil)

	// An empty registry still compiles the fixed core tables.
	dialect := store.NewDialect("sqlite")
	for _, spec := range schema.CoreTables() {
		mock.ExpectQuery("SELECT name FROM sqlite_master WHERE type='table' AND name=?1").
			WithArgs(spec.Name).
			WillReturnRows(sqlmock.NewRows([]string{"name"}))
		mock.ExpectExec(dialect.TableDeclaration(spec)).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec(dialect.IndexSQL("users", "email", true)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	resp, err := app.Test(httptest.NewRequest("POST", "/api/_admin/compile", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var result struct {
		Data struct {
			PassID string   `json:"pass_id"`
			Tables []string `json:"tables"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Data.PassID == "" {
		t.Error("compile response missing pass id")
	}
	if len(result.Data.Tables) != 2 {
		t.Errorf("tables = %v", result.Data.Tables)
	}
	if !tables.Has("files") || !tables.Has("users") {
		t.Error("table registry not swapped after compile")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
