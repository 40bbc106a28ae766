package engine

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"

	"lattice-cms/internal/schema"
	"lattice-cms/internal/store"
	"lattice-cms/internal/template"
)

func testApp(t *testing.T, defs []*template.TemplateDefinition, compiled bool) (*fiber.App, sqlmock.Sqlmock) {
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
	if compiled {
		sch, err := schema.NewCompiler(types).Compile()
		if err != nil {
			t.Fatalf("compile: %v", err)
		}
		tables.Load(sch)
	}

	s := &store.Store{DB: db, Dialect: store.NewDialect("sqlite")}
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var appErr *AppError
			if errors.As(err, &appErr) {
				return c.Status(appErr.Status).JSON(ErrorResponse{Error: appErr})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
				Error: &AppError{Code: "INTERNAL_ERROR", Message: "Internal server error"},
			})
		},
	})
	RegisterContentRoutes(app, NewHandler(s, types, tables, 0))
	return app, mock
}

func decodeError(t *testing.T, body io.Reader) *AppError {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp.Error
}

func postsDef() *template.TemplateDefinition {
	return &template.TemplateDefinition{
		Kind:     template.KindCollection,
		Slug:     "posts",
		DataType: template.DataRepeatable,
	}
}

func TestList_UnknownKind(t *testing.T) {
	app, _ := testApp(t, nil, false)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/widget/posts", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if e := decodeError(t, resp.Body); e.Code != "UNKNOWN_TYPE" {
		t.Errorf("code = %s", e.Code)
	}
}

func TestList_UnknownSlug(t *testing.T) {
	app, _ := testApp(t, []*template.TemplateDefinition{postsDef()}, true)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/collection/missing", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if e := decodeError(t, resp.Body); e.Code != "UNKNOWN_TYPE" {
		t.Errorf("code = %s", e.Code)
	}
}

func TestList_UncompiledTemplate(t *testing.T) {
	// Registered template with no physical table yet: an empty listing, not an
	// error.
	app, _ := testApp(t, []*template.TemplateDefinition{postsDef()}, false)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/collection/posts", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Data []map[string]any `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 0 || body.Meta.Total != 0 {
		t.Fatalf("body = %+v", body)
	}
}

func TestList_ReturnsHydratedRows(t *testing.T) {
	def := postsDef()
	app, mock := testApp(t, []*template.TemplateDefinition{def}, true)

	cols := "id, title, slug, status, sort, author, created_at, updated_at"
	mock.ExpectQuery("SELECT "+cols+" FROM collection_posts LIMIT ?1 OFFSET ?2").
		WithArgs(25, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status"}).
			AddRow("p1", "First", "published").
			AddRow("p2", "Second", "draft"))
	mock.ExpectQuery("SELECT COUNT(*) AS count FROM collection_posts").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/collection/posts", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Data []map[string]any `json:"data"`
		Meta struct {
			Page    int `json:"page"`
			PerPage int `json:"per_page"`
			Total   int `json:"total"`
		} `json:"meta"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 2 || body.Data[0]["title"] != "First" {
		t.Fatalf("data = %v", body.Data)
	}
	if body.Meta.Page != 1 || body.Meta.PerPage != 25 || body.Meta.Total != 2 {
		t.Fatalf("meta = %+v", body.Meta)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestList_UnknownFilterField(t *testing.T) {
	app, _ := testApp(t, []*template.TemplateDefinition{postsDef()}, true)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/collection/posts?filter[bogus]=x", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if e := decodeError(t, resp.Body); e.Code != "UNKNOWN_FIELD" {
		t.Errorf("code = %s", e.Code)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	app, mock := testApp(t, []*template.TemplateDefinition{postsDef()}, true)

	cols := "id, title, slug, status, sort, author, created_at, updated_at"
	mock.ExpectQuery("SELECT " + cols + " FROM collection_posts WHERE id = ?1").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/collection/posts/nope", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if e := decodeError(t, resp.Body); e.Code != "NOT_FOUND" {
		t.Errorf("code = %s", e.Code)
	}
}

func TestGetByID_Found(t *testing.T) {
	app, mock := testApp(t, []*template.TemplateDefinition{postsDef()}, true)

	cols := "id, title, slug, status, sort, author, created_at, updated_at"
	mock.ExpectQuery("SELECT " + cols + " FROM collection_posts WHERE id = ?1").
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow("p1", "First"))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/collection/posts/p1", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data["title"] != "First" {
		t.Fatalf("data = %v", body.Data)
	}
}
