package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"lattice-cms/internal/schema"
)

func mockStore(t *testing.T, driver string) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &Store{DB: db, Dialect: NewDialect(driver), driver: driver}, mock
}

func TestMigrateTable_Create(t *testing.T) {
	s, mock := mockStore(t, "sqlite")
	spec := schema.TableSpec{
		Name:      "collection_posts",
		OwnerType: "collection",
		Columns: []schema.ColumnSpec{
			{Name: "id", Kind: "uuid", PrimaryKey: true},
			{Name: "slug", Kind: "text", Unique: true},
			{Name: "title", Kind: "text"},
		},
	}

	mock.ExpectQuery("SELECT name FROM sqlite_master WHERE type='table' AND name=?1").
		WithArgs("collection_posts").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))
	mock.ExpectExec(s.Dialect.TableDeclaration(spec)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(s.Dialect.IndexSQL("collection_posts", "slug", true)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewMigrator(s).MigrateTable(context.Background(), &spec); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMigrateTable_AddsMissingColumn(t *testing.T) {
	s, mock := mockStore(t, "sqlite")
	spec := schema.TableSpec{
		Name:      "global_settings",
		OwnerType: "global",
		Columns: []schema.ColumnSpec{
			{Name: "id", Kind: "uuid", PrimaryKey: true},
			{Name: "tagline", Kind: "text"},
		},
	}

	mock.ExpectQuery("SELECT name FROM sqlite_master WHERE type='table' AND name=?1").
		WithArgs("global_settings").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("global_settings"))
	mock.ExpectQuery("PRAGMA table_info(global_settings)").
		WillReturnRows(sqlmock.NewRows([]string{"cid", "name", "type", "notnull", "dflt_value", "pk"}).
			AddRow(0, "id", "TEXT", 0, nil, 1))
	mock.ExpectExec("ALTER TABLE global_settings ADD COLUMN tagline TEXT").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewMigrator(s).MigrateTable(context.Background(), &spec); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMigrateTable_IndexesForeignKeys(t *testing.T) {
	s, mock := mockStore(t, "sqlite")
	spec := schema.TableSpec{
		Name:      "junction_collection_posts_tags",
		OwnerType: schema.OwnerJunction,
		Columns: []schema.ColumnSpec{
			{Name: "id", Kind: "uuid", PrimaryKey: true},
			{Name: "collection_id", Kind: "uuid", NotNull: true},
			{Name: "target_id", Kind: "uuid", NotNull: true},
		},
	}

	mock.ExpectQuery("SELECT name FROM sqlite_master WHERE type='table' AND name=?1").
		WithArgs(spec.Name).
		WillReturnRows(sqlmock.NewRows([]string{"name"}))
	mock.ExpectExec(s.Dialect.TableDeclaration(spec)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(s.Dialect.IndexSQL(spec.Name, "collection_id", false)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(s.Dialect.IndexSQL(spec.Name, "target_id", false)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewMigrator(s).MigrateTable(context.Background(), &spec); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
