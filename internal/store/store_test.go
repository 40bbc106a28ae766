package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestQueryRows(t *testing.T) {
	s, mock := mockStore(t, "sqlite")

	mock.ExpectQuery("SELECT * FROM collection_posts").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "created_at"}).
			AddRow("p1", []byte("Hello"), []byte("2026-08-30 11:22:33")).
			AddRow("p2", nil, nil))

	rows, err := QueryRows(context.Background(), s.DB, "SELECT * FROM collection_posts")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0]["title"] != "Hello" {
		t.Errorf("byte columns must come back as strings, got %T", rows[0]["title"])
	}
	if _, ok := rows[0]["created_at"].(time.Time); !ok {
		t.Errorf("text timestamps must parse to time.Time, got %T", rows[0]["created_at"])
	}
	if rows[1]["title"] != nil {
		t.Errorf("null must stay nil, got %v", rows[1]["title"])
	}
}

func TestQueryRow_NotFound(t *testing.T) {
	s, mock := mockStore(t, "sqlite")

	mock.ExpectQuery("SELECT * FROM collection_posts WHERE id = ?1").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := QueryRow(context.Background(), s.DB, "SELECT * FROM collection_posts WHERE id = ?1", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNormalizeBooleans(t *testing.T) {
	rows := []map[string]any{
		{"id": "a", "live": int64(1), "count": int64(3)},
		{"id": "b", "live": int64(0), "count": int64(0)},
	}
	NormalizeBooleans(rows, []string{"live"})

	if rows[0]["live"] != true || rows[1]["live"] != false {
		t.Errorf("live not normalized: %v, %v", rows[0]["live"], rows[1]["live"])
	}
	if rows[0]["count"] != int64(3) {
		t.Errorf("non-boolean column must be untouched, got %v", rows[0]["count"])
	}
}
