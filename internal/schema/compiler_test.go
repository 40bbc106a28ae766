package schema

import (
	"reflect"
	"testing"

	"lattice-cms/internal/template"
)

func testRegistry() *template.Registry {
	reg := template.NewRegistry()
	reg.Load([]*template.TemplateDefinition{
		{
			Kind:     template.KindCollection,
			Slug:     "posts",
			DataType: template.DataRepeatable,
			Fields: map[string]*template.FieldDefinition{
				"body":      {Type: template.TypeRichText},
				"heroImage": {Type: template.TypeFile},
				"tags": {Type: template.TypeRelation, Relation: &template.RelationSpec{
					Kind:             template.RelationManyToMany,
					TargetCollection: "tags",
				}},
				"author": {Type: template.TypeRelation, Relation: &template.RelationSpec{
					Kind:             template.RelationOneToOne,
					TargetCollection: "authors",
				}},
			},
		},
		{
			Kind:     template.KindCollection,
			Slug:     "tags",
			DataType: template.DataRepeatable,
		},
		{
			Kind:     template.KindCollection,
			Slug:     "authors",
			DataType: template.DataRepeatable,
			Fields: map[string]*template.FieldDefinition{
				"bio": {Type: template.TypeText},
			},
		},
		{
			Kind: template.KindBlock,
			Slug: "gallery",
			Fields: map[string]*template.FieldDefinition{
				"images": {Type: template.TypeFile, File: &template.FileSpec{Multiple: true}},
			},
		},
	})
	return reg
}

func TestCompile_Deterministic(t *testing.T) {
	reg := testRegistry()

	first, err := NewCompiler(reg).Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	second, err := NewCompiler(reg).Compile()
	if err != nil {
		t.Fatalf("recompile: %v", err)
	}

	if len(first.Tables) != len(second.Tables) {
		t.Fatalf("table counts differ: %d vs %d", len(first.Tables), len(second.Tables))
	}
	for i := range first.Tables {
		if !reflect.DeepEqual(first.Tables[i], second.Tables[i]) {
			t.Errorf("table %s differs between passes", first.Tables[i].Name)
		}
	}
	if !reflect.DeepEqual(first.Relations, second.Relations) {
		t.Error("relations differ between passes")
	}
}

func TestCompile_StructuralCompleteness(t *testing.T) {
	sch, err := NewCompiler(testRegistry()).Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	want := []string{
		"files",
		"users",
		"collection_posts",
		"collection_posts_hero_image",
		"junction_collection_posts_tags",
		"collection_tags",
		"collection_authors",
		"block_gallery",
		"block_gallery_images",
	}
	for _, name := range want {
		if _, ok := sch.Table(name); !ok {
			t.Errorf("schema missing table %s", name)
		}
	}
	if len(sch.Tables) != len(want) {
		names := make([]string, len(sch.Tables))
		for i, tbl := range sch.Tables {
			names[i] = tbl.Name
		}
		t.Errorf("schema has %d tables, want %d: %v", len(sch.Tables), len(want), names)
	}

	// Tables sorted by name.
	for i := 1; i < len(sch.Tables); i++ {
		if sch.Tables[i-1].Name >= sch.Tables[i].Name {
			t.Fatalf("tables not sorted: %s before %s", sch.Tables[i-1].Name, sch.Tables[i].Name)
		}
	}
}

func TestCompile_OrganizedRelations(t *testing.T) {
	sch, err := NewCompiler(testRegistry()).Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	if len(sch.Relations.Files) != 2 {
		t.Errorf("file relations = %d, want 2", len(sch.Relations.Files))
	}
	if len(sch.Relations.Junctions) != 1 {
		t.Errorf("junction relations = %d, want 1", len(sch.Relations.Junctions))
	}
	if len(sch.Relations.Standard) != 1 {
		t.Errorf("standard relations = %d, want 1", len(sch.Relations.Standard))
	}
	if len(sch.Relations.Standard) == 1 {
		rr := sch.Relations.Standard[0]
		if rr.SourceTable != "collection_posts" || rr.TargetTable != "collection_authors" {
			t.Errorf("standard relation = %+v", rr)
		}
	}
	if sch.PassID == "" {
		t.Error("compile pass must carry an id")
	}
}

func TestTableRegistry(t *testing.T) {
	sch, err := NewCompiler(testRegistry()).Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	reg := NewTableRegistry(sch)
	if reg.Len() != len(sch.Tables) {
		t.Fatalf("registry len = %d, want %d", reg.Len(), len(sch.Tables))
	}
	spec, ok := reg.Lookup("collection_posts")
	if !ok || spec.Name != "collection_posts" {
		t.Fatal("expected lookup hit for collection_posts")
	}
	if _, ok := reg.Lookup("collection_missing"); ok {
		t.Fatal("expected lookup miss for unknown table")
	}
	if reg.Has("collection_missing") {
		t.Fatal("Has must report false for unknown table")
	}

	// A reload swaps the snapshot in place.
	reg.Load(&Schema{Tables: []TableSpec{{Name: "files"}}})
	if reg.Len() != 1 || reg.Has("collection_posts") {
		t.Fatal("reload must replace the previous snapshot")
	}
}
