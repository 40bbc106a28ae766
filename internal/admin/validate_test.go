package admin

import (
	"strings"
	"testing"

	"lattice-cms/internal/template"
)

func TestValidateTemplate(t *testing.T) {
	def := &template.TemplateDefinition{
		Kind: template.KindCollection,
		Slug: "posts",
		Fields: map[string]*template.FieldDefinition{
			"title": {Type: template.TypeString},
		},
	}
	if err := validateTemplate(def); err != nil {
		t.Fatalf("valid template rejected: %v", err)
	}
	if def.DataType != template.DataFlat {
		t.Errorf("empty dataType must default to flat, got %q", def.DataType)
	}
}

func TestValidateTemplate_Rejections(t *testing.T) {
	cases := []struct {
		name string
		def  *template.TemplateDefinition
		want string
	}{
		{
			"missing slug",
			&template.TemplateDefinition{Kind: template.KindCollection},
			"slug",
		},
		{
			"bad kind",
			&template.TemplateDefinition{Kind: "widget", Slug: "x"},
			"kind",
		},
		{
			"bad data type",
			&template.TemplateDefinition{Kind: template.KindCollection, Slug: "x", DataType: "nested"},
			"dataType",
		},
		{
			"field without type",
			&template.TemplateDefinition{
				Kind: template.KindCollection, Slug: "x",
				Fields: map[string]*template.FieldDefinition{"a": {}},
			},
			"type is required",
		},
		{
			"relation without descriptor",
			&template.TemplateDefinition{
				Kind: template.KindCollection, Slug: "x",
				Fields: map[string]*template.FieldDefinition{
					"author": {Type: template.TypeRelation},
				},
			},
			"relation descriptor",
		},
		{
			"relation without target",
			&template.TemplateDefinition{
				Kind: template.KindCollection, Slug: "x",
				Fields: map[string]*template.FieldDefinition{
					"author": {Type: template.TypeRelation, Relation: &template.RelationSpec{Kind: template.RelationOneToOne}},
				},
			},
			"targetCollection",
		},
		{
			"nested field without type",
			&template.TemplateDefinition{
				Kind: template.KindCollection, Slug: "x",
				Fields: map[string]*template.FieldDefinition{
					"steps": {
						Type: template.TypeArray,
						Items: &template.FieldDefinition{
							Type:       template.TypeObject,
							Properties: map[string]*template.FieldDefinition{"inner": {}},
						},
					},
				},
			},
			"steps.inner",
		},
	}

	for _, tc := range cases {
		err := validateTemplate(tc.def)
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}
