package admin

import (
	"encoding/json"
	"fmt"

	"lattice-cms/internal/template"
)

func validateTemplate(def *template.TemplateDefinition) error {
	if def.Slug == "" {
		return fmt.Errorf("slug is required")
	}
	if !template.ValidKind(def.Kind) {
		return fmt.Errorf("kind must be collection, global, or block (got %q)", def.Kind)
	}
	if def.DataType == "" {
		def.DataType = template.DataFlat
	}
	if !template.ValidDataType(def.DataType) {
		return fmt.Errorf("dataType must be flat, repeatable, or relational (got %q)", def.DataType)
	}
	if def.Fields == nil {
		def.Fields = map[string]*template.FieldDefinition{}
	}
	return validateFields(def.Fields, "")
}

func validateFields(fields map[string]*template.FieldDefinition, path string) error {
	for name, f := range fields {
		at := name
		if path != "" {
			at = path + "." + name
		}
		if f == nil {
			return fmt.Errorf("field %s: definition is null", at)
		}
		if f.Type == "" {
			return fmt.Errorf("field %s: type is required", at)
		}
		if f.Type == template.TypeRelation {
			if f.Relation == nil {
				return fmt.Errorf("field %s: relation descriptor is required", at)
			}
			if f.Relation.TargetCollection == "" && f.Relation.TargetGlobal == "" {
				return fmt.Errorf("field %s: relation needs targetCollection or targetGlobal", at)
			}
		}
		if f.IsArrayOfObjects() {
			if err := validateFields(f.Items.Properties, at); err != nil {
				return err
			}
		}
	}
	return nil
}

func encodeOptions(opts template.Options) ([]byte, error) {
	return json.Marshal(opts)
}
