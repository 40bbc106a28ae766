package template

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedDefinition marks a stored schema document that failed to parse.
// The owning type is skipped for hydration; its rows still serve raw scalar
// columns.
var ErrMalformedDefinition = errors.New("malformed template definition")

// ParseFields decodes the stored schema document (the JSON object keyed by
// field name) into a typed field tree. Parsed once at registry load; the
// hydration engine never re-parses per call.
func ParseFields(doc []byte) (map[string]*FieldDefinition, error) {
	if len(doc) == 0 {
		return map[string]*FieldDefinition{}, nil
	}
	var fields map[string]*FieldDefinition
	if err := json.Unmarshal(doc, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDefinition, err)
	}
	if fields == nil {
		fields = map[string]*FieldDefinition{}
	}
	return fields, nil
}

// ParseOptions decodes the stored options document. An empty or missing
// document yields zero options.
func ParseOptions(doc []byte) (Options, error) {
	var opts Options
	if len(doc) == 0 {
		return opts, nil
	}
	if err := json.Unmarshal(doc, &opts); err != nil {
		return opts, fmt.Errorf("%w: options: %v", ErrMalformedDefinition, err)
	}
	return opts, nil
}

// EncodeFields serializes a field tree for storage beside its type record.
func EncodeFields(fields map[string]*FieldDefinition) ([]byte, error) {
	if fields == nil {
		fields = map[string]*FieldDefinition{}
	}
	return json.Marshal(fields)
}
