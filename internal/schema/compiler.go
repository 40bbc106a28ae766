package schema

import (
	"log"
	"sort"

	"github.com/google/uuid"

	"lattice-cms/internal/template"
)

// Schema is the artifact of one compile pass: every physical table sorted by
// name, plus the organized relation declarations. The pass ID ties log lines
// and migrations back to the compile that produced them.
type Schema struct {
	PassID    string
	Tables    []TableSpec
	Relations OrganizedRelations
}

// Table returns the spec for a table name, or false if the schema does not
// contain it.
func (s *Schema) Table(name string) (*TableSpec, bool) {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i], true
		}
	}
	return nil, false
}

// Compiler walks every registered template plus the fixed core tables and
// emits the full schema. Each compile regenerates from scratch; there is no
// incremental diffing against a previous pass.
type Compiler struct {
	types *template.Registry
}

func NewCompiler(types *template.Registry) *Compiler {
	return &Compiler{types: types}
}

// Compile runs one full pass. Any generation error is fatal and aborts the
// whole compile; nothing partial is returned.
func (c *Compiler) Compile() (*Schema, error) {
	meta := NewMetadata()
	var tables []TableSpec

	for _, t := range CoreTables() {
		meta.RecordTable(TableMetadata{TableName: t.Name, OwnerType: t.OwnerType, FieldNames: t.ColumnNames()})
		tables = append(tables, t)
	}

	defs := c.types.All() // sorted by kind then slug
	for _, def := range defs {
		generated, err := GenerateTables(def, meta)
		if err != nil {
			return nil, err
		}
		tables = append(tables, generated...)
	}

	// Validate relation targets against this pass. A target that is not yet
	// registered is tolerated: the hydration engine resolves it to empty.
	for _, rr := range meta.Relations() {
		if _, ok := meta.Table(rr.TargetTable); !ok {
			log.Printf("WARN: relation %s.%s targets unknown table %s", rr.SourceTable, rr.FieldName, rr.TargetTable)
		}
	}

	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })

	sch := &Schema{
		PassID:    uuid.NewString(),
		Tables:    tables,
		Relations: GenerateOrganizedRelations(meta),
	}
	log.Printf("Compiled schema pass %s: %d tables, %d relations",
		sch.PassID, len(sch.Tables),
		len(sch.Relations.Standard)+len(sch.Relations.Files)+len(sch.Relations.Junctions))
	return sch, nil
}
