package schema

import "sort"

// OrganizedRelations groups everything the metadata registry accumulated into
// the three emission buckets, so the schema artifact declares relations by
// kind rather than by discovery order. Purely presentational: it does not
// alter physical structure.
type OrganizedRelations struct {
	Standard  []RelationRecord
	Files     []RelationRecord
	Junctions []RelationRecord
}

// GenerateOrganizedRelations partitions the relations recorded during a
// compile pass. Each bucket is sorted by (source table, field) so identical
// template sets emit identical schema documents.
func GenerateOrganizedRelations(meta *Metadata) OrganizedRelations {
	var org OrganizedRelations
	for _, rr := range meta.Relations() {
		switch rr.Kind {
		case RelFile:
			org.Files = append(org.Files, rr)
		case RelManyToMany:
			org.Junctions = append(org.Junctions, rr)
		default:
			org.Standard = append(org.Standard, rr)
		}
	}
	sortRelations(org.Standard)
	sortRelations(org.Files)
	sortRelations(org.Junctions)
	return org
}

func sortRelations(rels []RelationRecord) {
	sort.Slice(rels, func(i, j int) bool {
		if rels[i].SourceTable != rels[j].SourceTable {
			return rels[i].SourceTable < rels[j].SourceTable
		}
		return rels[i].FieldName < rels[j].FieldName
	})
}
