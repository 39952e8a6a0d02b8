package schema

import "github.com/schemasmith/schemasmith/internal/naming"

// RelationKind is the side of a foreign key a relation describes.
type RelationKind string

const (
	BelongsTo RelationKind = "BelongsTo"
	HasMany   RelationKind = "HasMany"
)

// Relation is an inferred accessor between two tables. LocalTable is the table the
// relation is attached to.
type Relation struct {
	Kind            RelationKind
	LocalTable      string
	LocalKey        string
	ReferencedTable string
	ReferencedKey   string
	Name            string
}

// Related returns the table on the other side of the relation.
func (r Relation) Related() string { return r.ReferencedTable }

// inferRelations attaches BelongsTo to the owning table and HasMany to the referenced
// table for every foreign key of every non-pivot table, in column order.
func (s *Schema) inferRelations() {
	for _, t := range s.tables {
		if t.IsPivot() {
			continue
		}
		for _, c := range t.ForeignKeyColumns() {
			fk := c.ForeignKey
			t.relations = append(t.relations, Relation{
				Kind:            BelongsTo,
				LocalTable:      t.Name,
				LocalKey:        c.Name,
				ReferencedTable: fk.ReferencedTable,
				ReferencedKey:   fk.ReferencedColumn,
				Name:            naming.VarName(fk.ReferencedTable, naming.Singular),
			})
			ref := s.index[fk.ReferencedTable]
			ref.relations = append(ref.relations, Relation{
				Kind:            HasMany,
				LocalTable:      ref.Name,
				LocalKey:        fk.ReferencedColumn,
				ReferencedTable: t.Name,
				ReferencedKey:   c.Name,
				Name:            naming.VarName(t.Name, naming.Plural),
			})
		}
	}
}
