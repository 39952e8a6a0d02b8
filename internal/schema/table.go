package schema

// Table is a reflected table. Columns keep declaration order.
type Table struct {
	Name    string
	Columns []Column

	foreignKeys map[string]Column
	bookkeeping int
	relations   []Relation
}

// NewTable builds a table and its derived indexes. Each column's Table field is set to name.
func NewTable(name string, columns []Column) *Table {
	t := &Table{
		Name:        name,
		Columns:     make([]Column, len(columns)),
		foreignKeys: make(map[string]Column),
	}
	for i, c := range columns {
		c.Table = name
		t.Columns[i] = c
		if c.IsForeignKey() {
			t.foreignKeys[c.Name] = c
		}
		if c.IsBookkeeping() {
			t.bookkeeping++
		}
	}
	return t
}

// Column looks a column up by name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ForeignKeyColumns returns the foreign key columns in declaration order.
func (t *Table) ForeignKeyColumns() []Column {
	var out []Column
	for _, c := range t.Columns {
		if c.IsForeignKey() {
			out = append(out, c)
		}
	}
	return out
}

// BookkeepingCount returns how many bookkeeping columns the table has.
func (t *Table) BookkeepingCount() int { return t.bookkeeping }

// IsPivot reports whether every non-bookkeeping column is a foreign key.
func (t *Table) IsPivot() bool {
	return len(t.Columns)-t.bookkeeping == len(t.foreignKeys)
}

// UsesCreatedAt reports whether the table has a created_at column.
func (t *Table) UsesCreatedAt() bool {
	_, ok := t.Column("created_at")
	return ok
}

// UsesUpdatedAt reports whether the table has an updated_at column.
func (t *Table) UsesUpdatedAt() bool {
	_, ok := t.Column("updated_at")
	return ok
}

// Relations returns the inferred relations in attachment order.
func (t *Table) Relations() []Relation { return t.relations }

// Equal compares name, columns (any order), foreign key index, bookkeeping count,
// pivot flag and relations (any order).
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Name != o.Name ||
		len(t.Columns) != len(o.Columns) ||
		len(t.foreignKeys) != len(o.foreignKeys) ||
		t.bookkeeping != o.bookkeeping ||
		t.IsPivot() != o.IsPivot() ||
		len(t.relations) != len(o.relations) {
		return false
	}
	for name, c := range t.foreignKeys {
		oc, ok := o.foreignKeys[name]
		if !ok || !c.Equal(oc) {
			return false
		}
	}
	for _, c := range t.Columns {
		oc, ok := o.Column(c.Name)
		if !ok || !c.Equal(oc) {
			return false
		}
	}
	for _, r := range t.relations {
		if !o.hasRelation(r) {
			return false
		}
	}
	return true
}

func (t *Table) hasRelation(r Relation) bool {
	for _, x := range t.relations {
		if x == r {
			return true
		}
	}
	return false
}
