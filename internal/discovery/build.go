package discovery

import (
	"regexp"
	"sort"
	"strings"

	"github.com/schemasmith/schemasmith/internal/schema"
	"github.com/schemasmith/schemasmith/internal/typemap"
)

// ColumnRow is one row of the catalog query.
type ColumnRow struct {
	Table            string
	Column           string
	DataType         string // vendor type name, e.g. varchar
	ColumnType       string // full descriptor, e.g. enum('a','b') or int unsigned
	MaxLength        *int
	Precision        *int
	Scale            *int
	Key              string
	Nullable         bool
	ReferencedTable  string
	ReferencedColumn string
	Unsigned         bool
	Ordinal          int
}

var valueListPattern = regexp.MustCompile(`(?i)^(?:enum|set)\((.+)\)$`)

// Build groups catalog rows into tables and constructs the schema. The result does
// not depend on row order: tables are sorted by name and columns by ordinal position.
// Duplicate rows for one column (one per key usage) are merged, and foreign key
// metadata wins over its absence.
func Build(name string, rows []ColumnRow, types *typemap.TypeMap) (*schema.Schema, error) {
	byTable := make(map[string][]ColumnRow)
	for _, r := range rows {
		byTable[r.Table] = mergeRow(byTable[r.Table], r)
	}

	names := make([]string, 0, len(byTable))
	for n := range byTable {
		names = append(names, n)
	}
	sort.Strings(names)

	tables := make([]*schema.Table, 0, len(names))
	for _, tn := range names {
		tableRows := byTable[tn]
		sort.SliceStable(tableRows, func(i, j int) bool {
			if tableRows[i].Ordinal != tableRows[j].Ordinal {
				return tableRows[i].Ordinal < tableRows[j].Ordinal
			}
			return tableRows[i].Column < tableRows[j].Column
		})
		cols := make([]schema.Column, 0, len(tableRows))
		for _, r := range tableRows {
			cols = append(cols, toColumn(r, types))
		}
		tables = append(tables, schema.NewTable(tn, cols))
	}

	return schema.New(name, tables)
}

func mergeRow(existing []ColumnRow, r ColumnRow) []ColumnRow {
	for i, e := range existing {
		if e.Column != r.Column {
			continue
		}
		if e.ReferencedTable == "" && r.ReferencedTable != "" {
			existing[i].ReferencedTable = r.ReferencedTable
			existing[i].ReferencedColumn = r.ReferencedColumn
		}
		if keyRank(r.Key) > keyRank(e.Key) {
			existing[i].Key = r.Key
		}
		return existing
	}
	return append(existing, r)
}

func keyRank(k string) int {
	switch schema.ParseKeyType(k) {
	case schema.KeyPrimary:
		return 2
	case schema.KeyUnique:
		return 1
	}
	return 0
}

func toColumn(r ColumnRow, types *typemap.TypeMap) schema.Column {
	col := schema.Column{
		Name:      r.Column,
		Type:      types.Resolve(r.DataType),
		Nullable:  r.Nullable,
		Unsigned:  r.Unsigned,
		MaxLength: r.MaxLength,
		Precision: nonZero(r.Precision),
		Scale:     nonZero(r.Scale),
		Key:       schema.ParseKeyType(r.Key),
	}
	if m := valueListPattern.FindStringSubmatch(strings.TrimSpace(r.ColumnType)); m != nil {
		col.Values = parseValueList(m[1])
		col.MaxLength = nil
	}
	if r.ReferencedTable != "" && r.ReferencedColumn != "" {
		col.ForeignKey = &schema.ForeignKey{
			ReferencedTable:  r.ReferencedTable,
			ReferencedColumn: r.ReferencedColumn,
		}
	}
	return col
}

func nonZero(v *int) *int {
	if v == nil || *v == 0 {
		return nil
	}
	return v
}

// parseValueList splits a quoted, comma separated value list such as 'a','it''s'.
// Commas inside quotes do not split.
func parseValueList(s string) []string {
	var (
		values  []string
		current strings.Builder
		quoted  bool
	)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '\'' && quoted && i+1 < len(s) && s[i+1] == '\'':
			current.WriteByte('\'')
			i++
		case ch == '\'':
			quoted = !quoted
		case ch == ',' && !quoted:
			values = append(values, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	return append(values, strings.TrimSpace(current.String()))
}
