package schema

import (
	"errors"
	"fmt"
	"slices"
)

// DataType is the canonical, vendor independent type of a column.
type DataType string

const (
	String        DataType = "STRING"
	TinyInteger   DataType = "TINY_INTEGER"
	SmallInteger  DataType = "SMALL_INTEGER"
	MediumInteger DataType = "MEDIUM_INTEGER"
	Integer       DataType = "INTEGER"
	BigInteger    DataType = "BIG_INTEGER"
	Bit           DataType = "BIT"
	Decimal       DataType = "DECIMAL"
	JSON          DataType = "JSON"
	Date          DataType = "DATE"
	DateTime      DataType = "DATE_TIME"
	Time          DataType = "TIME"
	Year          DataType = "YEAR"
	None          DataType = "NONE"
)

// DataTypes lists every canonical type.
var DataTypes = []DataType{
	String, TinyInteger, SmallInteger, MediumInteger, Integer, BigInteger,
	Bit, Decimal, JSON, Date, DateTime, Time, Year, None,
}

// Valid reports whether d is one of the canonical types.
func (d DataType) Valid() bool {
	return slices.Contains(DataTypes, d)
}

// IsInteger reports whether d is one of the integer variants.
func (d DataType) IsInteger() bool {
	switch d {
	case TinyInteger, SmallInteger, MediumInteger, Integer, BigInteger:
		return true
	}
	return false
}

// IsTemporal reports whether d is a date or time type.
func (d DataType) IsTemporal() bool {
	switch d {
	case Date, DateTime, Time, Year:
		return true
	}
	return false
}

// KeyType classifies a column's key participation.
type KeyType string

const (
	KeyNone    KeyType = ""
	KeyUnique  KeyType = "UNI"
	KeyPrimary KeyType = "PRI"
)

// ParseKeyType normalizes a catalog key descriptor. Anything other than UNI or PRI
// (for example MySQL's MUL) carries no meaning here and maps to KeyNone.
func ParseKeyType(s string) KeyType {
	switch KeyType(s) {
	case KeyUnique, KeyPrimary:
		return KeyType(s)
	}
	return KeyNone
}

// Bookkeeping columns are conventional non-business columns.
var Bookkeeping = []string{"id", "created_at", "updated_at", "deleted_at"}

// IsBookkeeping reports whether name is a bookkeeping column name.
func IsBookkeeping(name string) bool {
	return slices.Contains(Bookkeeping, name)
}

// ErrDuplicateTable is returned when two tables share a name.
var ErrDuplicateTable = errors.New("duplicate table")

// DanglingReferenceError reports a foreign key naming a table that is not part of the schema.
type DanglingReferenceError struct {
	Table           string
	Column          string
	ReferencedTable string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("column %s.%s references table %q which is not in the reflected schema",
		e.Table, e.Column, e.ReferencedTable)
}

// Schema is the full set of reflected tables for one database, ordered by table name
// as given to New.
type Schema struct {
	name   string
	tables []*Table
	index  map[string]*Table
}

// New validates tables and infers their relations. It is the only way to obtain a
// Schema, which guarantees inference runs exactly once per construction.
func New(name string, tables []*Table) (*Schema, error) {
	s := &Schema{
		name:   name,
		tables: make([]*Table, 0, len(tables)),
		index:  make(map[string]*Table, len(tables)),
	}
	for _, t := range tables {
		if _, ok := s.index[t.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTable, t.Name)
		}
		s.index[t.Name] = t
		s.tables = append(s.tables, t)
	}
	for _, t := range s.tables {
		for _, c := range t.ForeignKeyColumns() {
			if _, ok := s.index[c.ForeignKey.ReferencedTable]; !ok {
				return nil, &DanglingReferenceError{
					Table:           t.Name,
					Column:          c.Name,
					ReferencedTable: c.ForeignKey.ReferencedTable,
				}
			}
		}
	}
	s.inferRelations()
	return s, nil
}

// Name returns the database name the schema was reflected from.
func (s *Schema) Name() string { return s.name }

// Tables returns the tables in order.
func (s *Schema) Tables() []*Table { return s.tables }

// Table looks a table up by name.
func (s *Schema) Table(name string) (*Table, bool) {
	t, ok := s.index[name]
	return t, ok
}

// Len returns the number of tables.
func (s *Schema) Len() int { return len(s.tables) }

// Names returns the table names in order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.tables))
	for i, t := range s.tables {
		names[i] = t.Name
	}
	return names
}

// Equal reports structural equality: same table count and an equal counterpart for
// every table, regardless of order.
func (s *Schema) Equal(other *Schema) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.tables) != len(other.tables) {
		return false
	}
	for _, t := range s.tables {
		o, ok := other.index[t.Name]
		if !ok || !t.Equal(o) {
			return false
		}
	}
	return true
}
