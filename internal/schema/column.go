package schema

import "slices"

// ForeignKey is the target of a foreign key column.
type ForeignKey struct {
	ReferencedTable  string `yaml:"referenced_table" msgpack:"t"`
	ReferencedColumn string `yaml:"referenced_column" msgpack:"c"`
}

// Column is one reflected column. Pointer fields are nil when the catalog reports no value.
type Column struct {
	Table      string      `yaml:"-" msgpack:"tb"`
	Name       string      `yaml:"name" msgpack:"n"`
	Type       DataType    `yaml:"type" msgpack:"ty"`
	Nullable   bool        `yaml:"nullable" msgpack:"nl"`
	Unsigned   bool        `yaml:"unsigned,omitempty" msgpack:"u"`
	MaxLength  *int        `yaml:"max_length,omitempty" msgpack:"ml"`
	Precision  *int        `yaml:"precision,omitempty" msgpack:"p"`
	Scale      *int        `yaml:"scale,omitempty" msgpack:"s"`
	Values     []string    `yaml:"values,omitempty" msgpack:"v"`
	Key        KeyType     `yaml:"key,omitempty" msgpack:"k"`
	ForeignKey *ForeignKey `yaml:"foreign_key,omitempty" msgpack:"fk"`
}

// IsForeignKey reports whether the column references another table.
func (c Column) IsForeignKey() bool { return c.ForeignKey != nil }

// IsUnique reports whether the column is primary or unique keyed.
func (c Column) IsUnique() bool { return c.Key == KeyUnique || c.Key == KeyPrimary }

// IsBookkeeping reports whether the column is an id, timestamp or soft-delete column.
func (c Column) IsBookkeeping() bool { return IsBookkeeping(c.Name) }

// Equal compares every field.
func (c Column) Equal(o Column) bool {
	return c.Table == o.Table &&
		c.Name == o.Name &&
		c.Type == o.Type &&
		c.Nullable == o.Nullable &&
		c.Unsigned == o.Unsigned &&
		c.Key == o.Key &&
		intPtrEqual(c.MaxLength, o.MaxLength) &&
		intPtrEqual(c.Precision, o.Precision) &&
		intPtrEqual(c.Scale, o.Scale) &&
		foreignKeyEqual(c.ForeignKey, o.ForeignKey) &&
		slices.Equal(c.Values, o.Values)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func foreignKeyEqual(a, b *ForeignKey) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }
