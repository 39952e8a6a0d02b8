package typemap

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/schemasmith/schemasmith/internal/schema"
)

// TypeMap holds the mapping from vendor type names to canonical types.
type TypeMap struct {
	Mappings  map[string]schema.DataType `yaml:"mappings"`
	Overrides map[string]schema.DataType `yaml:"overrides,omitempty"`
	defaults  map[string]schema.DataType // not serialized; populated by ForDatabase
}

// DefaultMySQL returns the default type mapping for MySQL and MariaDB.
func DefaultMySQL() *TypeMap {
	m := map[string]schema.DataType{
		"varchar":    schema.String,
		"char":       schema.String,
		"text":       schema.String,
		"tinytext":   schema.String,
		"mediumtext": schema.String,
		"longtext":   schema.String,
		"binary":     schema.String,
		"varbinary":  schema.String,
		"blob":       schema.String,
		"tinyblob":   schema.String,
		"mediumblob": schema.String,
		"longblob":   schema.String,
		"enum":       schema.String,
		"set":        schema.String,
		"json":       schema.JSON,
		"datetime":   schema.DateTime,
		"timestamp":  schema.DateTime,
		"date":       schema.Date,
		"time":       schema.Time,
		"year":       schema.Year,
		"tinyint":    schema.TinyInteger,
		"smallint":   schema.SmallInteger,
		"mediumint":  schema.MediumInteger,
		"int":        schema.Integer,
		"integer":    schema.Integer,
		"bigint":     schema.BigInteger,
		"bit":        schema.Bit,
		"float":      schema.Decimal,
		"double":     schema.Decimal,
		"decimal":    schema.Decimal,
	}
	return &TypeMap{Mappings: m}
}

// DefaultPostgres returns the default type mapping for PostgreSQL.
func DefaultPostgres() *TypeMap {
	m := map[string]schema.DataType{
		"smallint":                    schema.SmallInteger,
		"integer":                     schema.Integer,
		"bigint":                      schema.BigInteger,
		"serial":                      schema.Integer,
		"bigserial":                   schema.BigInteger,
		"numeric":                     schema.Decimal,
		"decimal":                     schema.Decimal,
		"real":                        schema.Decimal,
		"double precision":            schema.Decimal,
		"character varying":           schema.String,
		"varchar":                     schema.String,
		"text":                        schema.String,
		"char":                        schema.String,
		"character":                   schema.String,
		"uuid":                        schema.String,
		"bytea":                       schema.String,
		"citext":                      schema.String,
		"user-defined":                schema.String,
		"boolean":                     schema.Bit,
		"bit":                         schema.Bit,
		"date":                        schema.Date,
		"timestamp":                   schema.DateTime,
		"timestamp with time zone":    schema.DateTime,
		"timestamp without time zone": schema.DateTime,
		"time":                        schema.Time,
		"time with time zone":         schema.Time,
		"time without time zone":      schema.Time,
		"json":                        schema.JSON,
		"jsonb":                       schema.JSON,
	}
	return &TypeMap{Mappings: m}
}

// ForDatabase returns a TypeMap with defaults for the given database type.
func ForDatabase(dbType string) *TypeMap {
	var tm *TypeMap
	switch dbType {
	case "postgresql", "postgres":
		tm = DefaultPostgres()
	default:
		tm = DefaultMySQL()
	}
	tm.defaults = make(map[string]schema.DataType, len(tm.Mappings))
	for k, v := range tm.Mappings {
		tm.defaults[k] = v
	}
	if tm.Overrides == nil {
		tm.Overrides = make(map[string]schema.DataType)
	}
	return tm
}

// Resolve returns the canonical type for a vendor type name. Unmapped names resolve
// to schema.None so new vendor types never fail a reflection.
func (tm *TypeMap) Resolve(vendorType string) schema.DataType {
	if t, ok := tm.Mappings[strings.ToLower(strings.TrimSpace(vendorType))]; ok {
		return t
	}
	return schema.None
}

// Override applies a user override for a vendor type.
func (tm *TypeMap) Override(vendorType string, t schema.DataType) error {
	if !t.Valid() {
		return fmt.Errorf("unknown canonical type %q for %q", t, vendorType)
	}
	vendorType = strings.ToLower(vendorType)
	tm.Mappings[vendorType] = t
	if tm.Overrides == nil {
		tm.Overrides = make(map[string]schema.DataType)
	}
	if tm.defaults != nil {
		if def, ok := tm.defaults[vendorType]; ok && def == t {
			delete(tm.Overrides, vendorType)
			return nil
		}
	}
	tm.Overrides[vendorType] = t
	return nil
}

// Load builds the mapping for dbType, layers the mapping file at path on top when
// path is set, then applies overrides.
func Load(dbType, path string, overrides map[string]string) (*TypeMap, error) {
	tm := ForDatabase(dbType)
	if path != "" {
		file, err := LoadYAML(path)
		if err != nil {
			return nil, err
		}
		for vendor, canonical := range file.Mappings {
			if err := tm.Override(vendor, canonical); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
	}
	if err := tm.Apply(overrides); err != nil {
		return nil, err
	}
	return tm, nil
}

// Apply applies a set of overrides, typically from configuration. The value
// "default" restores the built-in mapping for that vendor type.
func (tm *TypeMap) Apply(overrides map[string]string) error {
	for vendor, canonical := range overrides {
		if strings.EqualFold(canonical, "default") {
			tm.RestoreDefault(strings.ToLower(vendor))
			continue
		}
		if err := tm.Override(vendor, schema.DataType(strings.ToUpper(canonical))); err != nil {
			return err
		}
	}
	return nil
}

// RestoreDefault restores the default mapping for a vendor type.
func (tm *TypeMap) RestoreDefault(vendorType string) {
	if tm.defaults != nil {
		if def, ok := tm.defaults[vendorType]; ok {
			tm.Mappings[vendorType] = def
			delete(tm.Overrides, vendorType)
		}
	}
}

// IsOverridden returns true if the vendor type has been overridden from its default.
func (tm *TypeMap) IsOverridden(vendorType string) bool {
	_, ok := tm.Overrides[vendorType]
	return ok
}

// SortedTypes returns the vendor type names sorted alphabetically.
func (tm *TypeMap) SortedTypes() []string {
	types := make([]string, 0, len(tm.Mappings))
	for k := range tm.Mappings {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}

// WriteYAML writes the type mapping to a YAML file.
func (tm *TypeMap) WriteYAML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := yaml.Marshal(tm)
	if err != nil {
		return fmt.Errorf("marshaling type map: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// LoadYAML reads a type mapping from a YAML file.
func LoadYAML(path string) (*TypeMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading type map file: %w", err)
	}
	tm := &TypeMap{}
	if err := yaml.Unmarshal(data, tm); err != nil {
		return nil, fmt.Errorf("parsing type map: %w", err)
	}
	if tm.Mappings == nil {
		tm.Mappings = make(map[string]schema.DataType)
	}
	if tm.Overrides == nil {
		tm.Overrides = make(map[string]schema.DataType)
	}
	return tm, nil
}
