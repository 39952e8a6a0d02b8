package schema

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type yamlSchema struct {
	Database string      `yaml:"database"`
	Tables   []yamlTable `yaml:"tables"`
}

type yamlTable struct {
	Name      string         `yaml:"name"`
	Pivot     bool           `yaml:"pivot,omitempty"`
	Columns   []Column       `yaml:"columns"`
	Relations []yamlRelation `yaml:"relations,omitempty"`
}

type yamlRelation struct {
	Kind    RelationKind `yaml:"kind"`
	Name    string       `yaml:"name"`
	Related string       `yaml:"related"`
	Via     string       `yaml:"via"`
}

func (s *Schema) document() yamlSchema {
	doc := yamlSchema{Database: s.name}
	for _, t := range s.tables {
		yt := yamlTable{Name: t.Name, Pivot: t.IsPivot(), Columns: t.Columns}
		for _, r := range t.relations {
			via := r.ReferencedKey
			if r.Kind == BelongsTo {
				via = r.LocalKey
			}
			yt.Relations = append(yt.Relations, yamlRelation{Kind: r.Kind, Name: r.Name, Related: r.ReferencedTable, Via: via})
		}
		doc.Tables = append(doc.Tables, yt)
	}
	return doc
}

// WriteYAML writes a readable dump of the schema, including inferred relations.
func (s *Schema) WriteYAML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := s.ToYAML()
	if err != nil {
		return fmt.Errorf("marshaling schema: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// ToYAML returns the schema dump as a YAML byte slice.
func (s *Schema) ToYAML() ([]byte, error) {
	return yaml.Marshal(s.document())
}

// Summary returns a human-readable summary of the schema.
func (s *Schema) Summary() string {
	var totalCols, totalFKs, pivots, relations int

	for _, t := range s.tables {
		totalCols += len(t.Columns)
		totalFKs += len(t.foreignKeys)
		relations += len(t.relations)
		if t.IsPivot() {
			pivots++
		}
	}

	return fmt.Sprintf(
		"Found %d tables, %d columns, %d foreign keys\nPivot tables: %d, inferred relations: %d",
		len(s.tables), totalCols, totalFKs, pivots, relations,
	)
}
