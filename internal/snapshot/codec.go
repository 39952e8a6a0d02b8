package snapshot

import (
	"fmt"

	"github.com/golang/snappy"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/schemasmith/schemasmith/internal/schema"
)

const codecVersion = 1

type encodedSchema struct {
	Version int            `msgpack:"v"`
	Name    string         `msgpack:"n"`
	Tables  []encodedTable `msgpack:"t"`
}

type encodedTable struct {
	Name    string          `msgpack:"n"`
	Columns []schema.Column `msgpack:"c"`
}

func toEncoded(s *schema.Schema) encodedSchema {
	enc := encodedSchema{Version: codecVersion, Name: s.Name()}
	for _, t := range s.Tables() {
		enc.Tables = append(enc.Tables, encodedTable{Name: t.Name, Columns: t.Columns})
	}
	return enc
}

// Encode serializes s with msgpack and compresses the result with snappy.
func Encode(s *schema.Schema) ([]byte, error) {
	raw, err := msgpack.Marshal(toEncoded(s))
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return snappy.Encode(nil, raw), nil
}

// Decode reverses Encode. The schema is rebuilt through schema.New so derived
// indexes and relations are computed exactly once.
func Decode(data []byte) (*schema.Schema, error) {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("decompressing snapshot: %w", err)
	}
	var enc encodedSchema
	if err := msgpack.Unmarshal(raw, &enc); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if enc.Version != codecVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", enc.Version)
	}

	tables := make([]*schema.Table, 0, len(enc.Tables))
	for _, t := range enc.Tables {
		tables = append(tables, schema.NewTable(t.Name, t.Columns))
	}
	s, err := schema.New(enc.Name, tables)
	if err != nil {
		return nil, fmt.Errorf("rebuilding snapshot: %w", err)
	}
	return s, nil
}
