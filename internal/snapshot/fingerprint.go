package snapshot

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/spaolacci/murmur3"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/schemasmith/schemasmith/internal/schema"
)

// Fingerprint hashes the canonical encoding of s: tables and columns sorted by
// name, so two schemas that compare Equal share a fingerprint.
func Fingerprint(s *schema.Schema) (string, error) {
	enc := toEncoded(s)
	enc.Name = ""
	slices.SortFunc(enc.Tables, func(a, b encodedTable) int { return cmp.Compare(a.Name, b.Name) })
	for i := range enc.Tables {
		cols := slices.Clone(enc.Tables[i].Columns)
		slices.SortFunc(cols, func(a, b schema.Column) int { return cmp.Compare(a.Name, b.Name) })
		enc.Tables[i].Columns = cols
	}
	raw, err := msgpack.Marshal(enc)
	if err != nil {
		return "", fmt.Errorf("fingerprinting schema: %w", err)
	}
	h1, h2 := murmur3.Sum128(raw)
	return fmt.Sprintf("%016x%016x", h1, h2), nil
}
