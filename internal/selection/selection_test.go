package selection

import (
	"testing"

	"github.com/schemasmith/schemasmith/internal/schema"
)

func fk(table string) *schema.ForeignKey {
	return &schema.ForeignKey{ReferencedTable: table, ReferencedColumn: "id"}
}

func testTables() []*schema.Table {
	id := schema.Column{Name: "id", Type: schema.BigInteger, Key: schema.KeyPrimary}
	return []*schema.Table{
		schema.NewTable("customers", []schema.Column{id}),
		schema.NewTable("orders", []schema.Column{id,
			{Name: "customer_id", Type: schema.BigInteger, ForeignKey: fk("customers")}}),
		schema.NewTable("order_items", []schema.Column{id,
			{Name: "order_id", Type: schema.BigInteger, ForeignKey: fk("orders")},
			{Name: "product_id", Type: schema.BigInteger, ForeignKey: fk("products")}}),
		schema.NewTable("products", []schema.Column{id}),
		schema.NewTable("audit_log", []schema.Column{id}),
	}
}

func TestFilterByPattern(t *testing.T) {
	tables := testTables()

	tests := []struct {
		name    string
		pattern string
		want    int
	}{
		{"wildcard all", "*", 5},
		{"prefix match", "order*", 2},
		{"suffix match", "*log", 1},
		{"exact match", "customers", 1},
		{"character class", "[op]r*", 3},
		{"no match", "nonexistent", 0},
		{"malformed pattern", "[", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByPattern(tables, tt.pattern)
			if len(got) != tt.want {
				t.Errorf("FilterByPattern(%q) returned %d tables, want %d", tt.pattern, len(got), tt.want)
			}
		})
	}
}

func TestSelect(t *testing.T) {
	tables := testTables()

	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"no criteria", Criteria{}, []string{"customers", "orders", "order_items", "products", "audit_log"}},
		{"several patterns keep schema order", Criteria{Patterns: []string{"products", "customers"}}, []string{"customers", "products"}},
		{"changed only", Criteria{ChangedOnly: true, Changed: []string{"orders", "audit_log"}}, []string{"orders", "audit_log"}},
		{"changed only with nothing changed", Criteria{ChangedOnly: true}, nil},
		{"pattern and changed", Criteria{Patterns: []string{"order*"}, ChangedOnly: true, Changed: []string{"orders", "audit_log"}}, []string{"orders"}},
		{"changed list ignored without flag", Criteria{Changed: []string{"orders"}}, []string{"customers", "orders", "order_items", "products", "audit_log"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(tables, tt.c)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d tables, want %v", len(got), tt.want)
			}
			for i, tbl := range got {
				if tbl.Name != tt.want[i] {
					t.Errorf("position %d: got %s, want %s", i, tbl.Name, tt.want[i])
				}
			}
		})
	}
}

func TestSplitPatterns(t *testing.T) {
	got := SplitPatterns(" users, order_* ,,")
	if len(got) != 2 || got[0] != "users" || got[1] != "order_*" {
		t.Errorf("unexpected patterns %q", got)
	}
	if SplitPatterns("") != nil {
		t.Error("expected nil for empty input")
	}
}

func TestFindOrphanedReferences(t *testing.T) {
	tables := testTables()
	selected := []*schema.Table{tables[1], tables[2]} // orders + order_items

	orphans := FindOrphanedReferences(selected)
	if len(orphans) != 2 {
		t.Fatalf("expected 2 orphaned refs, got %d", len(orphans))
	}
	if orphans[0].Table != "orders" || orphans[0].ReferencedTable != "customers" || orphans[0].Column != "customer_id" {
		t.Errorf("unexpected orphan %+v", orphans[0])
	}
	if orphans[1].Table != "order_items" || orphans[1].ReferencedTable != "products" {
		t.Errorf("unexpected orphan %+v", orphans[1])
	}
}

func TestFindOrphanedReferences_AllSelected(t *testing.T) {
	if orphans := FindOrphanedReferences(testTables()); len(orphans) != 0 {
		t.Errorf("expected no orphans, got %v", orphans)
	}
}
