package schema

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fk(table, column string) *ForeignKey {
	return &ForeignKey{ReferencedTable: table, ReferencedColumn: column}
}

func blogTables() []*Table {
	users := NewTable("users", []Column{
		{Name: "id", Type: BigInteger, Unsigned: true, Key: KeyPrimary},
		{Name: "name", Type: String, MaxLength: IntPtr(255)},
		{Name: "email", Type: String, MaxLength: IntPtr(255), Key: KeyUnique},
		{Name: "created_at", Type: DateTime, Nullable: true},
		{Name: "updated_at", Type: DateTime, Nullable: true},
	})
	posts := NewTable("posts", []Column{
		{Name: "id", Type: BigInteger, Unsigned: true, Key: KeyPrimary},
		{Name: "user_id", Type: BigInteger, Unsigned: true, ForeignKey: fk("users", "id")},
		{Name: "title", Type: String, MaxLength: IntPtr(120)},
	})
	tags := NewTable("tags", []Column{
		{Name: "id", Type: BigInteger, Key: KeyPrimary},
		{Name: "label", Type: String},
	})
	postTag := NewTable("post_tag", []Column{
		{Name: "id", Type: BigInteger, Key: KeyPrimary},
		{Name: "post_id", Type: BigInteger, ForeignKey: fk("posts", "id")},
		{Name: "tag_id", Type: BigInteger, ForeignKey: fk("tags", "id")},
		{Name: "created_at", Type: DateTime, Nullable: true},
	})
	return []*Table{postTag, posts, tags, users}
}

func TestNewInfersRelations(t *testing.T) {
	s, err := New("blog", blogTables())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	posts, _ := s.Table("posts")
	if len(posts.Relations()) != 1 {
		t.Fatalf("expected 1 relation on posts, got %d", len(posts.Relations()))
	}
	r := posts.Relations()[0]
	if r.Kind != BelongsTo || r.ReferencedTable != "users" || r.Name != "user" || r.LocalKey != "user_id" {
		t.Errorf("unexpected posts relation: %+v", r)
	}

	users, _ := s.Table("users")
	if len(users.Relations()) != 1 {
		t.Fatalf("expected 1 relation on users, got %d", len(users.Relations()))
	}
	r = users.Relations()[0]
	if r.Kind != HasMany || r.ReferencedTable != "posts" || r.Name != "posts" || r.ReferencedKey != "user_id" {
		t.Errorf("unexpected users relation: %+v", r)
	}

	tags, _ := s.Table("tags")
	if len(tags.Relations()) != 0 {
		t.Errorf("expected pivot to contribute no relations to tags, got %d", len(tags.Relations()))
	}
}

func TestPivotDetection(t *testing.T) {
	s, err := New("blog", blogTables())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pivot, _ := s.Table("post_tag")
	if !pivot.IsPivot() {
		t.Error("expected post_tag to be a pivot")
	}
	if len(pivot.Relations()) != 0 {
		t.Errorf("expected no relations on pivot, got %d", len(pivot.Relations()))
	}
	posts, _ := s.Table("posts")
	if posts.IsPivot() {
		t.Error("posts has a non-key column and must not be a pivot")
	}
	if pivot.BookkeepingCount() != 2 {
		t.Errorf("expected 2 bookkeeping columns, got %d", pivot.BookkeepingCount())
	}
}

func TestRelationSymmetry(t *testing.T) {
	comments := NewTable("comments", []Column{
		{Name: "id", Type: BigInteger, Key: KeyPrimary},
		{Name: "post_id", Type: BigInteger, ForeignKey: fk("posts", "id")},
		{Name: "author_id", Type: BigInteger, ForeignKey: fk("users", "id")},
		{Name: "body", Type: String},
	})
	s, err := New("blog", append(blogTables(), comments))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, table := range s.Tables() {
		if table.IsPivot() {
			continue
		}
		for _, c := range table.ForeignKeyColumns() {
			belongs := 0
			for _, r := range table.Relations() {
				if r.Kind == BelongsTo && r.LocalKey == c.Name {
					belongs++
				}
			}
			if belongs != 1 {
				t.Errorf("%s.%s: expected 1 BelongsTo, got %d", table.Name, c.Name, belongs)
			}
			ref, _ := s.Table(c.ForeignKey.ReferencedTable)
			hasMany := 0
			for _, r := range ref.Relations() {
				if r.Kind == HasMany && r.ReferencedTable == table.Name && r.ReferencedKey == c.Name {
					hasMany++
				}
			}
			if hasMany != 1 {
				t.Errorf("%s.%s: expected 1 HasMany on %s, got %d", table.Name, c.Name, ref.Name, hasMany)
			}
		}
	}
}

func TestNewRejectsDanglingReference(t *testing.T) {
	orphan := NewTable("orders", []Column{
		{Name: "id", Type: BigInteger},
		{Name: "customer_id", Type: BigInteger, ForeignKey: fk("customers", "id")},
		{Name: "total", Type: Decimal},
	})
	_, err := New("shop", []*Table{orphan})
	var dangling *DanglingReferenceError
	if !errors.As(err, &dangling) {
		t.Fatalf("expected DanglingReferenceError, got %v", err)
	}
	if dangling.ReferencedTable != "customers" || dangling.Column != "customer_id" {
		t.Errorf("unexpected error fields: %+v", dangling)
	}
}

func TestNewRejectsDuplicateTable(t *testing.T) {
	a := NewTable("users", []Column{{Name: "id", Type: Integer}})
	b := NewTable("users", []Column{{Name: "id", Type: Integer}})
	if _, err := New("db", []*Table{a, b}); !errors.Is(err, ErrDuplicateTable) {
		t.Errorf("expected ErrDuplicateTable, got %v", err)
	}
}

func TestSchemaEqualIgnoresOrder(t *testing.T) {
	first, err := New("blog", blogTables())
	if err != nil {
		t.Fatal(err)
	}
	tables := blogTables()
	reversed := make([]*Table, 0, len(tables))
	for i := len(tables) - 1; i >= 0; i-- {
		reversed = append(reversed, tables[i])
	}
	second, err := New("blog", reversed)
	if err != nil {
		t.Fatal(err)
	}
	if !first.Equal(second) {
		t.Error("expected schemas built from reordered tables to be equal")
	}
}

func TestSchemaEqualDetectsColumnChange(t *testing.T) {
	first, _ := New("blog", blogTables())
	tables := blogTables()
	for i, tb := range tables {
		if tb.Name == "posts" {
			cols := append([]Column{}, tb.Columns...)
			cols[2].MaxLength = IntPtr(200)
			tables[i] = NewTable("posts", cols)
		}
	}
	second, _ := New("blog", tables)
	if first.Equal(second) {
		t.Error("expected max length change to break equality")
	}
}

func TestColumnEqual(t *testing.T) {
	a := Column{Table: "t", Name: "status", Type: String, Values: []string{"a", "b"}}
	b := a
	b.Values = []string{"a", "b"}
	if !a.Equal(b) {
		t.Error("expected equal columns")
	}
	b.Values = []string{"a", "c"}
	if a.Equal(b) {
		t.Error("expected value set change to break equality")
	}
	c := a
	c.Precision = IntPtr(3)
	if a.Equal(c) {
		t.Error("expected precision change to break equality")
	}
}

func TestTimestampsFlags(t *testing.T) {
	tb := NewTable("logs", []Column{{Name: "id"}, {Name: "created_at"}})
	if !tb.UsesCreatedAt() {
		t.Error("expected created_at")
	}
	if tb.UsesUpdatedAt() {
		t.Error("did not expect updated_at")
	}
}

func TestParseKeyType(t *testing.T) {
	if ParseKeyType("MUL") != KeyNone {
		t.Error("MUL should normalize to none")
	}
	if ParseKeyType("PRI") != KeyPrimary {
		t.Error("PRI should be primary")
	}
}

func TestWriteYAML(t *testing.T) {
	s, err := New("blog", blogTables())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out", "schema.yaml")
	if err := s.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}
	out := string(data)
	for _, want := range []string{"database: blog", "name: post_tag", "pivot: true", "kind: HasMany", "related: posts"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected dump to contain %q", want)
		}
	}
}

func TestSummary(t *testing.T) {
	s, _ := New("blog", blogTables())
	summary := s.Summary()
	if !strings.Contains(summary, "Found 4 tables") || !strings.Contains(summary, "Pivot tables: 1") {
		t.Errorf("unexpected summary: %s", summary)
	}
}
