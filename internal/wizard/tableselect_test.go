package wizard

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/schemasmith/schemasmith/internal/schema"
	"github.com/schemasmith/schemasmith/internal/snapshot"
)

func testTables() []*schema.Table {
	id := schema.Column{Name: "id", Type: schema.BigInteger, Key: schema.KeyPrimary}
	ref := func(col, table string) schema.Column {
		return schema.Column{Name: col, Type: schema.BigInteger,
			ForeignKey: &schema.ForeignKey{ReferencedTable: table, ReferencedColumn: "id"}}
	}
	return []*schema.Table{
		schema.NewTable("customers", []schema.Column{id, {Name: "name", Type: schema.String}}),
		schema.NewTable("orders", []schema.Column{id, ref("customer_id", "customers")}),
		schema.NewTable("order_items", []schema.Column{id, ref("order_id", "orders")}),
		schema.NewTable("products", []schema.Column{id}),
	}
}

func testStatus() map[string]snapshot.Status {
	return map[string]snapshot.Status{
		"orders":   snapshot.StatusModified,
		"products": snapshot.StatusNew,
	}
}

func TestNewTableSelectModel(t *testing.T) {
	m := NewTableSelectModel(testTables(), nil)
	if len(m.entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(m.entries))
	}
	if m.selectedCount() != 0 {
		t.Errorf("expected 0 selected initially, got %d", m.selectedCount())
	}
	if len(m.visibleIdxs) != 4 {
		t.Errorf("expected 4 visible, got %d", len(m.visibleIdxs))
	}
}

func TestNewTableSelectModel_ChangedPreselected(t *testing.T) {
	m := NewTableSelectModel(testTables(), testStatus())
	names := m.SelectedNames()
	if len(names) != 2 || names[0] != "orders" || names[1] != "products" {
		t.Errorf("expected changed tables preselected, got %v", names)
	}
}

func TestToggleCurrent(t *testing.T) {
	m := NewTableSelectModel(testTables(), nil)
	m.toggleCurrent()
	if m.selectedCount() != 1 {
		t.Errorf("expected 1 selected after toggle, got %d", m.selectedCount())
	}
	m.toggleCurrent()
	if m.selectedCount() != 0 {
		t.Errorf("expected 0 selected after second toggle, got %d", m.selectedCount())
	}
}

func TestSelectAll_DeselectAll_Changed(t *testing.T) {
	m := NewTableSelectModel(testTables(), testStatus())
	m.selectAll()
	if m.selectedCount() != 4 {
		t.Errorf("selectAll: expected 4, got %d", m.selectedCount())
	}
	m.deselectAll()
	if m.selectedCount() != 0 {
		t.Errorf("deselectAll: expected 0, got %d", m.selectedCount())
	}
	m.selectChanged()
	if m.selectedCount() != 2 || m.changedSelected() != 2 {
		t.Errorf("selectChanged: expected the 2 changed tables, got %v", m.SelectedNames())
	}
}

func TestMoveCursor(t *testing.T) {
	m := NewTableSelectModel(testTables(), nil)
	m.moveCursor(1)
	if m.cursor != 1 {
		t.Errorf("cursor should be 1 after down, got %d", m.cursor)
	}
	m.moveCursor(-5)
	if m.cursor != 0 {
		t.Errorf("cursor should clamp at 0, got %d", m.cursor)
	}
	m.moveCursor(100)
	if m.cursor != 3 {
		t.Errorf("cursor should clamp at 3, got %d", m.cursor)
	}
}

func TestApplyFilter(t *testing.T) {
	m := NewTableSelectModel(testTables(), nil)
	m.filter.SetValue("ORDER")
	m.applyFilter()
	if len(m.visibleIdxs) != 2 {
		t.Errorf("expected 2 visible with 'ORDER' filter, got %d", len(m.visibleIdxs))
	}

	m.filter.SetValue("")
	m.applyFilter()
	if len(m.visibleIdxs) != 4 {
		t.Errorf("expected 4 visible with empty filter, got %d", len(m.visibleIdxs))
	}
}

func TestFilterKeys(t *testing.T) {
	m := NewTableSelectModel(testTables(), nil)
	var model tea.Model = m
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	for _, r := range "prod" {
		model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	got := model.(TableSelectModel)
	if !got.filtering || len(got.visibleIdxs) != 1 {
		t.Fatalf("expected filtering to products only, got %d visible", len(got.visibleIdxs))
	}

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	got = model.(TableSelectModel)
	if got.filtering || len(got.visibleIdxs) != 4 {
		t.Errorf("esc should clear the filter, got %d visible", len(got.visibleIdxs))
	}
}

func TestSelectDependencies(t *testing.T) {
	m := NewTableSelectModel(testTables(), nil)
	for i, idx := range m.visibleIdxs {
		if m.entries[idx].table.Name == "order_items" {
			m.cursor = i
			break
		}
	}
	m.toggleCurrent()
	m.selectDependencies()

	selected := make(map[string]bool)
	for _, name := range m.SelectedNames() {
		selected[name] = true
	}
	if !selected["order_items"] || !selected["orders"] {
		t.Errorf("orders should be auto-selected as dependency, got %v", m.SelectedNames())
	}
	if selected["customers"] {
		t.Error("only direct references are added per keypress")
	}
}

func TestCycleSort(t *testing.T) {
	m := NewTableSelectModel(testTables(), testStatus())
	if m.sortField != SortByName || !m.sortAsc {
		t.Fatalf("initial sort should be name ascending")
	}
	m.cycleSort() // name desc
	if m.sortField != SortByName || m.sortAsc {
		t.Errorf("after first cycle: expected name desc")
	}
	m.cycleSort() // status asc
	if m.sortField != SortByStatus || !m.sortAsc {
		t.Fatalf("after second cycle: expected status asc")
	}
	if first := m.entries[0].table.Name; first != "products" {
		t.Errorf("NEW tables should sort first, got %s", first)
	}
}

func TestViewRenders(t *testing.T) {
	m := NewTableSelectModel(testTables(), testStatus())
	m.width = 80
	m.height = 24
	v := m.View()
	for _, want := range []string{"Select Tables", "customers", "MODIFIED", "NEW", "Selected: 2 tables, 2 changed"} {
		if !strings.Contains(v, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestViewWarnsOrphans(t *testing.T) {
	m := NewTableSelectModel(testTables(), map[string]snapshot.Status{"orders": snapshot.StatusModified})
	if v := m.View(); !strings.Contains(v, "orders.customer_id references customers") {
		t.Errorf("expected orphan warning, got:\n%s", v)
	}
}

func TestUpdateEnterWithNoSelection(t *testing.T) {
	m := NewTableSelectModel(testTables(), nil)
	result, cmd := m.updateNormal(tea.KeyMsg{Type: tea.KeyEnter})
	rm := result.(TableSelectModel)
	if rm.Done() {
		t.Error("enter with no selection should not finish")
	}
	if cmd != nil {
		t.Error("enter with no selection should return nil cmd")
	}
}

func TestUpdateEnterWithSelection(t *testing.T) {
	m := NewTableSelectModel(testTables(), testStatus())
	result, _ := m.updateNormal(tea.KeyMsg{Type: tea.KeyEnter})
	rm := result.(TableSelectModel)
	if !rm.Done() || rm.Cancelled() {
		t.Fatal("enter with selection should finish")
	}
	r := rm.Result()
	if r == nil || len(r.Selected) != 2 {
		t.Fatalf("expected 2 selected, got %+v", r)
	}
}

func TestResultNilWhenCancelled(t *testing.T) {
	m := NewTableSelectModel(testTables(), testStatus())
	result, _ := m.updateNormal(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	rm := result.(TableSelectModel)
	if !rm.Cancelled() {
		t.Error("q should cancel")
	}
	if rm.Result() != nil {
		t.Error("result should be nil when cancelled")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short string: got %q", got)
	}
	got := truncate("a_very_long_table_name", 10)
	if !strings.HasSuffix(got, "…") || !strings.HasPrefix(got, "a_very_lo") {
		t.Errorf("unexpected truncation %q", got)
	}
}
