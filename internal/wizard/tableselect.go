package wizard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/schemasmith/schemasmith/internal/schema"
	"github.com/schemasmith/schemasmith/internal/selection"
	"github.com/schemasmith/schemasmith/internal/snapshot"
)

// TableSelectResult is returned when the user confirms their selection.
type TableSelectResult struct {
	Selected []*schema.Table
}

// SortField controls the column used for sorting.
type SortField int

const (
	SortByName SortField = iota
	SortByStatus
	SortByColumns
	SortByFKs
)

var sortLabels = []string{"name", "status", "columns", "FKs"}

// tableEntry represents a table row in the selector.
type tableEntry struct {
	table    *schema.Table
	status   snapshot.Status // empty when the table has no pending changes
	selected bool
	visible  bool // false when filtered out by search
}

// TableSelectModel is the bubbletea model for interactive table selection.
// Tables pending as NEW or MODIFIED are highlighted and preselected.
type TableSelectModel struct {
	entries   []tableEntry
	cursor    int
	filter    textinput.Model
	filtering bool // true when the filter bar is active

	sortField SortField
	sortAsc   bool

	done      bool
	cancelled bool
	width     int
	height    int

	// precomputed visible indexes for fast cursor navigation
	visibleIdxs []int
}

// NewTableSelectModel creates a new table selector. status holds the pending
// status of changed tables; those tables start selected.
func NewTableSelectModel(tables []*schema.Table, status map[string]snapshot.Status) TableSelectModel {
	entries := make([]tableEntry, len(tables))
	for i, t := range tables {
		st := status[t.Name]
		entries[i] = tableEntry{
			table:    t,
			status:   st,
			selected: st != "",
			visible:  true,
		}
	}

	filter := textinput.New()
	filter.Prompt = "  Filter: "
	filter.Placeholder = "table name"
	filter.CharLimit = 64

	m := TableSelectModel{
		entries: entries,
		filter:  filter,
		sortAsc: true,
		width:   100,
		height:  24,
	}
	m.sortEntries()
	m.recomputeVisible()
	return m
}

func (m TableSelectModel) Init() tea.Cmd {
	return nil
}

func (m TableSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m TableSelectModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.cancelled = true
		m.done = true
		return m, tea.Quit

	case "up", "k":
		m.moveCursor(-1)

	case "down", "j":
		m.moveCursor(1)

	case "home":
		if len(m.visibleIdxs) > 0 {
			m.cursor = 0
		}

	case "end":
		if len(m.visibleIdxs) > 0 {
			m.cursor = len(m.visibleIdxs) - 1
		}

	case " ":
		m.toggleCurrent()

	case "a":
		m.selectAll()

	case "n":
		m.deselectAll()

	case "c":
		m.selectChanged()

	case "/":
		m.filtering = true
		m.filter.SetValue("")
		return m, m.filter.Focus()

	case "s":
		m.cycleSort()

	case "d":
		m.selectDependencies()

	case "enter":
		if m.selectedCount() == 0 {
			return m, nil // don't allow empty selection
		}
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m TableSelectModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter()
		return m, nil

	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m TableSelectModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Select Tables") + "\n\n")

	// Filter bar
	if m.filtering {
		b.WriteString(m.filter.View() + "\n\n")
	} else if v := m.filter.Value(); v != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  Filter: %s (/ to change, esc in filter to clear)", v)) + "\n\n")
	}

	header := fmt.Sprintf("  %-3s %-30s %-9s %7s %4s", "", "Table", "Status", "Columns", "FKs")
	b.WriteString(dimStyle.Render(header) + "\n")
	b.WriteString(dimStyle.Render("  "+strings.Repeat("─", min(m.width-4, 60))) + "\n")

	// Reserve space for header, footer, summary
	listHeight := max(m.height-12, 5)

	start := 0
	if m.cursor >= listHeight {
		start = m.cursor - listHeight + 1
	}
	end := min(start+listHeight, len(m.visibleIdxs))

	if len(m.visibleIdxs) == 0 {
		b.WriteString(dimStyle.Render("  No tables match the filter\n"))
	}

	for vi := start; vi < end; vi++ {
		e := m.entries[m.visibleIdxs[vi]]

		checkbox := "[ ]"
		if e.selected {
			checkbox = selectedStyle.Render("[x]")
		}

		cursor := "  "
		nameStyle := lipgloss.NewStyle().Width(30)
		if vi == m.cursor {
			cursor = highlightStyle.Render("> ")
			nameStyle = nameStyle.Bold(true)
		}

		line := fmt.Sprintf("%s%s %s %s %7d %4d",
			cursor, checkbox, nameStyle.Render(truncate(e.table.Name, 30)),
			Status(e.status, 9), len(e.table.Columns), len(e.table.ForeignKeyColumns()))
		b.WriteString(line + "\n")
	}

	if len(m.visibleIdxs) > listHeight {
		pct := 0
		if len(m.visibleIdxs) > 1 {
			pct = m.cursor * 100 / (len(m.visibleIdxs) - 1)
		}
		b.WriteString(dimStyle.Render(fmt.Sprintf("\n  Showing %d-%d of %d (%d%%)",
			start+1, end, len(m.visibleIdxs), pct)) + "\n")
	}

	b.WriteString("\n")

	selTables := m.getSelected()
	summary := fmt.Sprintf("  Selected: %d tables, %d changed", len(selTables), m.changedSelected())
	b.WriteString(summaryStyle.Render(summary) + "\n")

	orphans := selection.FindOrphanedReferences(selTables)
	if len(orphans) > 0 {
		shown := orphans
		if len(shown) > 3 {
			shown = shown[:3]
		}
		for _, o := range shown {
			b.WriteString(warnStyle.Render(fmt.Sprintf(
				"  ⚠ %s.%s references %s (not selected)", o.Table, o.Column, o.ReferencedTable)) + "\n")
		}
		if len(orphans) > 3 {
			b.WriteString(warnStyle.Render(fmt.Sprintf(
				"  ⚠ ...and %d more orphaned references", len(orphans)-3)) + "\n")
		}
	}

	dir := "↑"
	if !m.sortAsc {
		dir = "↓"
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("  Sort: %s %s", sortLabels[m.sortField], dir)) + "\n")

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  space toggle • a all • n none • c changed • / filter • s sort • d add deps • enter confirm • q quit") + "\n")

	return b.String()
}

// Result returns the selection result, or nil if cancelled.
func (m TableSelectModel) Result() *TableSelectResult {
	if m.cancelled {
		return nil
	}
	selected := m.getSelected()
	if len(selected) == 0 {
		return nil
	}
	return &TableSelectResult{Selected: selected}
}

// Done returns true if the model finished.
func (m TableSelectModel) Done() bool {
	return m.done
}

// Cancelled returns true if the user cancelled.
func (m TableSelectModel) Cancelled() bool {
	return m.cancelled
}

func (m *TableSelectModel) moveCursor(delta int) {
	if len(m.visibleIdxs) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.visibleIdxs)-1)
}

func (m *TableSelectModel) toggleCurrent() {
	if m.cursor < 0 || m.cursor >= len(m.visibleIdxs) {
		return
	}
	idx := m.visibleIdxs[m.cursor]
	m.entries[idx].selected = !m.entries[idx].selected
}

func (m *TableSelectModel) selectAll() {
	for _, vi := range m.visibleIdxs {
		m.entries[vi].selected = true
	}
}

func (m *TableSelectModel) deselectAll() {
	for _, vi := range m.visibleIdxs {
		m.entries[vi].selected = false
	}
}

// selectChanged selects exactly the visible tables with a pending status.
func (m *TableSelectModel) selectChanged() {
	for _, vi := range m.visibleIdxs {
		m.entries[vi].selected = m.entries[vi].status != ""
	}
}

// selectDependencies adds every table referenced by a selected table.
func (m *TableSelectModel) selectDependencies() {
	needed := make(map[string]bool)
	for _, o := range selection.FindOrphanedReferences(m.getSelected()) {
		needed[o.ReferencedTable] = true
	}
	for i := range m.entries {
		if needed[m.entries[i].table.Name] {
			m.entries[i].selected = true
		}
	}
}

func (m *TableSelectModel) applyFilter() {
	lower := strings.ToLower(m.filter.Value())
	for i := range m.entries {
		m.entries[i].visible = lower == "" ||
			strings.Contains(strings.ToLower(m.entries[i].table.Name), lower)
	}
	m.recomputeVisible()
	if m.cursor >= len(m.visibleIdxs) {
		m.cursor = max(0, len(m.visibleIdxs)-1)
	}
}

func (m *TableSelectModel) recomputeVisible() {
	m.visibleIdxs = m.visibleIdxs[:0]
	for i, e := range m.entries {
		if e.visible {
			m.visibleIdxs = append(m.visibleIdxs, i)
		}
	}
}

func (m *TableSelectModel) cycleSort() {
	if m.sortAsc {
		m.sortAsc = false
	} else {
		m.sortField = (m.sortField + 1) % SortField(len(sortLabels))
		m.sortAsc = true
	}
	m.sortEntries()
	m.recomputeVisible()
	m.cursor = 0
}

// statusRank orders NEW before MODIFIED before unchanged.
func statusRank(s snapshot.Status) int {
	switch s {
	case snapshot.StatusNew:
		return 0
	case snapshot.StatusModified:
		return 1
	}
	return 2
}

func (m *TableSelectModel) sortEntries() {
	sort.SliceStable(m.entries, func(i, j int) bool {
		a, b := m.entries[i], m.entries[j]
		var less bool
		switch m.sortField {
		case SortByName:
			less = a.table.Name < b.table.Name
		case SortByStatus:
			less = statusRank(a.status) < statusRank(b.status)
		case SortByColumns:
			less = len(a.table.Columns) < len(b.table.Columns)
		case SortByFKs:
			less = len(a.table.ForeignKeyColumns()) < len(b.table.ForeignKeyColumns())
		}
		if !m.sortAsc {
			return !less
		}
		return less
	})
}

func (m *TableSelectModel) selectedCount() int {
	n := 0
	for _, e := range m.entries {
		if e.selected {
			n++
		}
	}
	return n
}

func (m *TableSelectModel) changedSelected() int {
	n := 0
	for _, e := range m.entries {
		if e.selected && e.status != "" {
			n++
		}
	}
	return n
}

func (m *TableSelectModel) getSelected() []*schema.Table {
	var tables []*schema.Table
	for _, e := range m.entries {
		if e.selected {
			tables = append(tables, e.table)
		}
	}
	return tables
}

// SelectedNames returns the names of selected tables.
func (m *TableSelectModel) SelectedNames() []string {
	var names []string
	for _, e := range m.entries {
		if e.selected {
			names = append(names, e.table.Name)
		}
	}
	return names
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-1] + "…"
}
