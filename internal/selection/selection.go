// Package selection narrows a reflected schema down to the tables a generation
// run works on.
package selection

import (
	"path"
	"slices"
	"strings"

	"github.com/schemasmith/schemasmith/internal/schema"
)

// Criteria describes which tables to generate for. Zero criteria select everything.
type Criteria struct {
	Patterns    []string // table names or globs such as "order_*"
	ChangedOnly bool
	Changed     []string // NEW or MODIFIED tables, consulted when ChangedOnly is set
}

// Select returns the tables matching c, in schema order.
func Select(tables []*schema.Table, c Criteria) []*schema.Table {
	var selected []*schema.Table
	for _, t := range tables {
		if len(c.Patterns) > 0 && !matchAny(t.Name, c.Patterns) {
			continue
		}
		if c.ChangedOnly && !slices.Contains(c.Changed, t.Name) {
			continue
		}
		selected = append(selected, t)
	}
	return selected
}

// FilterByPattern returns tables matching a glob-like pattern (e.g., "order_*").
func FilterByPattern(tables []*schema.Table, pattern string) []*schema.Table {
	return Select(tables, Criteria{Patterns: []string{pattern}})
}

// SplitPatterns splits a comma separated flag value into trimmed patterns.
func SplitPatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// OrphanedRef represents a foreign key pointing to a table not in the selection.
type OrphanedRef struct {
	Table           string
	Column          string
	ReferencedTable string
}

// FindOrphanedReferences returns foreign keys that reference tables not in the selection.
// Artifacts of the selected tables still reference those tables' classes.
func FindOrphanedReferences(selected []*schema.Table) []OrphanedRef {
	selectedNames := make(map[string]bool)
	for _, t := range selected {
		selectedNames[t.Name] = true
	}

	var orphans []OrphanedRef
	for _, t := range selected {
		for _, c := range t.ForeignKeyColumns() {
			if !selectedNames[c.ForeignKey.ReferencedTable] {
				orphans = append(orphans, OrphanedRef{
					Table:           t.Name,
					Column:          c.Name,
					ReferencedTable: c.ForeignKey.ReferencedTable,
				})
			}
		}
	}
	return orphans
}

func matchAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := path.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
