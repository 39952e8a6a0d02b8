package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/schemasmith/schemasmith/internal/schema"
)

// Status classifies a table against the previous snapshot.
type Status string

const (
	StatusNew      Status = "NEW"
	StatusModified Status = "MODIFIED"
)

// Diff classifies the tables of next against prev. Tables present only in next are
// NEW, tables whose structure differs are MODIFIED, and unchanged or dropped tables
// are omitted.
func Diff(prev, next *schema.Schema) map[string]Status {
	changes := make(map[string]Status)
	for _, t := range next.Tables() {
		old, ok := lookup(prev, t.Name)
		switch {
		case !ok:
			changes[t.Name] = StatusNew
		case !old.Equal(t):
			changes[t.Name] = StatusModified
		}
	}
	return changes
}

func lookup(s *schema.Schema, name string) (*schema.Table, bool) {
	if s == nil {
		return nil, false
	}
	return s.Table(name)
}

// Tracker is the result of one synchronization: the change set and the snapshot
// the current schema is compared with at column level.
type Tracker struct {
	previous    *schema.Schema
	current     *schema.Schema
	changes     map[string]Status
	rotated     bool
	fingerprint string
}

// Sync records current as the latest snapshot of project.
//
// With no latest snapshot, current is saved and every table is NEW. When the latest
// snapshot differs from current it is demoted to previous, current becomes latest and
// tables are classified against the demoted snapshot. When they are equal nothing is
// written and the change set is empty.
//
// Stores implementing FingerprintReader are asked for the latest fingerprint first;
// a match skips decoding the latest snapshot. Otherwise equality falls back to
// schema.Equal.
func Sync(ctx context.Context, store Store, project string, current *schema.Schema) (*Tracker, error) {
	fp, err := Fingerprint(current)
	if err != nil {
		return nil, err
	}

	if fr, ok := store.(FingerprintReader); ok {
		stored, err := fr.Fingerprint(ctx, project, SlotLatest)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if err == nil && stored == fp {
			return unchanged(ctx, store, project, current, fp)
		}
	}

	latest, err := store.Load(ctx, project, SlotLatest)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if latest == nil {
		if err := store.Save(ctx, project, SlotLatest, current); err != nil {
			return nil, fmt.Errorf("saving first snapshot: %w", err)
		}
		return &Tracker{current: current, changes: Diff(nil, current), rotated: true, fingerprint: fp}, nil
	}

	if latest.Equal(current) {
		return unchanged(ctx, store, project, current, fp)
	}

	if err := store.Save(ctx, project, SlotPrevious, latest); err != nil {
		return nil, fmt.Errorf("demoting latest snapshot: %w", err)
	}
	if err := store.Save(ctx, project, SlotLatest, current); err != nil {
		return nil, fmt.Errorf("saving latest snapshot: %w", err)
	}
	return &Tracker{previous: latest, current: current, changes: Diff(latest, current), rotated: true, fingerprint: fp}, nil
}

func unchanged(ctx context.Context, store Store, project string, current *schema.Schema, fp string) (*Tracker, error) {
	previous, err := store.Load(ctx, project, SlotPrevious)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return &Tracker{previous: previous, current: current, changes: map[string]Status{}, fingerprint: fp}, nil
}

// NewTracker builds a tracker from explicit snapshots, for callers that classify
// without a store.
func NewTracker(previous, current *schema.Schema) *Tracker {
	return &Tracker{previous: previous, current: current, changes: Diff(previous, current)}
}

// Changes returns the NEW and MODIFIED tables.
func (t *Tracker) Changes() map[string]Status { return t.changes }

// Changed returns the names of changed tables in sorted order.
func (t *Tracker) Changed() []string {
	names := make([]string, 0, len(t.changes))
	for n := range t.changes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Status returns the classification of table, if it changed.
func (t *Tracker) Status(table string) (Status, bool) {
	s, ok := t.changes[table]
	return s, ok
}

// Rotated reports whether Sync wrote a new latest snapshot.
func (t *Tracker) Rotated() bool { return t.rotated }

// Fingerprint returns the fingerprint of the current schema, or "" for trackers
// built without a store.
func (t *Tracker) Fingerprint() string { return t.fingerprint }

// ColumnChanged reports whether column of table differs between the previous
// snapshot and the current schema. Without a previous snapshot, or when the table
// or column is absent from it, the column counts as unchanged.
func (t *Tracker) ColumnChanged(table, column string) bool {
	if t == nil {
		return false
	}
	prevTable, ok := lookup(t.previous, table)
	if !ok {
		return false
	}
	prevCol, ok := prevTable.Column(column)
	if !ok {
		return false
	}
	curTable, ok := lookup(t.current, table)
	if !ok {
		return false
	}
	curCol, ok := curTable.Column(column)
	if !ok {
		return false
	}
	return !prevCol.Equal(curCol)
}
