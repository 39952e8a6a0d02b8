// Package snapshot persists reflected schemas between runs and classifies what
// changed since the last one.
package snapshot

import (
	"context"
	"errors"

	"github.com/schemasmith/schemasmith/internal/schema"
)

// Slot names one of the two snapshots kept per project.
type Slot string

const (
	SlotPrevious Slot = "previous"
	SlotLatest   Slot = "latest"
)

// ErrNotFound is returned by Load when the slot has never been written.
var ErrNotFound = errors.New("snapshot not found")

// Store keeps the previous and latest schema snapshot of each project.
type Store interface {
	Load(ctx context.Context, project string, slot Slot) (*schema.Schema, error)
	Save(ctx context.Context, project string, slot Slot, s *schema.Schema) error
	Delete(ctx context.Context, project string) error
	Close(ctx context.Context) error
}

// FingerprintReader is implemented by stores that keep the fingerprint of a slot
// beside its data and can return it without decoding the snapshot.
type FingerprintReader interface {
	Fingerprint(ctx context.Context, project string, slot Slot) (string, error)
}

func key(project string, slot Slot) string {
	return project + "_" + string(slot)
}
