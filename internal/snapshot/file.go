package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schemasmith/schemasmith/internal/schema"
)

// FileStore keeps snapshots as files named <project>_<slot> in one directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir. The directory is created on first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (f *FileStore) path(project string, slot Slot) string {
	return filepath.Join(f.dir, key(project, slot))
}

// Load reads a slot. A missing file yields ErrNotFound.
func (f *FileStore) Load(_ context.Context, project string, slot Slot) (*schema.Schema, error) {
	data, err := os.ReadFile(f.path(project, slot))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading %s snapshot: %w", slot, err)
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s snapshot of %s: %w", slot, project, err)
	}
	return s, nil
}

// Save writes a slot atomically.
func (f *FileStore) Save(_ context.Context, project string, slot Slot, s *schema.Schema) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	tmp := f.path(project, slot) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s snapshot: %w", slot, err)
	}
	if err := os.Rename(tmp, f.path(project, slot)); err != nil {
		return fmt.Errorf("replacing %s snapshot: %w", slot, err)
	}
	return nil
}

// Delete removes both slots of project.
func (f *FileStore) Delete(_ context.Context, project string) error {
	for _, slot := range []Slot{SlotPrevious, SlotLatest} {
		if err := os.Remove(f.path(project, slot)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing %s snapshot: %w", slot, err)
		}
	}
	return nil
}

// Close is a no-op.
func (f *FileStore) Close(context.Context) error { return nil }
