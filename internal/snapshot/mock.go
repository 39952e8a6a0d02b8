package snapshot

import (
	"context"

	"github.com/schemasmith/schemasmith/internal/schema"
)

// MockStore is an in-memory Store for tests.
type MockStore struct {
	Slots   map[string]*schema.Schema
	LoadErr error
	SaveErr error
	Saves   int
	Loads   int
}

// NewMockStore returns an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{Slots: make(map[string]*schema.Schema)}
}

func (m *MockStore) Load(_ context.Context, project string, slot Slot) (*schema.Schema, error) {
	m.Loads++
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	s, ok := m.Slots[key(project, slot)]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *MockStore) Save(_ context.Context, project string, slot Slot, s *schema.Schema) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saves++
	m.Slots[key(project, slot)] = s
	return nil
}

func (m *MockStore) Delete(_ context.Context, project string) error {
	delete(m.Slots, key(project, SlotPrevious))
	delete(m.Slots, key(project, SlotLatest))
	return nil
}

func (m *MockStore) Close(context.Context) error { return nil }
