package discovery

import (
	"context"

	"github.com/schemasmith/schemasmith/internal/schema"
)

// MockReflector returns a fixed schema. Tests swap Schema between runs to simulate
// catalog changes.
type MockReflector struct {
	Schema     *schema.Schema
	ConnectErr error
	ReflectErr error
	Closed     bool
}

func (m *MockReflector) Connect(context.Context) error { return m.ConnectErr }

func (m *MockReflector) Reflect(context.Context) (*schema.Schema, error) {
	if m.ReflectErr != nil {
		return nil, m.ReflectErr
	}
	return m.Schema, nil
}

func (m *MockReflector) Close() error {
	m.Closed = true
	return nil
}
