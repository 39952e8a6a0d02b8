package discovery

import (
	"context"

	"github.com/schemasmith/schemasmith/internal/config"
	"github.com/schemasmith/schemasmith/internal/schema"
	"github.com/schemasmith/schemasmith/internal/typemap"
)

// Reflector reflects the schema of a source database.
type Reflector interface {
	// Connect establishes a read-only connection to the source database.
	Connect(ctx context.Context) error

	// Reflect runs the catalog query and builds a validated schema with relations
	// inferred. Any failure aborts; no partial schema is returned.
	Reflect(ctx context.Context) (*schema.Schema, error)

	// Close closes the database connection.
	Close() error
}

// New creates a Reflector for the given source configuration. Tables named in ignore
// are excluded from the catalog query.
func New(cfg *config.SourceConfig, ignore []string, types *typemap.TypeMap) (Reflector, error) {
	if types == nil {
		types = typemap.ForDatabase(cfg.Type)
	}
	switch cfg.Type {
	case "mysql", "mariadb":
		return NewMySQL(cfg, ignore, types), nil
	case "postgresql":
		return NewPostgres(cfg, ignore, types), nil
	default:
		return nil, &UnsupportedDBError{DBType: cfg.Type}
	}
}

// UnsupportedDBError is returned when the source DB type is not supported.
type UnsupportedDBError struct {
	DBType string
}

func (e *UnsupportedDBError) Error() string {
	return "unsupported database type: " + e.DBType
}
