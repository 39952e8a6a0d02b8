package emit

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/schemasmith/schemasmith/internal/collection"
	"github.com/schemasmith/schemasmith/internal/schema"
)

// Collection emits the API collection of the project, one folder per table.
type Collection struct{}

func (Collection) Name() string     { return "collection" }
func (Collection) SchemaWide() bool { return false }

// CollectionPath returns where the API collection of ctx is written.
func CollectionPath(ctx *Context) string {
	return ctx.path(ctx.Paths.Collections, ctx.Project+".postman_collection.json")
}

func (Collection) Emit(ctx *Context, t *schema.Table) ([]Outcome, error) {
	path := CollectionPath(ctx)

	existing, err := collection.Load(path)
	created := errors.Is(err, os.ErrNotExist)
	switch {
	case created:
		existing = collection.New(ctx.Project)
	case err != nil:
		return nil, fmt.Errorf("loading collection: %w", err)
	}

	before, err := existing.Marshal()
	if err != nil {
		return nil, err
	}
	folder := collection.BuildFolder(t, ctx.Actions, ctx.Modes)
	merged := collection.Merge(existing, &collection.Collection{Item: []*collection.Folder{folder}})
	after, err := merged.Marshal()
	if err != nil {
		return nil, err
	}

	kind := KindUpdated
	switch {
	case created:
		kind = KindCreated
	case bytes.Equal(before, after):
		return []Outcome{ctx.record("collection", t.Name, path, KindUnchanged)}, nil
	}
	if err := merged.Write(path); err != nil {
		return nil, fmt.Errorf("writing collection: %w", err)
	}
	return []Outcome{ctx.record("collection", t.Name, path, kind)}, nil
}
