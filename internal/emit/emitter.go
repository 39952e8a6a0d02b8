package emit

import (
	"fmt"

	"github.com/schemasmith/schemasmith/internal/schema"
)

// Emitter generates or updates one kind of artifact.
type Emitter interface {
	Name() string
	// SchemaWide emitters produce artifacts covering the whole schema. They run
	// once per generation and receive a nil table.
	SchemaWide() bool
	Emit(ctx *Context, t *schema.Table) ([]Outcome, error)
}

// Names lists the emitters in run order.
var Names = []string{"model", "factory", "request", "resource", "service", "controller", "routes", "lang", "collection"}

var registry = map[string]Emitter{
	"model":      Model{},
	"factory":    Factory{},
	"request":    Request{},
	"resource":   Resource{},
	"service":    Service{},
	"controller": Controller{},
	"routes":     Routes{},
	"lang":       Lang{},
	"collection": Collection{},
}

// Lookup resolves emitter names, keeping the run order of Names. An empty list
// selects every emitter.
func Lookup(names []string) ([]Emitter, error) {
	if len(names) == 0 {
		names = Names
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := registry[n]; !ok {
			return nil, fmt.Errorf("unknown artifact %q", n)
		}
		want[n] = true
	}
	var out []Emitter
	for _, n := range Names {
		if want[n] {
			out = append(out, registry[n])
		}
	}
	return out, nil
}
