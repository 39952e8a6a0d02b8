package collection

import (
	"github.com/google/uuid"

	"github.com/schemasmith/schemasmith/internal/action"
	"github.com/schemasmith/schemasmith/internal/derive"
	"github.com/schemasmith/schemasmith/internal/naming"
	"github.com/schemasmith/schemasmith/internal/schema"
)

// excludedColumns never appear in request bodies.
var excludedColumns = map[string]bool{"id": true, "created_at": true, "updated_at": true}

// Modes holds the body encodings of the store and bulk store requests.
type Modes struct {
	Store     BodyMode
	BulkStore BodyMode
}

// DefaultModes encodes both write requests as raw JSON.
var DefaultModes = Modes{Store: Raw{}, BulkStore: Raw{}}

// Build returns a collection with one folder per table and one request per action.
func Build(project string, tables []*schema.Table, actions []action.Action, modes Modes) *Collection {
	c := New(project)
	for _, t := range tables {
		c.Item = append(c.Item, BuildFolder(t, actions, modes))
	}
	return c
}

// BuildFolder returns the folder of requests for one table.
func BuildFolder(t *schema.Table, actions []action.Action, modes Modes) *Folder {
	f := &Folder{ID: uuid.NewString(), Name: naming.Title(t.Name)}
	fields := bodyFields(t)
	for _, a := range actions {
		f.Item = append(f.Item, &Item{
			ID:       uuid.NewString(),
			Name:     a.Label,
			Request:  buildRequest(t, a, fields, modes),
			Response: []any{},
		})
	}
	return f
}

func bodyFields(t *schema.Table) []Field {
	var fields []Field
	for _, col := range t.Columns {
		if excludedColumns[col.Name] {
			continue
		}
		fields = append(fields, Field{Key: col.Name, Description: derive.Describe(col)})
	}
	return fields
}

func buildRequest(t *schema.Table, a action.Action, fields []Field, modes Modes) Request {
	segment := naming.RouteSegment(t.Name)
	path := []string{segment}
	if a.ByID {
		path = append(path, "{{"+naming.VarName(t.Name, naming.Singular)+"_id}}")
	}

	req := Request{Method: a.Method, Header: []Param{}}
	var query []Param

	switch a {
	case action.GetAll:
		query = []Param{
			{Key: "limit", Value: "1", Description: "Max page size"},
			{Key: "page", Value: "1", Description: "Current page"},
		}
	case action.Store:
		req.Body = modeOrDefault(modes.Store).Body(fields, false)
	case action.BulkStore:
		path = append(path, "bulk")
		req.Body = modeOrDefault(modes.BulkStore).Body(fields, true)
	case action.Update:
		for _, f := range fields {
			query = append(query, Param{Key: f.Key, Value: f.sampleValue(), Description: f.Description})
		}
	case action.BulkDelete:
		req.Body = rawBody("{\n    \"ids\": []\n}")
	}

	req.URL = newURL(path, query)
	return req
}

func modeOrDefault(m BodyMode) BodyMode {
	if m == nil {
		return Raw{}
	}
	return m
}

// Merge folds generated into existing. Requests already present keep their id
// and are refreshed with the generated URL and body; new requests and folders are
// appended; anything else in existing is left alone.
func Merge(existing, generated *Collection) *Collection {
	if existing == nil {
		return generated
	}
	for _, gf := range generated.Item {
		ef, ok := existing.Folder(gf.Name)
		if !ok {
			existing.Item = append(existing.Item, gf)
			continue
		}
		for _, gi := range gf.Item {
			ei, ok := ef.Find(gi.Name)
			if !ok {
				ef.Item = append(ef.Item, gi)
				continue
			}
			ei.Request.Method = gi.Request.Method
			ei.Request.URL = gi.Request.URL
			ei.Request.Body = gi.Request.Body
		}
	}
	return existing
}
