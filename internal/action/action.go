// Package action enumerates the API operations artifacts are generated for.
package action

import (
	"fmt"
	"net/http"
	"strings"
)

// Action describes one API operation exposed for a table.
type Action struct {
	Name      string // identifier used in config and validator names, e.g. "bulkStore"
	Label     string // human readable name, e.g. "Bulk store"
	Flag      string // short CLI flag
	Method    string // HTTP method
	Route     string // path below the table's route prefix
	Bulk      bool   // operates on a list of records
	ByID      bool   // addresses one record by id
	Paginated bool
	Validated bool // gets a validator function in the form request
}

var (
	GetAll     = Action{Name: "getAll", Label: "Get all", Flag: "ga", Method: http.MethodGet, Route: "/", Paginated: true}
	FindByID   = Action{Name: "findById", Label: "Find by id", Flag: "fbi", Method: http.MethodGet, Route: "/{id}", ByID: true}
	Store      = Action{Name: "store", Label: "Store", Flag: "s", Method: http.MethodPost, Route: "/", Validated: true}
	BulkStore  = Action{Name: "bulkStore", Label: "Bulk store", Flag: "bs", Method: http.MethodPost, Route: "/bulk", Bulk: true, Validated: true}
	Update     = Action{Name: "update", Label: "Update", Flag: "u", Method: http.MethodPut, Route: "/{id}", ByID: true, Validated: true}
	Delete     = Action{Name: "delete", Label: "Delete", Flag: "d", Method: http.MethodDelete, Route: "/{id}", ByID: true}
	BulkDelete = Action{Name: "bulkDelete", Label: "Bulk delete", Flag: "bd", Method: http.MethodDelete, Route: "/", Bulk: true, Validated: true}
)

// All lists every action in generation order.
var All = []Action{GetAll, FindByID, Store, BulkStore, Update, Delete, BulkDelete}

// Lookup finds an action by name or short flag, case-insensitively.
func Lookup(name string) (Action, bool) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "-")
	for _, a := range All {
		if strings.EqualFold(a.Name, name) || strings.EqualFold(a.Flag, name) {
			return a, true
		}
	}
	return Action{}, false
}

// Parse resolves names into actions, in the order of All and without duplicates.
// An empty list selects every action.
func Parse(names []string) ([]Action, error) {
	if len(names) == 0 {
		return append([]Action(nil), All...), nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		a, ok := Lookup(n)
		if !ok {
			return nil, fmt.Errorf("unknown action %q", n)
		}
		want[a.Name] = true
	}
	var out []Action
	for _, a := range All {
		if want[a.Name] {
			out = append(out, a)
		}
	}
	return out, nil
}

// ValidatorName is the name of the form request function validating a.
func (a Action) ValidatorName() string {
	return a.Name + "Validator"
}

// Validated filters actions down to those with a validator function.
func Validated(actions []Action) []Action {
	var out []Action
	for _, a := range actions {
		if a.Validated {
			out = append(out, a)
		}
	}
	return out
}
