// Package state keeps the registry of projects and the per-table status surface
// that records which tables still need their artifacts regenerated.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/schemasmith/schemasmith/internal/config"
	"github.com/schemasmith/schemasmith/internal/snapshot"
)

const DefaultPath = "~/.schemasmith/projects.yaml"

// Registry holds every known project.
type Registry struct {
	LastUpdated time.Time           `yaml:"last_updated"`
	Projects    map[string]*Project `yaml:"projects"`
}

// Project is the registry entry of one project.
type Project struct {
	Path         string                     `yaml:"path"`
	IsNew        bool                       `yaml:"is_new"`
	Request      RequestBodies              `yaml:"request"`
	TablesStatus map[string]snapshot.Status `yaml:"tables_status,omitempty"`
	Postman      PostmanState               `yaml:"postman,omitempty"`
}

// RequestBodies records the body encoding chosen for write requests.
type RequestBodies struct {
	Store     string `yaml:"store"`
	BulkStore string `yaml:"bulk_store"`
}

// PostmanState records where the API collection of the project was written.
type PostmanState struct {
	Collection  string    `yaml:"collection,omitempty"`
	GeneratedAt time.Time `yaml:"generated_at,omitempty"`
}

// Load reads the registry from disk. A missing file yields an empty registry.
func Load(path string) (*Registry, error) {
	if path == "" {
		path = config.ExpandHome(DefaultPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("reading registry: %w", err)
	}

	r := &Registry{}
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("parsing registry: %w", err)
	}
	if r.Projects == nil {
		r.Projects = make(map[string]*Project)
	}
	for _, p := range r.Projects {
		if p.TablesStatus == nil {
			p.TablesStatus = make(map[string]snapshot.Status)
		}
	}
	return r, nil
}

// Save writes the registry to disk.
func (r *Registry) Save(path string) error {
	if path == "" {
		path = config.ExpandHome(DefaultPath)
	}

	r.LastUpdated = time.Now()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating registry directory: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling registry: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		LastUpdated: time.Now(),
		Projects:    make(map[string]*Project),
	}
}

// AddProject registers a project, or updates the path of an existing one.
// A newly added project is marked new until its first generation completes.
func (r *Registry) AddProject(name, path string) *Project {
	if p, ok := r.Projects[name]; ok {
		p.Path = path
		return p
	}
	p := &Project{
		Path:         path,
		IsNew:        true,
		Request:      RequestBodies{Store: "raw", BulkStore: "raw"},
		TablesStatus: make(map[string]snapshot.Status),
	}
	r.Projects[name] = p
	return p
}

// RemoveProject deletes a project and reports whether it existed.
func (r *Registry) RemoveProject(name string) bool {
	if _, ok := r.Projects[name]; !ok {
		return false
	}
	delete(r.Projects, name)
	return true
}

// Project returns the named project.
func (r *Registry) Project(name string) (*Project, bool) {
	p, ok := r.Projects[name]
	return p, ok
}

// Names returns the registered project names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Projects))
	for n := range r.Projects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// MergeTablesStatus records changes for project. A table already pending as NEW
// stays NEW; otherwise the latest classification wins.
func (r *Registry) MergeTablesStatus(name string, changes map[string]snapshot.Status) error {
	p, ok := r.Projects[name]
	if !ok {
		return fmt.Errorf("project %q is not registered", name)
	}
	for table, status := range changes {
		if p.TablesStatus[table] == snapshot.StatusNew {
			continue
		}
		p.TablesStatus[table] = status
	}
	return nil
}

// TablesStatus returns the pending status of every table of project.
func (r *Registry) TablesStatus(name string) map[string]snapshot.Status {
	if p, ok := r.Projects[name]; ok {
		return p.TablesStatus
	}
	return nil
}

// ClearTableStatus removes table from the pending set of project.
func (r *Registry) ClearTableStatus(name, table string) bool {
	p, ok := r.Projects[name]
	if !ok {
		return false
	}
	if _, ok := p.TablesStatus[table]; !ok {
		return false
	}
	delete(p.TablesStatus, table)
	return true
}

// MarkOld records that project has completed its first generation.
func (r *Registry) MarkOld(name string) {
	if p, ok := r.Projects[name]; ok {
		p.IsNew = false
	}
}

// SetRequestBodies records the body encodings of the store and bulk store requests.
func (r *Registry) SetRequestBodies(name, store, bulkStore string) {
	if p, ok := r.Projects[name]; ok {
		p.Request = RequestBodies{Store: store, BulkStore: bulkStore}
	}
}

// SetCollection records the path of the generated API collection.
func (r *Registry) SetCollection(name, path string) {
	if p, ok := r.Projects[name]; ok {
		p.Postman = PostmanState{Collection: path, GeneratedAt: time.Now().UTC()}
	}
}
