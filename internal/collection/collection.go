// Package collection builds Postman v2.1 collections describing the generated API.
package collection

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	SchemaURL   = "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"
	HostVar     = "{{URL}}"
	DefaultHost = "http://localhost:8000/api"
)

// Collection is the root of a collection file.
type Collection struct {
	Info     Info       `json:"info"`
	Item     []*Folder  `json:"item"`
	Variable []Variable `json:"variable,omitempty"`
}

// Info identifies a collection.
type Info struct {
	PostmanID string `json:"_postman_id"`
	Name      string `json:"name"`
	Schema    string `json:"schema"`
}

// Variable is a collection level variable.
type Variable struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

// Folder groups the requests of one table.
type Folder struct {
	ID   string  `json:"id,omitempty"`
	Name string  `json:"name"`
	Item []*Item `json:"item"`
}

// Item is a single request.
type Item struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	Request  Request `json:"request"`
	Response []any   `json:"response"`
}

// Request is the HTTP request of an item.
type Request struct {
	Method string  `json:"method"`
	Header []Param `json:"header"`
	URL    URL     `json:"url"`
	Body   *Body   `json:"body,omitempty"`
}

// URL is a request URL split into host and path segments.
type URL struct {
	Raw   string   `json:"raw"`
	Host  []string `json:"host"`
	Path  []string `json:"path"`
	Query []Param  `json:"query,omitempty"`
}

// Param is a key/value pair used for query parameters, headers and form fields.
type Param struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
}

// Body is a request body. Exactly one of the mode specific fields is set.
type Body struct {
	Mode       string       `json:"mode"`
	Raw        string       `json:"raw,omitempty"`
	URLEncoded []Param      `json:"urlencoded,omitempty"`
	FormData   []Param      `json:"formdata,omitempty"`
	Options    *BodyOptions `json:"options,omitempty"`
}

// BodyOptions carries the language of a raw body.
type BodyOptions struct {
	Raw struct {
		Language string `json:"language"`
	} `json:"raw"`
}

// New returns an empty collection named name.
func New(name string) *Collection {
	return &Collection{
		Info:     Info{PostmanID: uuid.NewString(), Name: name, Schema: SchemaURL},
		Item:     []*Folder{},
		Variable: []Variable{{Key: "URL", Value: DefaultHost, Type: "string"}},
	}
}

// Folder returns the folder called name.
func (c *Collection) Folder(name string) (*Folder, bool) {
	for _, f := range c.Item {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Find returns the item called name.
func (f *Folder) Find(name string) (*Item, bool) {
	for _, it := range f.Item {
		if it.Name == name {
			return it, true
		}
	}
	return nil, false
}

func newURL(path []string, query []Param) URL {
	u := URL{Host: []string{HostVar}, Path: path, Query: query}
	u.Raw = HostVar
	for _, p := range path {
		u.Raw += "/" + p
	}
	for i, q := range query {
		sep := "&"
		if i == 0 {
			sep = "?"
		}
		u.Raw += sep + q.Key + "=" + q.Value
	}
	return u
}

// Load reads a collection file.
func Load(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := &Collection{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing collection %s: %w", path, err)
	}
	return c, nil
}

// Marshal renders c as indented JSON.
func (c *Collection) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encoding collection: %w", err)
	}
	return append(data, '\n'), nil
}

// Write saves c to path, creating parent directories.
func (c *Collection) Write(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating collection directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
