package emit

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

//go:embed templates/*.tmpl
var embedded embed.FS

// Templates is the set of artifact templates. Files in an override directory
// replace the embedded template of the same name.
type Templates struct {
	set *template.Template
	dir string
}

// LoadTemplates parses the embedded templates, then any *.tmpl files in dir.
func LoadTemplates(dir string) (*Templates, error) {
	set, err := template.New("artifacts").ParseFS(embedded, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	if dir != "" {
		overrides, err := filepath.Glob(filepath.Join(dir, "*.tmpl"))
		if err != nil {
			return nil, fmt.Errorf("listing template overrides: %w", err)
		}
		for _, path := range overrides {
			src, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("reading template override: %w", err)
			}
			if _, err := set.New(filepath.Base(path)).Parse(string(src)); err != nil {
				return nil, fmt.Errorf("parsing template override %s: %w", path, err)
			}
		}
	}
	return &Templates{set: set, dir: dir}, nil
}

// Dir returns the override directory, if any.
func (t *Templates) Dir() string { return t.dir }

// Render executes the named template.
func (t *Templates) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.set.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.String(), nil
}
