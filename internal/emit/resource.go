package emit

import (
	"github.com/schemasmith/schemasmith/internal/naming"
	"github.com/schemasmith/schemasmith/internal/patch"
	"github.com/schemasmith/schemasmith/internal/schema"
)

// Resource emits the API resource of a table.
type Resource struct{}

func (Resource) Name() string     { return "resource" }
func (Resource) SchemaWide() bool { return false }

type resourceData struct {
	Namespace string
	ClassName string
	Fields    string
}

func (Resource) Emit(ctx *Context, t *schema.Table) ([]Outcome, error) {
	class := naming.ClassName(t.Name)
	path := ctx.path(ctx.Paths.Resources, class+"Resource.php")

	var fields []patch.Field
	for _, c := range t.Columns {
		if c.Name == "updated_at" {
			continue
		}
		fields = append(fields, patch.Field{Key: c.Name, Value: "$this->" + c.Name, Source: c.Name})
	}

	create := func() (string, error) {
		return ctx.Templates.Render("resource.php.tmpl", resourceData{
			Namespace: namespaceFor(ctx.Paths.Resources),
			ClassName: class,
			Fields:    patch.Render(patch.NewFieldMap(fields...), methodLayout, PHP),
		})
	}
	update := func(text string) patch.Result {
		return patch.Patch(text, patch.FunctionReturn(PHP, "toArray"), fields, ctx.changed(t.Name), methodLayout, PHP)
	}

	o, err := ctx.apply("resource", t.Name, path, create, update, nil)
	if err != nil {
		return nil, err
	}
	return []Outcome{o}, nil
}
