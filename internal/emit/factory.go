package emit

import (
	"slices"

	"github.com/schemasmith/schemasmith/internal/derive"
	"github.com/schemasmith/schemasmith/internal/naming"
	"github.com/schemasmith/schemasmith/internal/patch"
	"github.com/schemasmith/schemasmith/internal/schema"
)

var factorySkip = []string{"id", "created_at", "updated_at"}

// Factory emits the test-data factory of a table.
type Factory struct{}

func (Factory) Name() string     { return "factory" }
func (Factory) SchemaWide() bool { return false }

type factoryData struct {
	Namespace      string
	ModelNamespace string
	ClassName      string
	Definition     string
}

func (Factory) Emit(ctx *Context, t *schema.Table) ([]Outcome, error) {
	class := naming.ClassName(t.Name)
	path := ctx.path(ctx.Paths.Factories, class+"Factory.php")
	modelNS := namespaceFor(ctx.Paths.Models)
	fields, models := sampleFields(t)
	loc := patch.FunctionReturn(PHP, "definition")

	create := func() (string, error) {
		return ctx.Templates.Render("factory.php.tmpl", factoryData{
			Namespace:      namespaceFor(ctx.Paths.Factories),
			ModelNamespace: modelNS,
			ClassName:      class,
			Definition:     patch.Render(patch.NewFieldMap(fields...), methodLayout, PHP),
		})
	}
	update := func(text string) patch.Result {
		return patch.Patch(text, loc, fields, ctx.changed(t.Name), methodLayout, PHP)
	}
	finish := func(text string) string {
		for _, m := range models {
			text = patch.AddImport(text, modelNS+`\`+m, PHP).Text
		}
		return text
	}

	o, err := ctx.apply("factory", t.Name, path, create, update, finish)
	if err != nil {
		return nil, err
	}
	return []Outcome{o}, nil
}

// sampleFields derives the factory definition and the entity classes it refers to.
func sampleFields(t *schema.Table) ([]patch.Field, []string) {
	var (
		fields []patch.Field
		models []string
	)
	for _, c := range t.Columns {
		if slices.Contains(factorySkip, c.Name) {
			continue
		}
		s := derive.Sample(c)
		fields = append(fields, patch.Field{Key: c.Name, Value: s.Expr, Source: c.Name})
		if s.Model != "" && !slices.Contains(models, s.Model) {
			models = append(models, s.Model)
		}
	}
	return fields, models
}
