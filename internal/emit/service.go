package emit

import (
	"slices"

	"github.com/schemasmith/schemasmith/internal/action"
	"github.com/schemasmith/schemasmith/internal/naming"
	"github.com/schemasmith/schemasmith/internal/patch"
	"github.com/schemasmith/schemasmith/internal/schema"
)

const dbFacade = `Illuminate\Support\Facades\DB`

// Service emits the data access service a controller delegates to.
type Service struct{}

func (Service) Name() string     { return "service" }
func (Service) SchemaWide() bool { return false }

type serviceData struct {
	Namespace      string
	ClassName      string
	ModelNamespace string
}

func (Service) Emit(ctx *Context, t *schema.Table) ([]Outcome, error) {
	class := naming.ClassName(t.Name)
	path := ctx.path(ctx.Paths.Services, class+"Service.php")

	create := func() (string, error) {
		return ctx.Templates.Render("service.php.tmpl", serviceData{
			Namespace:      namespaceFor(ctx.Paths.Services),
			ClassName:      class,
			ModelNamespace: namespaceFor(ctx.Paths.Models),
		})
	}
	finish := func(text string) string {
		text = addActions(ctx, text, t, "service_action.php.tmpl")
		if slices.Contains(ctx.actions(), action.BulkStore) {
			text = patch.AddImport(text, dbFacade, PHP).Text
		}
		return text
	}

	o, err := ctx.apply("service", t.Name, path, create, nil, finish)
	if err != nil {
		return nil, err
	}
	return []Outcome{o}, nil
}
