package emit

import (
	"github.com/schemasmith/schemasmith/internal/action"
	"github.com/schemasmith/schemasmith/internal/naming"
	"github.com/schemasmith/schemasmith/internal/patch"
	"github.com/schemasmith/schemasmith/internal/schema"
)

// Controller emits the API controller of a table with one method per configured
// action. Methods already in the class are never rewritten.
type Controller struct{}

func (Controller) Name() string     { return "controller" }
func (Controller) SchemaWide() bool { return false }

type controllerData struct {
	Namespace         string
	ClassName         string
	RequestNamespace  string
	ResourceNamespace string
	ServiceNamespace  string
}

type actionData struct {
	ClassName string
	Action    string
}

func (Controller) Emit(ctx *Context, t *schema.Table) ([]Outcome, error) {
	class := naming.ClassName(t.Name)
	path := ctx.path(ctx.Paths.Controllers, class+"Controller.php")

	create := func() (string, error) {
		return ctx.Templates.Render("controller.php.tmpl", controllerData{
			Namespace:         namespaceFor(ctx.Paths.Controllers),
			ClassName:         class,
			RequestNamespace:  namespaceFor(ctx.Paths.Requests),
			ResourceNamespace: namespaceFor(ctx.Paths.Resources),
			ServiceNamespace:  namespaceFor(ctx.Paths.Services),
		})
	}
	finish := func(text string) string {
		return addActions(ctx, text, t, "controller_action.php.tmpl")
	}

	o, err := ctx.apply("controller", t.Name, path, create, nil, finish)
	if err != nil {
		return nil, err
	}
	return []Outcome{o}, nil
}

// addActions appends a method rendered from tmpl for every configured action the
// class does not declare yet.
func addActions(ctx *Context, text string, t *schema.Table, tmpl string) string {
	class := naming.ClassName(t.Name)
	for _, a := range ctx.actions() {
		if patch.HasFunction(text, a.Name, PHP) {
			continue
		}
		fn, err := ctx.Templates.Render(tmpl, actionData{ClassName: class, Action: a.Name})
		if err != nil {
			ctx.logger().Error("rendering action", "table", t.Name, "action", a.Name, "error", err)
			continue
		}
		text = patch.AppendFunction(text, fn, PHP).Text
	}
	return text
}

func (c *Context) actions() []action.Action {
	if len(c.Actions) == 0 {
		return action.All
	}
	return c.Actions
}
