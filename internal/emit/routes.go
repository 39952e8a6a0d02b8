package emit

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/schemasmith/schemasmith/internal/action"
	"github.com/schemasmith/schemasmith/internal/naming"
	"github.com/schemasmith/schemasmith/internal/patch"
	"github.com/schemasmith/schemasmith/internal/schema"
)

// Routes registers the routes of a table in the API routes file. Each table gets
// one route group keyed by its prefix; the group is created when missing and
// routes are added only for actions it does not route yet.
type Routes struct{}

func (Routes) Name() string     { return "routes" }
func (Routes) SchemaWide() bool { return false }

type routeGroupData struct {
	Prefix    string
	ClassName string
}

func (Routes) Emit(ctx *Context, t *schema.Table) ([]Outcome, error) {
	class := naming.ClassName(t.Name)
	prefix := naming.RouteSegment(t.Name)
	path := ctx.path(filepath.Dir(ctx.Paths.Routes), filepath.Base(ctx.Paths.Routes))
	group := routeGroup(prefix)

	create := func() (string, error) {
		return ctx.Templates.Render("routes.php.tmpl", nil)
	}
	finish := func(text string) string {
		if _, ok := patch.Block(text, group, PHP); !ok {
			g, err := ctx.Templates.Render("route_group.php.tmpl", routeGroupData{Prefix: prefix, ClassName: class})
			if err != nil {
				ctx.logger().Error("rendering route group", "table", t.Name, "error", err)
				return text
			}
			text = appendToFile(text, g)
		}
		for _, a := range ctx.actions() {
			text = patch.AppendToBlock(text, group, routeLine(a), routed(a), PHP).Text
		}
		return patch.AddImport(text, namespaceFor(ctx.Paths.Controllers)+`\`+class+"Controller", PHP).Text
	}

	o, err := ctx.apply("routes", t.Name, path, create, nil, finish)
	if err != nil {
		return nil, err
	}
	return []Outcome{o}, nil
}

// routeGroup matches the opening of the route group with the given prefix up to
// its closure body.
func routeGroup(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`Route::group\(\[\s*'prefix'\s*=>\s*'/` + regexp.QuoteMeta(prefix) +
		`'\s*,[^)]+\)\s*{`)
}

func routeLine(a action.Action) string {
	return fmt.Sprintf("    Route::%s('%s', '%s');", strings.ToLower(a.Method), a.Route, a.Name)
}

// routed matches any route bound to the action's controller method.
func routed(a action.Action) *regexp.Regexp {
	return regexp.MustCompile(`Route::\w+\(\s*'[^']*'\s*,\s*'` + regexp.QuoteMeta(a.Name) + `'\s*\)`)
}

func appendToFile(text, block string) string {
	if len(text) > 0 && text[len(text)-1] != '\n' {
		text += "\n"
	}
	return text + block
}
