package emit

import (
	"slices"

	"github.com/schemasmith/schemasmith/internal/action"
	"github.com/schemasmith/schemasmith/internal/derive"
	"github.com/schemasmith/schemasmith/internal/naming"
	"github.com/schemasmith/schemasmith/internal/patch"
	"github.com/schemasmith/schemasmith/internal/schema"
)

var requestSkip = []string{"id", "created_at", "updated_at"}

// Request emits the form request of a table with one validator function per
// validated action.
type Request struct{}

func (Request) Name() string     { return "request" }
func (Request) SchemaWide() bool { return false }

type requestData struct {
	Namespace string
	ClassName string
}

type validatorData struct {
	Name  string
	Rules string
}

func (Request) Emit(ctx *Context, t *schema.Table) ([]Outcome, error) {
	class := naming.ClassName(t.Name)
	path := ctx.path(ctx.Paths.Requests, class+"Request.php")
	actions := action.Validated(ctx.Actions)

	create := func() (string, error) {
		return ctx.Templates.Render("request.php.tmpl", requestData{
			Namespace: namespaceFor(ctx.Paths.Requests),
			ClassName: class,
		})
	}
	update := func(text string) patch.Result {
		res := patch.Result{Text: text, Outcome: patch.OutcomeUnchanged}
		for _, a := range actions {
			if !patch.HasFunction(res.Text, a.ValidatorName(), PHP) {
				continue
			}
			r := patch.Patch(res.Text, patch.FunctionReturn(PHP, a.ValidatorName()),
				ruleFields(t, a), ctx.changed(t.Name), methodLayout, PHP)
			if r.Outcome == patch.OutcomeNoMatch {
				return patch.Result{Text: text, Outcome: patch.OutcomeNoMatch}
			}
			if r.Outcome == patch.OutcomeUpdated {
				res = r
			}
		}
		return res
	}
	finish := func(text string) string {
		for _, a := range actions {
			if patch.HasFunction(text, a.ValidatorName(), PHP) {
				continue
			}
			fn, err := ctx.Templates.Render("validator.php.tmpl", validatorData{
				Name:  a.ValidatorName(),
				Rules: patch.Render(patch.NewFieldMap(ruleFields(t, a)...), methodLayout, PHP),
			})
			if err != nil {
				ctx.logger().Error("rendering validator", "table", t.Name, "action", a.Name, "error", err)
				continue
			}
			text = patch.AppendFunction(text, fn, PHP).Text
		}
		return text
	}

	o, err := ctx.apply("request", t.Name, path, create, update, finish)
	if err != nil {
		return nil, err
	}
	return []Outcome{o}, nil
}

// ruleFields derives the rule map validated by action a.
func ruleFields(t *schema.Table, a action.Action) []patch.Field {
	switch a.Name {
	case action.BulkDelete.Name:
		return []patch.Field{
			{Key: "ids", Value: "'required|array'"},
			{Key: "ids.*", Value: "'required|integer|exists:" + t.Name + ",id'"},
		}
	case action.BulkStore.Name:
		fields := []patch.Field{{Key: "list", Value: "'required|array'"}}
		for _, c := range t.Columns {
			if !slices.Contains(requestSkip, c.Name) {
				fields = append(fields, patch.Field{Key: "list.*." + c.Name, Value: phpRule(derive.Rule(c, derive.ModeStore)), Source: c.Name})
			}
		}
		return fields
	}

	mode := derive.ModeStore
	if a.Name == action.Update.Name {
		mode = derive.ModeUpdate
	}
	var fields []patch.Field
	for _, c := range t.Columns {
		if !slices.Contains(requestSkip, c.Name) {
			fields = append(fields, patch.Field{Key: c.Name, Value: phpRule(derive.Rule(c, mode)), Source: c.Name})
		}
	}
	return fields
}

// phpRule renders a rule as a PHP string expression, concatenating the id of the
// record being updated where the rule excludes it.
func phpRule(e derive.Expr) string {
	if !e.ExceptID {
		return phpString(e.Head)
	}
	return phpString(e.Head) + " . $this->id . " + phpString(e.Tail)
}
