package emit

import (
	"regexp"
	"slices"
	"strings"

	"github.com/schemasmith/schemasmith/internal/naming"
	"github.com/schemasmith/schemasmith/internal/patch"
	"github.com/schemasmith/schemasmith/internal/schema"
)

var (
	fillableSkip   = []string{"id", "created_at", "updated_at"}
	timestampConst = map[string]*regexp.Regexp{
		"CREATED_AT": constLine("CREATED_AT"),
		"UPDATED_AT": constLine("UPDATED_AT"),
	}
	fillableLine   = regexp.MustCompile(`(?m)^[ \t]*protected\s+\$fillable\b`)
)

func constLine(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^[ \t]*const\s+` + name + `\s*=\s*null\s*;[ \t]*\n(?:[ \t]*\n)?`)
}

const relationsNamespace = `Illuminate\Database\Eloquent\Relations\`

// Model emits the entity class of a table: fillable list, timestamp constants and
// relation accessors.
type Model struct{}

func (Model) Name() string     { return "model" }
func (Model) SchemaWide() bool { return false }

type modelData struct {
	Namespace       string
	ClassName       string
	Table           string
	TimestampConsts []string
	Fillable        string
}

type relationData struct {
	Name       string
	Related    string
	ForeignKey string
	OwnerKey   string
}

func (Model) Emit(ctx *Context, t *schema.Table) ([]Outcome, error) {
	class := naming.ClassName(t.Name)
	path := ctx.path(ctx.Paths.Models, class+".php")
	fillable := fillableColumns(t)
	loc := patch.Assignment(PHP, `$fillable`)

	create := func() (string, error) {
		return ctx.Templates.Render("model.php.tmpl", modelData{
			Namespace:       namespaceFor(ctx.Paths.Models),
			ClassName:       class,
			Table:           t.Name,
			TimestampConsts: timestampConsts(t),
			Fillable:        patch.RenderList("", fillable, memberLayout, PHP),
		})
	}
	update := func(text string) patch.Result {
		return patch.ReplaceList(text, loc, fillable, memberLayout, PHP)
	}
	finish := func(text string) string {
		text = syncTimestampConsts(text, t)
		return addRelations(ctx, text, t)
	}

	o, err := ctx.apply("model", t.Name, path, create, update, finish)
	if err != nil {
		return nil, err
	}
	return []Outcome{o}, nil
}

func fillableColumns(t *schema.Table) []string {
	var cols []string
	for _, c := range t.Columns {
		if !slices.Contains(fillableSkip, c.Name) {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

func timestampConsts(t *schema.Table) []string {
	var consts []string
	for _, name := range disabledTimestamps(t) {
		consts = append(consts, "const "+name+" = null;")
	}
	return consts
}

func disabledTimestamps(t *schema.Table) []string {
	var names []string
	if !t.UsesCreatedAt() {
		names = append(names, "CREATED_AT")
	}
	if !t.UsesUpdatedAt() {
		names = append(names, "UPDATED_AT")
	}
	return names
}

// syncTimestampConsts removes timestamp constants the table no longer needs and
// inserts missing ones above the fillable property. Constants already present
// stay where they are.
func syncTimestampConsts(text string, t *schema.Table) string {
	disabled := disabledTimestamps(t)
	var b strings.Builder
	for _, name := range []string{"CREATED_AT", "UPDATED_AT"} {
		re := timestampConst[name]
		present := re.MatchString(text)
		switch want := slices.Contains(disabled, name); {
		case want && !present:
			b.WriteString("    const " + name + " = null;\n\n")
		case !want && present:
			text = re.ReplaceAllString(text, "")
		}
	}
	if b.Len() == 0 {
		return text
	}
	loc := fillableLine.FindStringIndex(text)
	if loc == nil {
		return text
	}
	return text[:loc[0]] + b.String() + text[loc[0]:]
}

// addRelations appends an accessor for every inferred relation the class does not
// declare yet, importing the relation type it returns.
func addRelations(ctx *Context, text string, t *schema.Table) string {
	for _, r := range t.Relations() {
		if patch.HasFunction(text, r.Name, PHP) {
			continue
		}
		data := relationData{Name: r.Name, Related: naming.ClassName(r.Related())}
		tmpl := "belongs_to.php.tmpl"
		if r.Kind == schema.HasMany {
			tmpl = "has_many.php.tmpl"
			data.ForeignKey, data.OwnerKey = r.ReferencedKey, r.LocalKey
		} else {
			data.ForeignKey, data.OwnerKey = r.LocalKey, r.ReferencedKey
		}
		fn, err := ctx.Templates.Render(tmpl, data)
		if err != nil {
			ctx.logger().Error("rendering relation", "table", t.Name, "relation", r.Name, "error", err)
			continue
		}
		text = patch.AddImport(text, relationsNamespace+string(r.Kind), PHP).Text
		text = patch.AppendFunction(text, fn, PHP).Text
	}
	return text
}
