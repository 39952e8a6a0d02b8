package emit

import (
	"path/filepath"

	"github.com/schemasmith/schemasmith/internal/naming"
	"github.com/schemasmith/schemasmith/internal/patch"
	"github.com/schemasmith/schemasmith/internal/schema"
)

// Languages are the locales whose lang files are maintained. Only English gets
// derived labels; other locales get empty entries for translators.
var Languages = []string{"en", "ar"}

// Lang emits the validation attribute labels and model names of every locale.
type Lang struct{}

func (Lang) Name() string     { return "lang" }
func (Lang) SchemaWide() bool { return true }

func (Lang) Emit(ctx *Context, _ *schema.Table) ([]Outcome, error) {
	var outcomes []Outcome
	for _, lang := range Languages {
		o, err := emitValidationLang(ctx, lang)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, o)

		o, err = emitModelsLang(ctx, lang)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

func emitValidationLang(ctx *Context, lang string) (Outcome, error) {
	path := ctx.path(filepath.Join(ctx.Paths.Lang, lang), "validation.php")
	fields := attributeFields(ctx.Schema, lang)

	create := func() (string, error) {
		return ctx.Templates.Render("lang_validation.php.tmpl", map[string]string{
			"Attributes": patch.Render(patch.NewFieldMap(fields...), memberLayout, PHP),
		})
	}
	update := func(text string) patch.Result {
		return mergeLabels(text, patch.Keyed(PHP, "attributes"), fields, memberLayout)
	}
	return ctx.apply("lang", "", path, create, update, nil)
}

func emitModelsLang(ctx *Context, lang string) (Outcome, error) {
	path := ctx.path(filepath.Join(ctx.Paths.Lang, lang), "models.php")
	var fields []patch.Field
	for _, t := range ctx.Schema.Tables() {
		class := naming.ClassName(t.Name)
		fields = append(fields, patch.Field{Key: class, Value: label(lang, naming.Title(class)), Source: class})
	}

	create := func() (string, error) {
		return ctx.Templates.Render("lang_models.php.tmpl", map[string]string{
			"Models": patch.Render(patch.NewFieldMap(fields...), fileLayout, PHP),
		})
	}
	update := func(text string) patch.Result {
		return mergeLabels(text, patch.Returning(PHP), fields, fileLayout)
	}
	return ctx.apply("lang", "", path, create, update, nil)
}

// attributeFields lists every non-bookkeeping column of the schema once, in table
// then column order.
func attributeFields(s *schema.Schema, lang string) []patch.Field {
	seen := make(map[string]bool)
	var fields []patch.Field
	for _, t := range s.Tables() {
		for _, c := range t.Columns {
			if c.IsBookkeeping() || seen[c.Name] {
				continue
			}
			seen[c.Name] = true
			fields = append(fields, patch.Field{Key: c.Name, Value: label(lang, naming.Title(c.Name)), Source: c.Name})
		}
	}
	return fields
}

func label(lang, title string) string {
	if lang == "en" {
		return phpString(title)
	}
	return "''"
}

// mergeLabels keeps every translated label. Entries whose label is an empty string
// literal are regenerated.
func mergeLabels(text string, loc patch.Locator, fields []patch.Field, layout patch.Layout) patch.Result {
	span, ok := patch.Locate(text, loc, PHP)
	if !ok {
		return patch.Result{Text: text, Outcome: patch.OutcomeNoMatch}
	}
	prev := patch.NewFieldMap()
	existing := patch.Extract(text, span, PHP)
	prev.Comment = existing.Comment
	for _, f := range existing.Fields() {
		if f.Value != "''" && f.Value != `""` {
			prev.Set(f)
		}
	}
	merged := patch.Merge(prev, fields, nil)
	return patch.Splice(text, span, patch.Render(merged, layout, PHP))
}
