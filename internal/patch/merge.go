package patch

// Outcome classifies the effect of a patch operation.
type Outcome string

const (
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeNoMatch means the locator found nothing; the text is returned as is and
	// the artifact needs manual inspection.
	OutcomeNoMatch Outcome = "no-match"
)

// Result is the patched text and what happened to it.
type Result struct {
	Text    string
	Outcome Outcome
}

// ChangeFunc reports whether the column a field was derived from changed since the
// previous snapshot.
type ChangeFunc func(source string) bool

// Merge returns the fields of next in order. A field keeps its previous value when
// its source is unchanged and the previous value is non-empty; otherwise the new
// value is used. Fields absent from next are dropped. The previous comment is kept.
func Merge(prev *FieldMap, next []Field, changed ChangeFunc) *FieldMap {
	out := NewFieldMap()
	if prev != nil {
		out.Comment = prev.Comment
	}
	for _, f := range next {
		if f.Source != "" && (changed == nil || !changed(f.Source)) {
			if old, ok := prev.Get(f.Key); ok && old.Value != "" {
				f.Value = old.Value
			}
		}
		out.Set(f)
	}
	return out
}

// Patch rewrites the literal located by loc with fields merged against its current
// entries. Text outside the literal is preserved byte for byte. When loc matches
// nothing the input is returned unchanged with OutcomeNoMatch.
func Patch(text string, loc Locator, fields []Field, changed ChangeFunc, layout Layout, syn Syntax) Result {
	span, ok := Locate(text, loc, syn)
	if !ok {
		return Result{Text: text, Outcome: OutcomeNoMatch}
	}
	merged := Merge(Extract(text, span, syn), fields, changed)
	return Splice(text, span, Render(merged, layout, syn))
}

// ReplaceList rewrites the list literal located by loc with items, keeping its
// first block comment.
func ReplaceList(text string, loc Locator, items []string, layout Layout, syn Syntax) Result {
	span, ok := Locate(text, loc, syn)
	if !ok {
		return Result{Text: text, Outcome: OutcomeNoMatch}
	}
	comment := firstBlockComment(text[span.Open+1:span.Close], syn)
	return Splice(text, span, RenderList(comment, items, layout, syn))
}

// Splice replaces the literal at span with literal.
func Splice(text string, span Span, literal string) Result {
	out := text[:span.Open] + literal + text[span.Close+1:]
	if out == text {
		return Result{Text: text, Outcome: OutcomeUnchanged}
	}
	return Result{Text: out, Outcome: OutcomeUpdated}
}
