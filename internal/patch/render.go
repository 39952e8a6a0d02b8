package patch

import "strings"

// Layout controls how a literal is rendered.
type Layout struct {
	Inline      bool   // single line: [k => v, k2 => v2]
	Indent      string // prefix of each entry line
	CloseIndent string // prefix of the closing bracket line
	Align       bool   // pad keys so separators line up
}

// Render writes fm as a complete array literal, brackets included. Fields with an
// empty value are skipped. The map's comment, if any, comes first.
func Render(fm *FieldMap, layout Layout, syn Syntax) string {
	var entries []string
	width := 0
	if layout.Align {
		for _, f := range fm.Fields() {
			if f.Value != "" && len(quote(f.Key, syn)) > width {
				width = len(quote(f.Key, syn))
			}
		}
	}
	for _, f := range fm.Fields() {
		if f.Key == "" || f.Value == "" {
			continue
		}
		key := quote(f.Key, syn)
		if pad := width - len(key); pad > 0 {
			key += strings.Repeat(" ", pad)
		}
		entries = append(entries, key+" "+syn.Separator+" "+f.Value)
	}
	return renderEntries(fm.Comment, entries, layout, syn)
}

// RenderList writes items as a list literal of quoted strings.
func RenderList(comment string, items []string, layout Layout, syn Syntax) string {
	entries := make([]string, 0, len(items))
	for _, it := range items {
		entries = append(entries, quote(it, syn))
	}
	return renderEntries(comment, entries, layout, syn)
}

func renderEntries(comment string, entries []string, layout Layout, syn Syntax) string {
	var b strings.Builder
	b.WriteByte(syn.ListOpen)
	if layout.Inline {
		if comment != "" {
			b.WriteString(comment)
			if len(entries) > 0 {
				b.WriteByte(' ')
			}
		}
		b.WriteString(strings.Join(entries, ", "))
		b.WriteByte(syn.ListClose)
		return b.String()
	}
	if comment == "" && len(entries) == 0 {
		b.WriteByte(syn.ListClose)
		return b.String()
	}
	b.WriteByte('\n')
	if comment != "" {
		b.WriteString(layout.Indent + comment + "\n")
	}
	for _, e := range entries {
		b.WriteString(layout.Indent + e + ",\n")
	}
	b.WriteString(layout.CloseIndent)
	b.WriteByte(syn.ListClose)
	return b.String()
}
