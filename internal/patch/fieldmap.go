package patch

import (
	"strings"
)

// Field is one entry of an array literal. Source names the column the value was
// derived from; an empty Source marks a field that is always regenerated.
type Field struct {
	Key    string
	Value  string
	Source string
}

// FieldMap is an insertion ordered key to expression mapping. Comment holds the
// first block comment found in the region it was extracted from.
type FieldMap struct {
	Comment string
	fields  []Field
	index   map[string]int
}

// NewFieldMap returns a map holding fields in order. Later duplicates replace earlier ones.
func NewFieldMap(fields ...Field) *FieldMap {
	m := &FieldMap{index: make(map[string]int, len(fields))}
	for _, f := range fields {
		m.Set(f)
	}
	return m
}

// Set replaces the field with the same key, or appends it.
func (m *FieldMap) Set(f Field) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[f.Key]; ok {
		m.fields[i] = f
		return
	}
	m.index[f.Key] = len(m.fields)
	m.fields = append(m.fields, f)
}

// Get returns the field stored under key.
func (m *FieldMap) Get(key string) (Field, bool) {
	if m == nil {
		return Field{}, false
	}
	i, ok := m.index[key]
	if !ok {
		return Field{}, false
	}
	return m.fields[i], true
}

// Fields returns the fields in order.
func (m *FieldMap) Fields() []Field {
	if m == nil {
		return nil
	}
	return m.fields
}

// Keys returns the keys in order.
func (m *FieldMap) Keys() []string {
	keys := make([]string, 0, m.Len())
	for _, f := range m.Fields() {
		keys = append(keys, f.Key)
	}
	return keys
}

// Len returns the number of fields.
func (m *FieldMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.fields)
}

// Extract reads the entries of the literal at span. Entries are split on commas at
// nesting depth zero and each entry on its first depth-zero separator, so nested
// literals and call arguments stay inside their value. Keys lose their quotes;
// values keep their source text, trimmed and without the trailing comma. Entries
// without a separator become keys with an empty value.
func Extract(text string, span Span, syn Syntax) *FieldMap {
	inner := text[span.Open+1 : span.Close]
	m := NewFieldMap()
	m.Comment = firstBlockComment(inner, syn)

	for _, entry := range splitTopLevel(inner, ",", syn) {
		entry = trimComments(entry, syn)
		if entry == "" {
			continue
		}
		parts := splitTopLevel(entry, syn.Separator, syn)
		if len(parts) == 1 {
			m.Set(Field{Key: unquote(entry, syn)})
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(entry[len(parts[0])+len(syn.Separator):])
		m.Set(Field{Key: unquote(key, syn), Value: value})
	}
	return m
}

// splitTopLevel splits s on sep wherever sep occurs outside strings, comments and
// brackets of any kind.
func splitTopLevel(s, sep string, syn Syntax) []string {
	var (
		parts []string
		depth int
		last  int
	)
	for i := 0; i < len(s); {
		if next, ok := syn.skip(s, i); ok {
			i = next
			continue
		}
		switch ch := s[i]; {
		case ch == '(' || ch == '{' || ch == syn.ListOpen:
			depth++
		case ch == ')' || ch == '}' || ch == syn.ListClose:
			depth--
		case depth == 0 && hasPrefixAt(s, i, sep):
			parts = append(parts, s[last:i])
			i += len(sep)
			last = i
			if sep == syn.Separator {
				return append(parts, s[last:])
			}
			continue
		}
		i++
	}
	return append(parts, s[last:])
}

// trimComments strips whitespace and comments from both ends of s.
func trimComments(s string, syn Syntax) string {
	start, end := -1, 0
	for i := 0; i < len(s); {
		if syn.isComment(s, i) {
			next, _ := syn.skip(s, i)
			i = next
			continue
		}
		if next, ok := syn.skip(s, i); ok {
			if start < 0 {
				start = i
			}
			i = next
			end = i
			continue
		}
		if !isSpace(s[i]) {
			if start < 0 {
				start = i
			}
			end = i + 1
		}
		i++
	}
	if start < 0 {
		return ""
	}
	return s[start:end]
}

func firstBlockComment(s string, syn Syntax) string {
	if syn.BlockCommentOpen == "" {
		return ""
	}
	for i := 0; i < len(s); {
		next, ok := syn.skip(s, i)
		if !ok {
			i++
			continue
		}
		if hasPrefixAt(s, i, syn.BlockCommentOpen) {
			return s[i:next]
		}
		i = next
	}
	return ""
}

func unquote(s string, syn Syntax) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == s[len(s)-1] && strings.IndexByte(syn.Quotes, s[0]) >= 0 {
		return s[1 : len(s)-1]
	}
	return s
}

func quote(s string, syn Syntax) string {
	q := string(syn.Quote)
	if syn.Escape != 0 {
		s = strings.ReplaceAll(s, q, string(syn.Escape)+q)
	}
	return q + s + q
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}
