// Package patch updates regions of previously generated source files in place.
//
// A region is an array literal located by a Locator. Its entries are extracted into
// an ordered FieldMap, merged with newly derived fields and rendered back, leaving
// every byte outside the literal untouched. The engine does not parse the target
// language; it scans brackets while skipping strings and comments, as described by
// a Syntax supplied by the caller.
package patch

// Syntax describes the lexical conventions of a target language.
type Syntax struct {
	ListOpen  byte   // opens an array literal, e.g. '['
	ListClose byte   // closes an array literal, e.g. ']'
	Separator string // key to value separator, e.g. "=>"
	Quote     byte   // quote used when rendering keys
	Quotes    string // every string delimiter to skip while scanning
	Escape    byte   // escape character inside strings

	BlockCommentOpen  string
	BlockCommentClose string
	LineComments      []string

	FunctionKeyword  string // introduces a function declaration
	ReturnKeyword    string
	ImportKeyword    string // introduces an import declaration
	NamespaceKeyword string
	Terminator       string // ends a statement
	FileMarker       string // leading marker of a source file, if any
	BodyOpen         byte   // opens a class or function body
	BodyClose        byte   // closes a class or function body
}

// skip returns the index just past a string or comment starting at i.
func (s Syntax) skip(text string, i int) (int, bool) {
	if i >= len(text) {
		return i, false
	}
	ch := text[i]
	for q := 0; q < len(s.Quotes); q++ {
		if ch != s.Quotes[q] {
			continue
		}
		for j := i + 1; j < len(text); j++ {
			if s.Escape != 0 && text[j] == s.Escape {
				j++
				continue
			}
			if text[j] == ch {
				return j + 1, true
			}
		}
		return len(text), true
	}
	if s.BlockCommentOpen != "" && hasPrefixAt(text, i, s.BlockCommentOpen) {
		end := indexFrom(text, i+len(s.BlockCommentOpen), s.BlockCommentClose)
		if end < 0 {
			return len(text), true
		}
		return end + len(s.BlockCommentClose), true
	}
	for _, lc := range s.LineComments {
		if lc != "" && hasPrefixAt(text, i, lc) {
			end := indexFrom(text, i, "\n")
			if end < 0 {
				return len(text), true
			}
			return end, true
		}
	}
	return i, false
}

// isComment reports whether a comment starts at i.
func (s Syntax) isComment(text string, i int) bool {
	if s.BlockCommentOpen != "" && hasPrefixAt(text, i, s.BlockCommentOpen) {
		return true
	}
	for _, lc := range s.LineComments {
		if lc != "" && hasPrefixAt(text, i, lc) {
			return true
		}
	}
	return false
}

func hasPrefixAt(text string, i int, prefix string) bool {
	return len(text)-i >= len(prefix) && text[i:i+len(prefix)] == prefix
}

func indexFrom(text string, from int, sub string) int {
	if from > len(text) {
		return -1
	}
	for j := from; j+len(sub) <= len(text); j++ {
		if text[j:j+len(sub)] == sub {
			return j
		}
	}
	return -1
}
