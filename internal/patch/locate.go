package patch

import (
	"fmt"
	"regexp"
)

// Span locates an array literal. Start and End bound the whole matched construct;
// Open and Close are the positions of the literal's brackets.
type Span struct {
	Start int
	Open  int
	Close int
	End   int
}

// Locator identifies one array literal in a file. Anchor, when set, must match
// first and the search continues after it. Scope, when set, must match text ending
// exactly at a body opening bracket; the literal is then searched for only inside
// that body and must end at the body's closing bracket. Lead must match text ending
// exactly at the literal's opening bracket; when nil, the first opening bracket
// after the anchor is used. Trail, when set, must match immediately after the
// closing bracket.
type Locator struct {
	Anchor *regexp.Regexp
	Scope  *regexp.Regexp
	Lead   *regexp.Regexp
	Trail  *regexp.Regexp
}

// FunctionReturn locates the array returned as the last statement of the named function.
func FunctionReturn(syn Syntax, name string) Locator {
	scope := fmt.Sprintf(`\b%s\s+%s\s*\([^)]*\)[^%s%s]*%s`,
		regexp.QuoteMeta(syn.FunctionKeyword), regexp.QuoteMeta(name),
		regexp.QuoteMeta(string(syn.BodyOpen)), regexp.QuoteMeta(syn.Terminator),
		regexp.QuoteMeta(string(syn.BodyOpen)))
	lead := fmt.Sprintf(`\b%s\s*%s`, regexp.QuoteMeta(syn.ReturnKeyword), regexp.QuoteMeta(string(syn.ListOpen)))
	trail := fmt.Sprintf(`^\s*%s\s*%s`, regexp.QuoteMeta(syn.Terminator), regexp.QuoteMeta(string(syn.BodyClose)))
	return Locator{Scope: regexp.MustCompile(scope), Lead: regexp.MustCompile(lead), Trail: regexp.MustCompile(trail)}
}

// Returning locates the first array literal directly returned by a return statement.
func Returning(syn Syntax) Locator {
	lead := fmt.Sprintf(`\b%s\s*%s`, regexp.QuoteMeta(syn.ReturnKeyword), regexp.QuoteMeta(string(syn.ListOpen)))
	trail := fmt.Sprintf(`^\s*%s`, regexp.QuoteMeta(syn.Terminator))
	return Locator{Lead: regexp.MustCompile(lead), Trail: regexp.MustCompile(trail)}
}

// Assignment locates the array assigned to target, for example a class property.
func Assignment(syn Syntax, target string) Locator {
	lead := fmt.Sprintf(`%s\s*=\s*%s`, regexp.QuoteMeta(target), regexp.QuoteMeta(string(syn.ListOpen)))
	trail := fmt.Sprintf(`^\s*%s`, regexp.QuoteMeta(syn.Terminator))
	return Locator{Lead: regexp.MustCompile(lead), Trail: regexp.MustCompile(trail)}
}

// Keyed locates the array stored under a quoted key of an enclosing array.
func Keyed(syn Syntax, key string) Locator {
	quotes := regexp.QuoteMeta(syn.Quotes)
	lead := fmt.Sprintf(`[%s]%s[%s]\s*%s\s*%s`, quotes, regexp.QuoteMeta(key), quotes,
		regexp.QuoteMeta(syn.Separator), regexp.QuoteMeta(string(syn.ListOpen)))
	return Locator{Lead: regexp.MustCompile(lead)}
}

// Locate finds the region described by loc. Each candidate opening bracket is matched
// to its closing bracket by a recursive balanced scan that skips strings and comments,
// so nested literals never end the region early. The first candidate whose trail
// matches wins.
func Locate(text string, loc Locator, syn Syntax) (Span, bool) {
	start := 0
	if loc.Anchor != nil {
		m := loc.Anchor.FindStringIndex(text)
		if m == nil {
			return Span{}, false
		}
		start = m[1]
	}

	if loc.Scope != nil {
		body, ok := blockFrom(text, start, loc.Scope, syn)
		if !ok {
			return Span{}, false
		}
		return locateIn(text[:body.End], body.Open+1, body.End, loc, syn)
	}
	return locateIn(text, start, -1, loc, syn)
}

// locateIn searches text from start. When end is not negative a candidate must
// end exactly there.
func locateIn(text string, start, end int, loc Locator, syn Syntax) (Span, bool) {
	if loc.Lead == nil {
		open, ok := nextOpen(text, start, syn)
		if !ok {
			return Span{}, false
		}
		span, ok := candidate(text, open, open, loc, syn)
		if !ok || (end >= 0 && span.End != end) {
			return Span{}, false
		}
		return span, true
	}

	for pos := start; pos < len(text); {
		m := loc.Lead.FindStringIndex(text[pos:])
		if m == nil {
			break
		}
		leadStart, open := pos+m[0], pos+m[1]-1
		if m[1] > m[0] && text[open] == syn.ListOpen {
			if span, ok := candidate(text, leadStart, open, loc, syn); ok && (end < 0 || span.End == end) {
				return span, true
			}
		}
		pos = leadStart + 1
	}
	return Span{}, false
}

func candidate(text string, leadStart, open int, loc Locator, syn Syntax) (Span, bool) {
	closeIdx, ok := balanced(text, open, syn)
	if !ok {
		return Span{}, false
	}
	end := closeIdx + 1
	if loc.Trail != nil {
		m := loc.Trail.FindStringIndex(text[end:])
		if m == nil || m[0] != 0 {
			return Span{}, false
		}
		end += m[1]
	}
	return Span{Start: leadStart, Open: open, Close: closeIdx, End: end}, true
}

// balanced returns the index of the bracket closing the list literal at open.
func balanced(text string, open int, syn Syntax) (int, bool) {
	return balancedPair(text, open, syn.ListOpen, syn.ListClose, syn)
}

// balancedPair returns the index of the close bracket matching the one at open.
// Runs of other text are consumed directly and each nested pair recurses.
func balancedPair(text string, open int, openCh, closeCh byte, syn Syntax) (int, bool) {
	for i := open + 1; i < len(text); {
		if next, ok := syn.skip(text, i); ok {
			i = next
			continue
		}
		switch text[i] {
		case openCh:
			end, ok := balancedPair(text, i, openCh, closeCh, syn)
			if !ok {
				return 0, false
			}
			i = end + 1
		case closeCh:
			return i, true
		default:
			i++
		}
	}
	return 0, false
}

func nextOpen(text string, from int, syn Syntax) (int, bool) {
	for i := from; i < len(text); {
		if next, ok := syn.skip(text, i); ok {
			i = next
			continue
		}
		if text[i] == syn.ListOpen {
			return i, true
		}
		i++
	}
	return 0, false
}
