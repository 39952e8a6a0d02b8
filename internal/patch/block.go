package patch

import "regexp"

// Block finds the body opened by the first match of scope. The match must end at a
// body opening bracket; the returned span covers the body brackets.
func Block(text string, scope *regexp.Regexp, syn Syntax) (Span, bool) {
	return blockFrom(text, 0, scope, syn)
}

func blockFrom(text string, start int, scope *regexp.Regexp, syn Syntax) (Span, bool) {
	m := scope.FindStringIndex(text[start:])
	if m == nil || m[1] == m[0] || text[start+m[1]-1] != syn.BodyOpen {
		return Span{}, false
	}
	open := start + m[1] - 1
	closing, ok := balancedPair(text, open, syn.BodyOpen, syn.BodyClose, syn)
	if !ok {
		return Span{}, false
	}
	return Span{Start: start + m[0], Open: open, Close: closing, End: closing + 1}, true
}

// AppendToBlock adds line as the last statement of the body found by scope, unless
// present matches somewhere inside that body. A missing body is a no-match.
func AppendToBlock(text string, scope *regexp.Regexp, line string, present *regexp.Regexp, syn Syntax) Result {
	span, ok := Block(text, scope, syn)
	if !ok {
		return Result{Text: text, Outcome: OutcomeNoMatch}
	}
	if present != nil && present.MatchString(text[span.Open+1:span.Close]) {
		return Result{Text: text, Outcome: OutcomeUnchanged}
	}
	at := span.Close
	for at > span.Open+1 && (text[at-1] == ' ' || text[at-1] == '\t') {
		at--
	}
	insert := line + "\n"
	if text[at-1] != '\n' {
		at = span.Close
		insert = "\n" + line + "\n"
	}
	return Result{Text: text[:at] + insert + text[at:], Outcome: OutcomeUpdated}
}
