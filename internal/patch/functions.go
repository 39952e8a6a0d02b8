package patch

import (
	"fmt"
	"regexp"
	"strings"
)

// HasFunction reports whether a function named name is declared in text.
func HasFunction(text, name string, syn Syntax) bool {
	pattern := fmt.Sprintf(`\b%s\s+%s\s*\(`, regexp.QuoteMeta(syn.FunctionKeyword), regexp.QuoteMeta(name))
	return regexp.MustCompile(pattern).MatchString(text)
}

// AppendFunction inserts fn immediately before the last closing body brace.
func AppendFunction(text, fn string, syn Syntax) Result {
	i := strings.LastIndexByte(text, syn.BodyClose)
	if i < 0 {
		return Result{Text: text, Outcome: OutcomeNoMatch}
	}
	return Result{Text: text[:i] + fn + text[i:], Outcome: OutcomeUpdated}
}

// AppendFunctionIfAbsent appends fn unless a function called name already exists.
func AppendFunctionIfAbsent(text, name, fn string, syn Syntax) Result {
	if HasFunction(text, name, syn) {
		return Result{Text: text, Outcome: OutcomeUnchanged}
	}
	return AppendFunction(text, fn, syn)
}
