package patch

import (
	"fmt"
	"regexp"
	"strings"
)

// HasImport reports whether fqn already appears in text as a whole name.
func HasImport(text, fqn string) bool {
	pattern := fmt.Sprintf(`(^|[^\w\\])%s($|[^\w\\])`, regexp.QuoteMeta(fqn))
	return regexp.MustCompile(pattern).MatchString(text)
}

// AddImport adds an import of fqn unless the name already appears. The declaration
// goes before the first unindented import, else after the namespace declaration, else
// after the file marker.
func AddImport(text, fqn string, syn Syntax) Result {
	if HasImport(text, fqn) {
		return Result{Text: text, Outcome: OutcomeUnchanged}
	}
	decl := syn.ImportKeyword + " " + fqn + syn.Terminator

	firstImport := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(syn.ImportKeyword) + `\s`)
	if m := firstImport.FindStringIndex(text); m != nil {
		return Result{Text: text[:m[0]] + decl + "\n" + text[m[0]:], Outcome: OutcomeUpdated}
	}

	if syn.NamespaceKeyword != "" {
		ns := regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(syn.NamespaceKeyword) + `\s+[^` +
			regexp.QuoteMeta(syn.Terminator) + `{]+` + regexp.QuoteMeta(syn.Terminator))
		if m := ns.FindStringIndex(text); m != nil {
			return Result{Text: text[:m[1]] + "\n\n" + decl + text[m[1]:], Outcome: OutcomeUpdated}
		}
	}

	if syn.FileMarker != "" {
		if i := strings.Index(text, syn.FileMarker); i >= 0 {
			end := i + len(syn.FileMarker)
			return Result{Text: text[:end] + "\n\n" + decl + text[end:], Outcome: OutcomeUpdated}
		}
	}
	return Result{Text: text, Outcome: OutcomeNoMatch}
}
