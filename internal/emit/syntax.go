package emit

import "github.com/schemasmith/schemasmith/internal/patch"

// PHP describes the lexical conventions of the generated artifacts.
var PHP = patch.Syntax{
	ListOpen:          '[',
	ListClose:         ']',
	Separator:         "=>",
	Quote:             '\'',
	Quotes:            `'"`,
	Escape:            '\\',
	BlockCommentOpen:  "/*",
	BlockCommentClose: "*/",
	LineComments:      []string{"//", "#"},
	FunctionKeyword:   "function",
	ReturnKeyword:     "return",
	ImportKeyword:     "use",
	NamespaceKeyword:  "namespace",
	Terminator:        ";",
	FileMarker:        "<?php",
	BodyOpen:          '{',
	BodyClose:         '}',
}

var (
	// returned from a method body
	methodLayout = patch.Layout{Indent: "            ", CloseIndent: "        ", Align: true}
	// assigned to a class property or nested one level in a returned array
	memberLayout = patch.Layout{Indent: "        ", CloseIndent: "    ", Align: true}
	// returned at file level
	fileLayout = patch.Layout{Indent: "    ", Align: true}
)
