// Package naming derives class, variable and label names from table and column names.
package naming

import (
	"strings"

	"github.com/go-openapi/inflect"
	"github.com/serenize/snaker"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Form selects the grammatical number of a derived name.
type Form int

const (
	Singular Form = iota
	Plural
)

var titler = cases.Title(language.English)

// ClassName returns the singular StudlyCase class name for a table ("order_items" -> "OrderItem").
func ClassName(table string) string {
	if table == "" {
		return ""
	}
	return inflect.Camelize(inflect.Singularize(table))
}

// VarName returns a camelCase variable name in the given form ("order_items" -> "orderItem" / "orderItems").
func VarName(word string, form Form) string {
	if word == "" {
		return ""
	}
	camel := inflect.CamelizeDownFirst(word)
	if form == Plural {
		return inflect.Pluralize(camel)
	}
	return inflect.Singularize(camel)
}

// Snake converts a camelCase identifier to snake_case. Snake-cased input is returned as is.
func Snake(s string) string {
	if strings.Contains(s, "_") || strings.ToLower(s) == s {
		return s
	}
	return snaker.CamelToSnake(s)
}

// Title converts a snake_case name to a space separated title ("first_name" -> "First Name").
func Title(s string) string {
	return titler.String(strings.ReplaceAll(Snake(s), "_", " "))
}

// RouteSegment returns the URL path segment for a table ("order_items" -> "order-items").
func RouteSegment(table string) string {
	return strings.ReplaceAll(table, "_", "-")
}
