// Package derive computes per-column validation rules and sample-value expressions.
// Every function is pure: derivation never reads snapshots or existing artifacts.
package derive

import (
	"strconv"
	"strings"

	"github.com/schemasmith/schemasmith/internal/schema"
)

// Mode selects the create or update variant of a rule.
type Mode int

const (
	ModeStore Mode = iota
	ModeUpdate
)

// Expr is a validation rule expression. When ExceptID is set the expression
// continues with the id of the record being updated and then Tail, excluding
// that record from a uniqueness check.
type Expr struct {
	Head     string
	ExceptID bool
	Tail     string
}

// String renders e with an {id} placeholder for the excluded record.
func (e Expr) String() string {
	if !e.ExceptID {
		return e.Head
	}
	return e.Head + "{id}" + e.Tail
}

var dateFormats = map[schema.DataType]string{
	schema.DateTime: "Y-m-d H:i:s",
	schema.Date:     "Y-m-d",
	schema.Time:     "H:i:s",
	schema.Year:     "Y",
}

// DateFormat returns the exact format string for a temporal type, or "".
func DateFormat(t schema.DataType) string {
	return dateFormats[t]
}

// Rule returns the validation rule expression for a column, parts joined with "|".
// The unique part, when present, comes last.
func Rule(col schema.Column, mode Mode) Expr {
	parts := []string{presence(col)}

	if tr := TypeRule(col); tr != "" {
		parts = append(parts, tr)
	}
	if len(col.Values) > 0 {
		parts = append(parts, "in:"+strings.Join(col.Values, ","))
	}
	if fk := col.ForeignKey; fk != nil {
		parts = append(parts, "exists:"+fk.ReferencedTable+","+fk.ReferencedColumn)
	}
	if col.IsUnique() {
		unique := "unique:" + col.Table + "," + col.Name
		if mode == ModeUpdate {
			parts = append(parts, unique+",")
			return Expr{Head: strings.Join(parts, "|"), ExceptID: true, Tail: ",id"}
		}
		parts = append(parts, unique)
	}
	return Expr{Head: strings.Join(parts, "|")}
}

// TypeRule returns the type-specific part of a rule, or "" for NONE.
func TypeRule(col schema.Column) string {
	switch {
	case col.Type == schema.String:
		if col.MaxLength != nil {
			return "string|max:" + strconv.Itoa(*col.MaxLength)
		}
		return "string"
	case col.Type.IsInteger():
		return "integer"
	case col.Type == schema.Bit:
		if isSingleBit(col) {
			return "boolean"
		}
		return "integer"
	case col.Type == schema.Decimal:
		return "numeric"
	case col.Type == schema.JSON:
		return "json"
	case col.Type == schema.DateTime, col.Type == schema.Date:
		return "date|date_format:" + DateFormat(col.Type)
	case col.Type == schema.Time, col.Type == schema.Year:
		return "date_format:" + DateFormat(col.Type)
	}
	return ""
}

// Describe returns presence plus type rule, used as a human readable field description.
func Describe(col schema.Column) string {
	if tr := TypeRule(col); tr != "" {
		return presence(col) + "|" + tr
	}
	return presence(col)
}

func presence(col schema.Column) string {
	if col.Nullable {
		return "nullable"
	}
	return "required"
}

func isSingleBit(col schema.Column) bool {
	return col.Precision != nil && *col.Precision == 1
}
