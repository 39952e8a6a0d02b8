package derive

import (
	"strconv"
	"strings"

	"github.com/schemasmith/schemasmith/internal/schema"
)

// Range is an inclusive numeric domain rendered as literal text so that 64-bit and
// high-precision decimal bounds stay exact.
type Range struct {
	Min string
	Max string
}

// defaultRangeMax applies to types without a registered range.
const defaultRangeMax = "1000"

var integerRanges = map[schema.DataType]Range{
	schema.TinyInteger:   {Min: "-128", Max: "127"},
	schema.SmallInteger:  {Min: "-32768", Max: "32767"},
	schema.MediumInteger: {Min: "-8388608", Max: "8388607"},
	schema.Integer:       {Min: "-2147483648", Max: "2147483647"},
	schema.BigInteger:    {Min: "-9223372036854775808", Max: "9223372036854775807"},
}

// NumericRange returns the sample bounds of a column. Declared precision and scale
// give max = 10^(p-s) - 10^(-s); otherwise the type's fixed range applies. Unsigned
// columns always start at 0.
func NumericRange(col schema.Column) Range {
	var r Range
	if col.Precision != nil && col.Scale != nil && *col.Precision >= *col.Scale {
		r.Max = nines(*col.Precision-*col.Scale, *col.Scale)
		r.Min = "-" + r.Max
	} else if known, ok := integerRanges[col.Type]; ok {
		r = known
	} else {
		r = Range{Min: "0", Max: defaultRangeMax}
	}
	if col.Unsigned {
		r.Min = "0"
	}
	return r
}

// nines renders 10^intDigits - 10^-fracDigits, e.g. (3, 2) -> 999.99.
func nines(intDigits, fracDigits int) string {
	whole := strings.Repeat("9", intDigits)
	if whole == "" {
		whole = "0"
	}
	if fracDigits == 0 {
		return whole
	}
	return whole + "." + strings.Repeat("9", fracDigits)
}

// bitMax returns 2^p - 1 for a BIT(p) column.
func bitMax(col schema.Column) string {
	if col.Precision == nil || *col.Precision <= 0 {
		return "0"
	}
	p := *col.Precision
	if p >= 64 {
		return strconv.FormatUint(^uint64(0), 10)
	}
	return strconv.FormatUint(1<<uint(p)-1, 10)
}
