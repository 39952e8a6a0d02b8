package derive

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/schemasmith/schemasmith/internal/naming"
	"github.com/schemasmith/schemasmith/internal/schema"
)

// maxTextSample caps generated text length; long text columns would otherwise ask
// the generator for gigabytes.
const maxTextSample = 1000

// minTextSample is the smallest length the text generator accepts.
const minTextSample = 5

const jsonSample = "$this->faker->randomElement([json_encode(['key' => 'value']), json_encode(['foo' => 'bar'])])"

// SampleValue is a sample-value expression. Model names the entity class the
// expression refers to, if any, so the caller can import it.
type SampleValue struct {
	Expr  string
	Model string
}

// Sample returns the sample-value expression for a column. Foreign keys win, then the
// semantic name dictionary, then enumerated values, then the type.
func Sample(col schema.Column) SampleValue {
	if fk := col.ForeignKey; fk != nil {
		model := naming.ClassName(fk.ReferencedTable)
		return SampleValue{
			Expr:  fmt.Sprintf("%s::all()->pluck('%s')->random()", model, fk.ReferencedColumn),
			Model: model,
		}
	}
	if expr, ok := semanticSample(col.Name); ok {
		return SampleValue{Expr: expr}
	}
	if len(col.Values) > 0 {
		quoted := make([]string, len(col.Values))
		for i, v := range col.Values {
			quoted[i] = "'" + strings.ReplaceAll(v, "'", `\'`) + "'"
		}
		return SampleValue{Expr: "$this->faker->randomElement([" + strings.Join(quoted, ", ") + "])"}
	}
	if expr := typeSample(col); expr != "" {
		return SampleValue{Expr: expr}
	}
	return SampleValue{Expr: "''"}
}

func typeSample(col schema.Column) string {
	switch {
	case col.Type == schema.String:
		return textSample(col.MaxLength)
	case col.Type.IsInteger():
		r := NumericRange(col)
		return fmt.Sprintf("$this->faker->numberBetween(%s, %s)", r.Min, r.Max)
	case col.Type == schema.Bit:
		if isSingleBit(col) {
			return "$this->faker->boolean"
		}
		return fmt.Sprintf("$this->faker->numberBetween(0, %s)", bitMax(col))
	case col.Type == schema.Decimal:
		scale := 2
		if col.Scale != nil {
			scale = *col.Scale
		}
		r := NumericRange(col)
		return fmt.Sprintf("$this->faker->randomFloat(%d, %s, %s)", scale, r.Min, r.Max)
	case col.Type == schema.JSON:
		return jsonSample
	case col.Type.IsTemporal():
		return fmt.Sprintf("$this->faker->date('%s')", DateFormat(col.Type))
	}
	return ""
}

func textSample(maxLength *int) string {
	if maxLength == nil {
		return "$this->faker->text()"
	}
	n := *maxLength
	if n < minTextSample {
		return "$this->faker->lexify(str_repeat('?', " + strconv.Itoa(n) + "))"
	}
	if n > maxTextSample {
		n = maxTextSample
	}
	return "$this->faker->text(" + strconv.Itoa(n) + ")"
}
