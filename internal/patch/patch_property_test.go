package patch

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

const propertyDoc = `<?php

class Sample
{
    public function definition(): array
    {
        return [
            'seed' => 1,
        ];
    }

    public function custom()
    {
        return ['kept' => [1, [2]]];
    }
}
`

func nested(nums []int, depth int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	v := "[" + strings.Join(parts, ", ") + "]"
	for i := 0; i < depth; i++ {
		v = "[" + v + ", 'x]']"
	}
	return v
}

func TestProperty_PatchIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	loc := FunctionReturn(testSyntax, "definition")

	properties.Property("patching twice equals patching once", prop.ForAll(
		func(keys []string, nums []int, depth int) bool {
			fields := make([]Field, 0, len(keys))
			for i, k := range keys {
				fields = append(fields, Field{Key: k, Value: nested(nums, (depth+i)%3), Source: k})
			}
			first := Patch(propertyDoc, loc, fields, alwaysChanged, multiline, testSyntax)
			second := Patch(first.Text, loc, fields, neverChanged, multiline, testSyntax)
			return first.Outcome != OutcomeNoMatch &&
				second.Text == first.Text &&
				second.Outcome == OutcomeUnchanged &&
				strings.Contains(second.Text, "return ['kept' => [1, [2]]];")
		},
		gen.SliceOf(gen.Identifier()),
		gen.SliceOfN(4, gen.IntRange(-1000, 1000)),
		gen.IntRange(0, 5),
	))

	properties.TestingRun(t)
}

func TestProperty_NestedValuesSurviveExtraction(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("outer literal is never truncated at an inner bracket", prop.ForAll(
		func(nums []int, depth int) bool {
			value := nested(nums, depth)
			src := fmt.Sprintf("return ['a' => %s, 'b' => 'tail]'];\necho 1;", value)
			span, ok := Locate(src, Returning(testSyntax), testSyntax)
			if !ok || src[span.End:] != "\necho 1;" {
				return false
			}
			fm := Extract(src, span, testSyntax)
			a, okA := fm.Get("a")
			b, okB := fm.Get("b")
			return okA && okB && a.Value == value && b.Value == "'tail]'"
		},
		gen.SliceOf(gen.IntRange(-50, 50)),
		gen.IntRange(0, 6),
	))

	properties.TestingRun(t)
}

func TestProperty_AddImportIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	docs := []string{
		"<?php\n\nnamespace App\\Models;\n\nuse Illuminate\\Support\\Str;\n\nclass A {}\n",
		"<?php\n\nnamespace App\\Models;\n\nclass A {}\n",
		"<?php\n\nclass A {}\n",
	}

	properties.Property("adding an import twice equals adding it once", prop.ForAll(
		func(segments []string, docIdx int) bool {
			fqn := "App\\" + strings.Join(segments, "\\")
			once := AddImport(docs[docIdx], fqn, testSyntax)
			twice := AddImport(once.Text, fqn, testSyntax)
			return once.Outcome == OutcomeUpdated &&
				twice.Outcome == OutcomeUnchanged &&
				twice.Text == once.Text
		},
		gen.SliceOfN(2, gen.Identifier()),
		gen.IntRange(0, len(docs)-1),
	))

	properties.TestingRun(t)
}
