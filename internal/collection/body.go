package collection

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is one body field derived from a column.
type Field struct {
	Key         string
	Description string
}

func (f Field) sampleValue() string { return f.Key + " value" }

// BodyMode is the encoding of a write request body. Each variant renders the same
// fields in its own shape.
type BodyMode interface {
	Name() string
	Body(fields []Field, list bool) *Body
}

type (
	URLEncoded struct{}
	FormData   struct{}
	Raw        struct{}
)

// ParseBodyMode resolves a configured mode name.
func ParseBodyMode(s string) (BodyMode, error) {
	switch s {
	case "urlencoded":
		return URLEncoded{}, nil
	case "formdata":
		return FormData{}, nil
	case "raw", "":
		return Raw{}, nil
	}
	return nil, fmt.Errorf("unknown body mode %q", s)
}

func (URLEncoded) Name() string { return "urlencoded" }

func (URLEncoded) Body(fields []Field, list bool) *Body {
	return &Body{Mode: "urlencoded", URLEncoded: formParams(fields, list)}
}

func (FormData) Name() string { return "formdata" }

func (FormData) Body(fields []Field, list bool) *Body {
	return &Body{Mode: "formdata", FormData: formParams(fields, list)}
}

func (Raw) Name() string { return "raw" }

// Body renders the fields as a JSON object in column order, wrapped in a one
// element list under "list" for bulk requests.
func (Raw) Body(fields []Field, list bool) *Body {
	obj := orderedObject(fields)
	var raw string
	if list {
		raw = "{\n    \"list\": [\n" + indent(obj, "        ") + "\n    ]\n}"
	} else {
		raw = obj
	}
	return rawBody(raw)
}

func rawBody(raw string) *Body {
	b := &Body{Mode: "raw", Raw: raw, Options: &BodyOptions{}}
	b.Options.Raw.Language = "json"
	return b
}

func formParams(fields []Field, list bool) []Param {
	params := make([]Param, 0, len(fields))
	for _, f := range fields {
		key := f.Key
		if list {
			key = "list[0][" + key + "]"
		}
		params = append(params, Param{Key: key, Value: f.sampleValue(), Description: f.Description, Type: "text"})
	}
	return params
}

func orderedObject(fields []Field) string {
	if len(fields) == 0 {
		return "{}"
	}
	var b bytes.Buffer
	b.WriteString("{\n")
	for i, f := range fields {
		k, _ := json.Marshal(f.Key)
		v, _ := json.Marshal(f.sampleValue())
		b.WriteString("    ")
		b.Write(k)
		b.WriteString(": ")
		b.Write(v)
		if i < len(fields)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}")
	return b.String()
}

func indent(s, prefix string) string {
	var b bytes.Buffer
	for i, line := range bytes.Split([]byte(s), []byte("\n")) {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(prefix)
		b.Write(line)
	}
	return b.String()
}
