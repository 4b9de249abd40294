package schema

import (
	"encoding/json"
	"sort"
)

// JSONSchema renders the kind as a JSON Schema object document.
func (s *Schema) JSONSchema() json.RawMessage {
	return mustMarshal(s.document())
}

// ListSchema renders `{"items": [<kind>...]}`, the envelope the generation
// flows ask the completion service for when they need several records.
func (s *Schema) ListSchema() json.RawMessage {
	return mustMarshal(map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"items"},
		"properties": map[string]any{
			"items": map[string]any{
				"type":  "array",
				"items": s.document(),
			},
		},
	})
}

// ObjectSchema renders an ad hoc object document for responses that are not
// entities, such as extracted resume details.
func ObjectSchema(props map[string]*Field) json.RawMessage {
	f := &Field{Type: Object, Properties: props}
	return mustMarshal(f.document())
}

func (s *Schema) document() map[string]any {
	doc := (&Field{Type: Object, Description: s.Description, Properties: s.Fields}).document()
	doc["title"] = s.Kind
	return doc
}

func (f *Field) document() map[string]any {
	doc := map[string]any{"type": string(f.Type)}
	if f.Description != "" {
		doc["description"] = f.Description
	}
	if f.Format != "" && f.Format != "uuid" {
		doc["format"] = f.Format
	}
	if len(f.Enum) > 0 {
		doc["enum"] = f.Enum
	}
	if f.Minimum != nil {
		doc["minimum"] = *f.Minimum
	}
	if f.Maximum != nil {
		doc["maximum"] = *f.Maximum
	}
	if f.Default != nil {
		doc["default"] = f.Default
	}
	switch f.Type {
	case Object:
		props := make(map[string]any, len(f.Properties))
		names := make([]string, 0, len(f.Properties))
		for name, p := range f.Properties {
			props[name] = p.document()
			names = append(names, name)
		}
		sort.Strings(names)
		doc["properties"] = props
		doc["required"] = names
		doc["additionalProperties"] = false
	case Array:
		if f.Items != nil {
			doc["items"] = f.Items.document()
		}
	}
	return doc
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic("schema: marshal json schema: " + err.Error())
	}
	return b
}
