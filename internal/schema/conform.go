package schema

import "strings"

// Conform prepares loosely shaped input, such as model output, for
// Validate: undeclared and system fields are dropped at every level and
// enum strings are matched without regard to case or surrounding space.
// Values of the wrong type are left for Validate to reject.
func (s *Schema) Conform(fields map[string]any) map[string]any {
	return conformObject(s.Fields, fields)
}

func conformObject(props map[string]*Field, in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for name, v := range in {
		f, ok := props[name]
		if !ok || IsSystemField(name) {
			continue
		}
		out[name] = f.conform(v)
	}
	return out
}

func (f *Field) conform(v any) any {
	switch f.Type {
	case String:
		s, ok := v.(string)
		if !ok || len(f.Enum) == 0 {
			return v
		}
		norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
		for _, e := range f.Enum {
			if e == norm {
				return e
			}
		}
		return v
	case Object:
		if m, ok := v.(map[string]any); ok {
			return conformObject(f.Properties, m)
		}
		return v
	case Array:
		items, ok := v.([]any)
		if !ok || f.Items == nil {
			return v
		}
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = f.Items.conform(item)
		}
		return out
	default:
		return v
	}
}
