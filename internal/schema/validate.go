package schema

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/google/uuid"
)

// Mode selects how absent fields are treated.
type Mode int

const (
	// Create fills declared defaults and empty arrays for absent fields.
	Create Mode = iota
	// Patch validates only the fields present.
	Patch
)

// Validate checks fields against the schema and returns a normalized copy:
// numbers become float64, arrays become []any, objects become map[string]any.
// Unknown fields, system fields and out-of-set enum values are rejected.
// A null value is treated as absent; in Patch mode it resets an array to empty.
func (s *Schema) Validate(fields map[string]any, mode Mode) (map[string]any, error) {
	out := make(map[string]any, len(s.Fields))
	for name, raw := range fields {
		if IsSystemField(name) {
			return nil, apperrors.Validation(name, "is maintained by the store")
		}
		f, ok := s.Fields[name]
		if !ok {
			return nil, apperrors.Validation(name, "unknown field for %s", s.Kind)
		}
		if raw == nil {
			if mode == Patch && f.Type == Array {
				out[name] = []any{}
			}
			continue
		}
		v, err := f.normalize(name, raw, mode)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	if mode == Create {
		for name, f := range s.Fields {
			if _, ok := out[name]; ok {
				continue
			}
			if d, ok := f.defaultValue(); ok {
				out[name] = d
			}
		}
	}
	return out, nil
}

// ValidateValue checks a single criteria value for a filter.
func (s *Schema) ValidateValue(name string, raw any) (any, error) {
	if IsSystemField(name) {
		switch name {
		case FieldVersion:
			n, ok := toFloat(raw)
			if !ok {
				return nil, apperrors.Validation(name, "must be a number")
			}
			return n, nil
		default:
			str, ok := raw.(string)
			if !ok {
				return nil, apperrors.Validation(name, "must be a string")
			}
			return str, nil
		}
	}
	f, ok := s.Fields[name]
	if !ok {
		return nil, apperrors.Validation(name, "unknown field for %s", s.Kind)
	}
	if raw == nil {
		return nil, apperrors.Validation(name, "null is not a filter value")
	}
	return f.normalize(name, raw, Patch)
}

func (f *Field) defaultValue() (any, bool) {
	if f.Default != nil {
		if n, ok := toFloat(f.Default); ok {
			return n, true
		}
		return f.Default, true
	}
	if f.Type == Array {
		return []any{}, true
	}
	return nil, false
}

func (f *Field) normalize(path string, raw any, mode Mode) (any, error) {
	switch f.Type {
	case String:
		str, ok := raw.(string)
		if !ok {
			return nil, apperrors.Validation(path, "must be a string")
		}
		if len(f.Enum) > 0 && !slices.Contains(f.Enum, str) {
			return nil, apperrors.Validation(path, "%q is not one of %v", str, f.Enum)
		}
		switch f.Format {
		case "date-time":
			if _, err := time.Parse(time.RFC3339, str); err != nil {
				return nil, apperrors.Validation(path, "must be an RFC 3339 date-time")
			}
		case "uuid":
			if _, err := uuid.Parse(str); err != nil {
				return nil, apperrors.Validation(path, "must be a UUID")
			}
		}
		return str, nil

	case Number, Integer:
		n, ok := toFloat(raw)
		if !ok {
			return nil, apperrors.Validation(path, "must be a number")
		}
		if f.Type == Integer && n != math.Trunc(n) {
			return nil, apperrors.Validation(path, "must be an integer")
		}
		if f.Minimum != nil && n < *f.Minimum {
			return nil, apperrors.Validation(path, "must be >= %v", *f.Minimum)
		}
		if f.Maximum != nil && n > *f.Maximum {
			return nil, apperrors.Validation(path, "must be <= %v", *f.Maximum)
		}
		return n, nil

	case Boolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, apperrors.Validation(path, "must be a boolean")
		}
		return b, nil

	case Object:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, apperrors.Validation(path, "must be an object")
		}
		out := make(map[string]any, len(f.Properties))
		for key, v := range m {
			p, ok := f.Properties[key]
			if !ok {
				return nil, apperrors.Validation(path+"."+key, "unknown property")
			}
			if v == nil {
				continue
			}
			nv, err := p.normalize(path+"."+key, v, mode)
			if err != nil {
				return nil, err
			}
			out[key] = nv
		}
		for key, p := range f.Properties {
			if _, ok := out[key]; ok {
				continue
			}
			if d, ok := p.defaultValue(); ok {
				out[key] = d
			}
		}
		return out, nil

	case Array:
		items, ok := toSlice(raw)
		if !ok {
			return nil, apperrors.Validation(path, "must be an array")
		}
		out := make([]any, 0, len(items))
		for i, item := range items {
			if item == nil {
				return nil, apperrors.Validation(indexPath(path, i), "null array element")
			}
			nv, err := f.Items.normalize(indexPath(path, i), item, mode)
			if err != nil {
				return nil, err
			}
			out = append(out, nv)
		}
		return out, nil
	}
	return nil, apperrors.Validation(path, "unsupported type %q", f.Type)
}

func indexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func toSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out, true
	}
	return nil, false
}
