// Package schema describes entity kinds as field descriptors and validates
// field maps against them before anything reaches a storage backend.
package schema

import (
	"fmt"
	"sort"
)

// Type is the value kind of a field.
type Type string

const (
	String  Type = "string"
	Number  Type = "number"
	Integer Type = "integer"
	Boolean Type = "boolean"
	Object  Type = "object"
	Array   Type = "array"
)

// System fields are maintained by the store and cannot be written by callers.
const (
	FieldID          = "id"
	FieldCreatedDate = "created_date"
	FieldUpdatedDate = "updated_date"
	FieldVersion     = "version"
)

var systemFields = map[string]bool{
	FieldID:          true,
	FieldCreatedDate: true,
	FieldUpdatedDate: true,
	FieldVersion:     true,
}

// IsSystemField reports whether name is one of the store-maintained fields.
func IsSystemField(name string) bool { return systemFields[name] }

// Field is a type descriptor. Objects carry Properties, arrays carry Items.
type Field struct {
	Type        Type              `yaml:"type"`
	Description string            `yaml:"description,omitempty"`
	Format      string            `yaml:"format,omitempty"`
	Enum        []string          `yaml:"enum,omitempty"`
	Items       *Field            `yaml:"items,omitempty"`
	Properties  map[string]*Field `yaml:"properties,omitempty"`
	Minimum     *float64          `yaml:"minimum,omitempty"`
	Maximum     *float64          `yaml:"maximum,omitempty"`
	Default     any               `yaml:"default,omitempty"`
}

// Schema declares one entity kind.
type Schema struct {
	Kind        string            `yaml:"kind"`
	Owner       string            `yaml:"owner"`
	Description string            `yaml:"description,omitempty"`
	Fields      map[string]*Field `yaml:"fields"`
}

// Has reports whether name is declared on the kind or is a system field.
func (s *Schema) Has(name string) bool {
	if IsSystemField(name) {
		return true
	}
	_, ok := s.Fields[name]
	return ok
}

// Field returns the descriptor for name, or nil.
func (s *Schema) Field(name string) *Field {
	return s.Fields[name]
}

// FieldNames returns the declared field names in lexical order.
func (s *Schema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Subset returns a copy of the schema limited to the named fields.
// Unknown names are ignored.
func (s *Schema) Subset(names ...string) *Schema {
	out := &Schema{Kind: s.Kind, Owner: s.Owner, Description: s.Description, Fields: make(map[string]*Field, len(names))}
	for _, name := range names {
		if f, ok := s.Fields[name]; ok {
			out.Fields[name] = f
		}
	}
	return out
}

// Without returns a copy of the schema with the named fields removed.
func (s *Schema) Without(names ...string) *Schema {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := &Schema{Kind: s.Kind, Owner: s.Owner, Description: s.Description, Fields: make(map[string]*Field, len(s.Fields))}
	for name, f := range s.Fields {
		if !drop[name] {
			out.Fields[name] = f
		}
	}
	return out
}

func (s *Schema) check() error {
	if s.Kind == "" {
		return fmt.Errorf("schema without kind")
	}
	if s.Owner == "" {
		return fmt.Errorf("%s: owner field is required", s.Kind)
	}
	owner, ok := s.Fields[s.Owner]
	if !ok || owner.Type != String {
		return fmt.Errorf("%s: owner field %q must be a declared string field", s.Kind, s.Owner)
	}
	for name, f := range s.Fields {
		if IsSystemField(name) {
			return fmt.Errorf("%s: %q is a reserved field name", s.Kind, name)
		}
		if err := f.check(0); err != nil {
			return fmt.Errorf("%s.%s: %w", s.Kind, name, err)
		}
	}
	return nil
}

// check enforces the one-level nesting rule: top-level objects and arrays of
// objects may hold scalars or arrays of scalars, nothing deeper.
func (f *Field) check(depth int) error {
	if f == nil {
		return fmt.Errorf("missing descriptor")
	}
	switch f.Type {
	case String, Number, Integer, Boolean:
		if len(f.Enum) > 0 && f.Type != String {
			return fmt.Errorf("enum is only supported on strings")
		}
		return nil
	case Object:
		if depth > 0 {
			return fmt.Errorf("objects may only be nested one level")
		}
		if len(f.Properties) == 0 {
			return fmt.Errorf("object without properties")
		}
		for name, p := range f.Properties {
			if err := p.check(depth + 1); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
		return nil
	case Array:
		if f.Items == nil {
			return fmt.Errorf("array without items")
		}
		if f.Items.Type == Array {
			return fmt.Errorf("arrays of arrays are not supported")
		}
		return f.Items.check(depth)
	default:
		return fmt.Errorf("unknown type %q", f.Type)
	}
}
