package store

import (
	"cmp"
	"reflect"
	"slices"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/schema"
)

// Matches reports whether every criteria entry equals the record's value.
// Both sides are expected to be schema-normalized.
func Matches(r Record, criteria map[string]any) bool {
	for name, want := range criteria {
		got, ok := r.value(name)
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func sortRecords(rs []Record, s Sort) {
	slices.SortStableFunc(rs, func(a, b Record) int {
		c := compareValues(a, b, s.Field)
		if c == 0 {
			c = a.CreatedAt.Compare(b.CreatedAt)
			if c == 0 {
				c = cmp.Compare(a.ID, b.ID)
			}
		}
		if s.Desc {
			return -c
		}
		return c
	})
}

// compareValues orders numbers and strings; absent values sort first.
func compareValues(a, b Record, field string) int {
	switch field {
	case schema.FieldCreatedDate:
		return a.CreatedAt.Compare(b.CreatedAt)
	case schema.FieldUpdatedDate:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
	av, aok := a.value(field)
	bv, bok := b.value(field)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}
	switch x := av.(type) {
	case float64:
		if y, ok := bv.(float64); ok {
			return cmp.Compare(x, y)
		}
	case string:
		if y, ok := bv.(string); ok {
			return cmp.Compare(x, y)
		}
	case bool:
		if y, ok := bv.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	}
	return 0
}
