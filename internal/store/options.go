package store

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/schema"
)

// Sort orders filter results by one field.
type Sort struct {
	Field string
	Desc  bool
}

// ParseSort reads "-created_date" style sort keys.
func ParseSort(s string) Sort {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		return Sort{Field: strings.TrimPrefix(s, "-"), Desc: true}
	}
	return Sort{Field: strings.TrimPrefix(s, "+")}
}

func (s Sort) String() string {
	if s.Desc {
		return "-" + s.Field
	}
	return s.Field
}

type filterOptions struct {
	sort  Sort
	limit int
}

type FilterOption func(*filterOptions)

// SortBy orders results; the default is oldest first by created_date.
func SortBy(key string) FilterOption {
	return func(o *filterOptions) {
		if key != "" {
			o.sort = ParseSort(key)
		}
	}
}

// Limit caps the number of returned records. Zero means no limit.
func Limit(n int) FilterOption {
	return func(o *filterOptions) {
		if n > 0 {
			o.limit = n
		}
	}
}

func buildFilterOptions(opts []FilterOption) filterOptions {
	o := filterOptions{sort: Sort{Field: schema.FieldCreatedDate}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
