package store

import (
	"encoding/json"
	"iter"
	"time"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/schema"
	"github.com/google/uuid"
)

// Record is a stored entity: validated fields plus the store-maintained
// system fields.
type Record struct {
	ID        string
	Kind      string
	Owner     uuid.UUID
	Fields    map[string]any
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Map returns the record as one flat field map, system fields included.
// This is the shape returned over HTTP and decoded into entity structs.
func (r Record) Map() map[string]any {
	out := Clone(r.Fields)
	out[schema.FieldID] = r.ID
	out[schema.FieldCreatedDate] = formatTime(r.CreatedAt)
	out[schema.FieldUpdatedDate] = formatTime(r.UpdatedAt)
	out[schema.FieldVersion] = r.Version
	return out
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}

// value returns the normalized value used for matching and sorting.
func (r Record) value(name string) (any, bool) {
	switch name {
	case schema.FieldID:
		return r.ID, true
	case schema.FieldCreatedDate:
		return formatTime(r.CreatedAt), true
	case schema.FieldUpdatedDate:
		return formatTime(r.UpdatedAt), true
	case schema.FieldVersion:
		return float64(r.Version), true
	}
	v, ok := r.Fields[name]
	return v, ok
}

// Records is the finite, restartable result of a filter.
type Records []Record

// All yields the records in order. Each call starts a fresh pass.
func (rs Records) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, r := range rs {
			if !yield(r) {
				return
			}
		}
	}
}

// IDs returns the record identifiers in order.
func (rs Records) IDs() []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

// TimeLayout is RFC 3339 with fixed millisecond precision so formatted
// timestamps also sort lexically.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Timestamp truncates to the precision every backend can round-trip.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// Clone deep-copies a normalized field map.
func Clone(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields)+4)
	for k, v := range fields {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Clone(t)
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = cloneValue(x)
		}
		return out
	default:
		return v
	}
}
