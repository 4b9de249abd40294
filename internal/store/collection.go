package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/entity"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/identity"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/schema"
)

// Collection is a typed view of one kind, converting entity structs to and
// from validated field maps.
type Collection[T entity.Record] struct {
	store *Store
	kind  string
}

func NewCollection[T entity.Record](s *Store) *Collection[T] {
	var zero T
	return &Collection[T]{store: s, kind: string(zero.Kind())}
}

func (c *Collection[T]) Kind() string { return c.kind }

func (c *Collection[T]) Create(ctx context.Context, who identity.Identity, v T) (T, error) {
	fields, err := ToFields(v)
	if err != nil {
		var zero T
		return zero, err
	}
	rec, err := c.store.Create(ctx, who, c.kind, fields)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](rec)
}

func (c *Collection[T]) BulkCreate(ctx context.Context, who identity.Identity, vs []T) ([]T, error) {
	items := make([]map[string]any, 0, len(vs))
	for _, v := range vs {
		fields, err := ToFields(v)
		if err != nil {
			return nil, err
		}
		items = append(items, fields)
	}
	recs, err := c.store.BulkCreate(ctx, who, c.kind, items)
	if err != nil {
		return nil, err
	}
	return DecodeAll[T](recs)
}

func (c *Collection[T]) Update(ctx context.Context, who identity.Identity, id string, patch map[string]any) (T, error) {
	rec, err := c.store.Update(ctx, who, c.kind, id, patch)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](rec)
}

func (c *Collection[T]) Get(ctx context.Context, who identity.Identity, id string) (T, error) {
	rec, err := c.store.Get(ctx, who, c.kind, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](rec)
}

func (c *Collection[T]) Filter(ctx context.Context, who identity.Identity, criteria map[string]any, opts ...FilterOption) ([]T, error) {
	recs, err := c.store.Filter(ctx, who, c.kind, criteria, opts...)
	if err != nil {
		return nil, err
	}
	return DecodeAll[T](recs)
}

// Owned returns every record of the kind bound to who.
func (c *Collection[T]) Owned(ctx context.Context, who identity.Identity, opts ...FilterOption) ([]T, error) {
	recs, err := c.store.Owned(ctx, who, c.kind, opts...)
	if err != nil {
		return nil, err
	}
	return DecodeAll[T](recs)
}

// ToFields converts an entity struct into a field map without system fields.
func ToFields(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal entity: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal entity fields: %w", err)
	}
	for name := range fields {
		if schema.IsSystemField(name) {
			delete(fields, name)
		}
	}
	return fields, nil
}

// Decode converts a stored record into its entity struct.
func Decode[T any](rec Record) (T, error) {
	var out T
	b, err := json.Marshal(rec.Map())
	if err != nil {
		return out, fmt.Errorf("marshal record: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("decode %s %s: %w", rec.Kind, rec.ID, err)
	}
	return out, nil
}

func DecodeAll[T any](recs []Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, err := Decode[T](rec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
