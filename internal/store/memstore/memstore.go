// Package memstore is an in-process store.Backend used for tests and for
// running without a database.
package memstore

import (
	"context"
	"sync"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/store"
	"github.com/google/uuid"
)

type Backend struct {
	mu      sync.RWMutex
	records map[string]store.Record
	order   []string

	// FailInsert makes the next Insert fail, for exercising transport errors.
	FailInsert error
}

func New() *Backend {
	return &Backend{records: make(map[string]store.Record)}
}

func (b *Backend) Insert(_ context.Context, records []store.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.FailInsert; err != nil {
		b.FailInsert = nil
		return err
	}
	for _, r := range records {
		if _, dup := b.records[r.ID]; dup {
			return apperrors.Validation("id", "duplicate record id %s", r.ID)
		}
	}
	for _, r := range records {
		b.records[r.ID] = copyRecord(r)
		b.order = append(b.order, r.ID)
	}
	return nil
}

func (b *Backend) Get(_ context.Context, kind string, owner uuid.UUID, id string) (store.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	r, ok := b.records[id]
	if !ok || r.Kind != kind || r.Owner != owner {
		return store.Record{}, apperrors.NotFound(kind, id)
	}
	return copyRecord(r), nil
}

func (b *Backend) Replace(_ context.Context, record store.Record, prevVersion int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, ok := b.records[record.ID]
	if !ok || r.Kind != record.Kind || r.Owner != record.Owner {
		return apperrors.NotFound(record.Kind, record.ID)
	}
	if r.Version != prevVersion {
		return &apperrors.ConflictError{Kind: record.Kind, ID: record.ID, Version: prevVersion}
	}
	b.records[record.ID] = copyRecord(record)
	return nil
}

func (b *Backend) Find(_ context.Context, q store.Query) ([]store.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []store.Record
	for _, id := range b.order {
		r, ok := b.records[id]
		if !ok || r.Kind != q.Kind || r.Owner != q.Owner {
			continue
		}
		if store.Matches(r, q.Criteria) {
			out = append(out, copyRecord(r))
		}
	}
	return out, nil
}

func (b *Backend) DeleteOwner(_ context.Context, owner uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := b.order[:0]
	for _, id := range b.order {
		if b.records[id].Owner == owner {
			delete(b.records, id)
			continue
		}
		kept = append(kept, id)
	}
	b.order = kept
	return nil
}

func (b *Backend) Ping(context.Context) error { return nil }

// Len returns the number of stored records across all owners.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.records)
}

func copyRecord(r store.Record) store.Record {
	r.Fields = store.Clone(r.Fields)
	return r
}
