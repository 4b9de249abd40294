// Package store is the schema-validated, owner-scoped entity store. Every
// operation validates locally before touching the backend, so a validation
// failure never leaves a partial record behind.
package store

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/events"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/identity"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/schema"
	"github.com/google/uuid"
)

// Query is what a backend receives for a filter. Backends may return a
// superset of the matching records; the store re-applies exact matching,
// ordering and limits so every backend behaves the same.
type Query struct {
	Kind     string
	Owner    uuid.UUID
	Criteria map[string]any
}

// Backend persists records. Insert must be all-or-nothing. Replace must
// fail with a NotFoundError when the record is gone and a ConflictError
// when its version is no longer prevVersion.
type Backend interface {
	Insert(ctx context.Context, records []Record) error
	Get(ctx context.Context, kind string, owner uuid.UUID, id string) (Record, error)
	Replace(ctx context.Context, record Record, prevVersion int) error
	Find(ctx context.Context, q Query) ([]Record, error)
	DeleteOwner(ctx context.Context, owner uuid.UUID) error
	Ping(ctx context.Context) error
}

type Store struct {
	schemas   *schema.Registry
	backend   Backend
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time

	mu   sync.Mutex
	last time.Time
}

type Option func(*Store)

func WithPublisher(p events.Publisher) Option {
	return func(s *Store) { s.publisher = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(schemas *schema.Registry, backend Backend, opts ...Option) *Store {
	s := &Store{
		schemas:   schemas,
		backend:   backend,
		publisher: events.Noop{},
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schema returns the schema for kind.
func (s *Store) Schema(kind string) (*schema.Schema, error) {
	return s.schemas.Get(kind)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Create validates fields, binds the record to who and persists it.
func (s *Store) Create(ctx context.Context, who identity.Identity, kind string, fields map[string]any) (rec Record, err error) {
	defer s.observe(kind, "create", &err)

	sch, err := s.prepare(who, kind)
	if err != nil {
		return Record{}, err
	}
	rec, err = s.newRecord(who, sch, fields)
	if err != nil {
		return Record{}, err
	}
	if err := s.backend.Insert(ctx, []Record{rec}); err != nil {
		return Record{}, apperrors.Transport("create "+sch.Kind, err)
	}
	s.publish(ctx, events.EntityCreated, rec)
	return rec, nil
}

// BulkCreate validates every item before persisting any of them. The
// returned records are in input order.
func (s *Store) BulkCreate(ctx context.Context, who identity.Identity, kind string, items []map[string]any) (recs []Record, err error) {
	defer s.observe(kind, "bulk_create", &err)

	sch, err := s.prepare(who, kind)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []Record{}, nil
	}

	recs = make([]Record, 0, len(items))
	for i, fields := range items {
		rec, err := s.newRecord(who, sch, fields)
		if err != nil {
			return nil, withIndex(err, i)
		}
		recs = append(recs, rec)
	}
	if err := s.backend.Insert(ctx, recs); err != nil {
		return nil, apperrors.Transport("bulk create "+sch.Kind, err)
	}
	for _, rec := range recs {
		s.publish(ctx, events.EntityCreated, rec)
	}
	return recs, nil
}

// Update merges patch into the record id. Owner and system fields cannot change.
func (s *Store) Update(ctx context.Context, who identity.Identity, kind, id string, patch map[string]any) (rec Record, err error) {
	defer s.observe(kind, "update", &err)

	sch, err := s.prepare(who, kind)
	if err != nil {
		return Record{}, err
	}
	clean, err := sch.Validate(patch, schema.Patch)
	if err != nil {
		return Record{}, err
	}
	if v, ok := clean[sch.Owner]; ok {
		if v != who.Owner() {
			return Record{}, apperrors.Validation(sch.Owner, "cannot be reassigned")
		}
		delete(clean, sch.Owner)
	}

	existing, err := s.backend.Get(ctx, sch.Kind, who.ID, id)
	if err != nil {
		return Record{}, apperrors.Transport("get "+sch.Kind, err)
	}
	if len(clean) == 0 {
		return existing, nil
	}

	rec = existing
	rec.Fields = Clone(existing.Fields)
	for k, v := range clean {
		rec.Fields[k] = v
	}
	rec.Version = existing.Version + 1
	rec.UpdatedAt = s.stamp()

	if err := s.backend.Replace(ctx, rec, existing.Version); err != nil {
		return Record{}, apperrors.Transport("update "+sch.Kind, err)
	}
	s.publish(ctx, events.EntityUpdated, rec)
	return rec, nil
}

// Get returns one record in the caller's scope.
func (s *Store) Get(ctx context.Context, who identity.Identity, kind, id string) (rec Record, err error) {
	defer s.observe(kind, "get", &err)

	sch, err := s.prepare(who, kind)
	if err != nil {
		return Record{}, err
	}
	rec, err = s.backend.Get(ctx, sch.Kind, who.ID, id)
	if err != nil {
		return Record{}, apperrors.Transport("get "+sch.Kind, err)
	}
	return rec, nil
}

// Filter returns the caller's records whose fields equal every criteria
// entry. Empty criteria and unknown field names are rejected.
func (s *Store) Filter(ctx context.Context, who identity.Identity, kind string, criteria map[string]any, opts ...FilterOption) (out Records, err error) {
	defer s.observe(kind, "filter", &err)

	sch, err := s.prepare(who, kind)
	if err != nil {
		return nil, err
	}
	if len(criteria) == 0 {
		return nil, apperrors.Validation("criteria", "at least one filter field is required")
	}
	o := buildFilterOptions(opts)
	if !sch.Has(o.sort.Field) {
		return nil, apperrors.Validation("sort", "unknown field %q", o.sort.Field)
	}

	clean := make(map[string]any, len(criteria))
	for name, raw := range criteria {
		v, err := sch.ValidateValue(name, raw)
		if err != nil {
			return nil, err
		}
		clean[name] = v
	}
	// Reads never leave the caller's scope.
	if v, ok := clean[sch.Owner]; ok && v != who.Owner() {
		return Records{}, nil
	}

	found, err := s.backend.Find(ctx, Query{Kind: sch.Kind, Owner: who.ID, Criteria: clean})
	if err != nil {
		return nil, apperrors.Transport("filter "+sch.Kind, err)
	}

	out = make(Records, 0, len(found))
	for _, rec := range found {
		if rec.Owner == who.ID && Matches(rec, clean) {
			out = append(out, rec)
		}
	}
	sortRecords(out, o.sort)
	if o.limit > 0 && len(out) > o.limit {
		out = out[:o.limit]
	}
	return out, nil
}

// Owned returns every record of kind bound to who.
func (s *Store) Owned(ctx context.Context, who identity.Identity, kind string, opts ...FilterOption) (Records, error) {
	sch, err := s.schemas.Get(kind)
	if err != nil {
		return nil, err
	}
	return s.Filter(ctx, who, kind, map[string]any{sch.Owner: who.Owner()}, opts...)
}

// DeleteOwner removes every record bound to who. Used by account deletion.
func (s *Store) DeleteOwner(ctx context.Context, who identity.Identity) error {
	if err := who.Require(); err != nil {
		return err
	}
	if err := s.backend.DeleteOwner(ctx, who.ID); err != nil {
		return apperrors.Transport("delete owner records", err)
	}
	return nil
}

func (s *Store) prepare(who identity.Identity, kind string) (*schema.Schema, error) {
	if err := who.Require(); err != nil {
		return nil, err
	}
	return s.schemas.Get(kind)
}

func (s *Store) newRecord(who identity.Identity, sch *schema.Schema, fields map[string]any) (Record, error) {
	clean, err := sch.Validate(fields, schema.Create)
	if err != nil {
		return Record{}, err
	}
	if v, ok := clean[sch.Owner]; ok && v != who.Owner() {
		return Record{}, apperrors.Validation(sch.Owner, "must reference the current user")
	}
	clean[sch.Owner] = who.Owner()

	now := s.stamp()
	return Record{
		ID:        uuid.NewString(),
		Kind:      sch.Kind,
		Owner:     who.ID,
		Fields:    clean,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// stamp returns the next write time. Stamps are strictly increasing so
// records created in one batch, or within one clock tick, keep their order.
func (s *Store) stamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := Timestamp(s.now())
	if !now.After(s.last) {
		now = s.last.Add(time.Millisecond)
	}
	s.last = now
	return now
}

func (s *Store) publish(ctx context.Context, t events.EventType, rec Record) {
	event := events.NewEntityEvent(t, rec.Kind, rec.ID, rec.Owner.String(), rec.Version)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish entity event",
			"action", "entity."+string(t),
			"kind", rec.Kind,
			"user_id", rec.Owner.String(),
			"error", err.Error(),
		)
	}
}

func (s *Store) observe(kind, op string, errp *error) {
	label := "unknown"
	if sch, err := s.schemas.Get(kind); err == nil {
		label = sch.Kind
	}
	metrics.EntityOperations.WithLabelValues(label, op, metrics.Result(*errp)).Inc()
}

func withIndex(err error, i int) error {
	if verr, ok := err.(*apperrors.ValidationError); ok {
		return &apperrors.ValidationError{
			Field:  "items[" + strconv.Itoa(i) + "]." + verr.Field,
			Reason: verr.Reason,
		}
	}
	return err
}
