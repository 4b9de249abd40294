// Package generation runs the prompt -> completion -> persist cycle that
// turns a user's profile into new career, learning, project and interview
// records.
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/completion"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/entity"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/identity"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/storage"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/store"
)

// Position says where a page inserts the records a flow produced.
type Position string

const (
	Append  Position = "append"
	Prepend Position = "prepend"
	Replace Position = "replace"
)

// Result is what a flow hands back to the page controller.
type Result struct {
	Flow     string        `json:"flow"`
	Slot     string        `json:"slot"`
	Position Position      `json:"position"`
	Records  store.Records `json:"records"`
	Data     any           `json:"data,omitempty"`
}

// Job describes one run of the generic flow.
type Job struct {
	Flow   string
	Kind   entity.Kind
	Prompt string
	// Count > 0 asks for a list and keeps at most Count items; zero asks
	// for a single object.
	Count int
	// Omit lists fields the model is not asked for. Set overrides fields
	// on every returned item.
	Omit []string
	Set  map[string]any
}

type Service struct {
	store     *store.Store
	completer completion.Completer
	catalog   *catalog.Catalog
	uploads   storage.Uploader
	logger    *slog.Logger
	now       func() time.Time

	profiles  *store.Collection[entity.UserProfile]
	careers   *store.Collection[entity.CareerPath]
	questions *store.Collection[entity.InterviewPrep]
}

type Option func(*Service)

func WithUploads(u storage.Uploader) Option {
	return func(s *Service) { s.uploads = u }
}

func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) { s.catalog = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(st *store.Store, completer completion.Completer, opts ...Option) *Service {
	s := &Service{
		store:     st,
		completer: completer,
		logger:    slog.Default(),
		now:       time.Now,
		profiles:  store.NewCollection[entity.UserProfile](st),
		careers:   store.NewCollection[entity.CareerPath](st),
		questions: store.NewCollection[entity.InterviewPrep](st),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.catalog == nil {
		s.catalog = catalog.MustDefault()
	}
	return s
}

// Configured reports whether a completion provider is available. Without
// one the interview and resume tip flows answer from the demo catalog.
func (s *Service) Configured() bool {
	type configurable interface{ Configured() bool }
	if c, ok := s.completer.(configurable); ok {
		return c.Configured()
	}
	return s.completer != nil
}

// Run executes job: it asks the completion service for records shaped by
// the kind's schema, then persists them for who. Nothing is written unless
// the completion succeeded and every item decoded.
func (s *Service) Run(ctx context.Context, who identity.Identity, job Job) (recs store.Records, err error) {
	defer s.observe(job.Flow, &err)

	if err := who.Require(); err != nil {
		return nil, err
	}
	sch, err := s.store.Schema(string(job.Kind))
	if err != nil {
		return nil, err
	}

	ask := sch.Without(append([]string{sch.Owner}, job.Omit...)...)
	req := completion.Request{
		Prompt:     job.Prompt,
		SchemaName: schemaName(sch.Kind, job.Count > 0),
	}
	if job.Count > 0 {
		req.Schema = ask.ListSchema()
	} else {
		req.Schema = ask.JSONSchema()
	}

	raw, err := s.completer.Complete(ctx, req)
	if err != nil {
		return nil, apperrors.Transport("complete "+job.Flow, err)
	}
	items, err := decodeItems(raw, job.Count > 0)
	if err != nil {
		return nil, apperrors.Transport("decode "+job.Flow, err)
	}
	if job.Count > 0 && len(items) > job.Count {
		items = items[:job.Count]
	}
	for i, item := range items {
		item = ask.Conform(item)
		for k, v := range job.Set {
			item[k] = v
		}
		items[i] = item
	}

	if job.Count == 0 {
		rec, err := s.store.Create(ctx, who, sch.Kind, items[0])
		if err != nil {
			return nil, err
		}
		return store.Records{rec}, nil
	}
	return s.store.BulkCreate(ctx, who, sch.Kind, items)
}

// complete asks for an ad hoc object that is not persisted as an entity.
func (s *Service) complete(ctx context.Context, req completion.Request, out any) error {
	raw, err := s.completer.Complete(ctx, req)
	if err != nil {
		return apperrors.Transport("complete "+req.SchemaName, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.Transport("decode "+req.SchemaName, err)
	}
	return nil
}

func (s *Service) observe(flow string, errp *error) {
	metrics.Generations.WithLabelValues(flow, metrics.Result(*errp)).Inc()
	if *errp != nil {
		s.logger.Warn("generation failed", "action", "generate."+flow, "error", (*errp).Error())
	}
}

var (
	errNoItems   = errors.New("completion returned no items")
	errNoUploads = errors.New("no uploader configured")
)

// decodeItems accepts {"items": [...]}, a bare array, or an object whose
// only array value holds the items, since models rename the envelope.
func decodeItems(raw json.RawMessage, many bool) ([]map[string]any, error) {
	if !many {
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("expected a JSON object: %w", err)
		}
		return []map[string]any{obj}, nil
	}

	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return nil, errNoItems
		}
		return list, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("expected an items list: %w", err)
	}
	body, ok := envelope["items"]
	if !ok {
		for _, v := range envelope {
			if len(v) > 0 && v[0] == '[' {
				if ok {
					return nil, errors.New("ambiguous items list")
				}
				body, ok = v, true
			}
		}
	}
	if !ok {
		return nil, errNoItems
	}
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("items must be objects: %w", err)
	}
	if len(list) == 0 {
		return nil, errNoItems
	}
	return list, nil
}

func schemaName(kind string, many bool) string {
	if many {
		return kind + "_list"
	}
	return kind
}
