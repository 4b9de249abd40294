package pages

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/career"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/entity"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/generation"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/identity"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/store"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Generator runs a named generation flow.
type Generator interface {
	Generate(ctx context.Context, who identity.Identity, flow string, args generation.Args) (generation.Result, error)
}

// StatusChange moves the status of one loaded record.
type StatusChange struct {
	ID     string        `json:"id"`
	Action career.Action `json:"action"`
}

// errStale marks a result that belongs to a superseded mount.
var errStale = errors.New("page state superseded")

type Controller struct {
	pages  Registry
	store  *store.Store
	gen    Generator
	states StateStore
	logger *slog.Logger
	now    func() time.Time
	locks  [lockStripes]sync.Mutex
}

// lockStripes bounds the per-(user, page) mutexes. Two keys may share a
// stripe, so update never takes a second lock while holding one.
const lockStripes = 64

type Option func(*Controller)

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithPages(r Registry) Option {
	return func(c *Controller) { c.pages = r }
}

func NewController(st *store.Store, gen Generator, states StateStore, opts ...Option) *Controller {
	c := &Controller{
		pages:  Default(),
		store:  st,
		gen:    gen,
		states: states,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Page returns the page definition by name.
func (c *Controller) Page(name string) (*Page, error) {
	p, ok := c.pages[name]
	if !ok {
		return nil, apperrors.NotFound("page", name)
	}
	return p, nil
}

// Names returns the registered page names in order.
func (c *Controller) Names() []string {
	names := make([]string, 0, len(c.pages))
	for name := range c.pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Mount starts a new epoch and loads every slot of the page concurrently.
// The page becomes ready once all loads settle. If another mount started
// meanwhile, these results are dropped and the newer state is returned.
func (c *Controller) Mount(ctx context.Context, who identity.Identity, name string) (View, error) {
	page, err := c.begin(who, name)
	if err != nil {
		return View{}, err
	}

	var epoch int64
	if _, err := c.update(ctx, who, page, func(st *State) error {
		st.Epoch++
		epoch = st.Epoch
		st.Phase = PhaseLoading
		st.Pending = 0
		st.Error = ""
		return nil
	}); err != nil {
		return View{}, err
	}
	metrics.PageTransitions.WithLabelValues(page.Name, string(PhaseLoading)).Inc()

	slots, loadErr := c.load(ctx, who, page)

	st, err := c.update(context.WithoutCancel(ctx), who, page, func(st *State) error {
		if st.Epoch != epoch {
			return errStale
		}
		st.Slots = slots
		st.Phase = PhaseReady
		st.Error = c.banner(page.Name, "mount", loadErr, "Some of your data could not be loaded. Please refresh.")
		if st.Selection != "" {
			if _, _, ok := st.find(st.Selection); !ok {
				st.Selection = ""
			}
		}
		return nil
	})
	if err != nil {
		return View{}, err
	}
	if st.Epoch == epoch {
		metrics.PageTransitions.WithLabelValues(page.Name, string(PhaseReady)).Inc()
	}
	return Project(page, st), nil
}

func (c *Controller) load(ctx context.Context, who identity.Identity, page *Page) (map[string][]Entry, error) {
	var (
		mu    sync.Mutex
		slots = make(map[string][]Entry, len(page.Slots))
		g     errgroup.Group
	)
	for _, slot := range page.Slots {
		g.Go(func() error {
			recs, err := c.store.Owned(ctx, who, string(slot.Kind), store.SortBy(slot.Sort), store.Limit(slot.Limit))
			entries := []Entry{}
			if err == nil {
				entries = toEntries(recs)
			}
			mu.Lock()
			slots[slot.Name] = entries
			mu.Unlock()
			if err != nil {
				return fmt.Errorf("load %s: %w", slot.Name, err)
			}
			return nil
		})
	}
	err := g.Wait()
	return slots, err
}

// Current returns the view of a mounted page without touching the store.
func (c *Controller) Current(ctx context.Context, who identity.Identity, name string) (View, error) {
	page, err := c.begin(who, name)
	if err != nil {
		return View{}, err
	}
	st, err := c.states.Get(ctx, who.ID, page.Name)
	if err != nil {
		return View{}, apperrors.Transport("load page state", err)
	}
	if st == nil {
		return View{}, apperrors.NotFound("page state", page.Name)
	}
	return Project(page, st), nil
}

// Select marks a loaded record as selected. An empty id clears the selection.
func (c *Controller) Select(ctx context.Context, who identity.Identity, name, id string) (View, error) {
	page, err := c.begin(who, name)
	if err != nil {
		return View{}, err
	}
	st, err := c.update(ctx, who, page, func(st *State) error {
		if err := requireReady(st); err != nil {
			return err
		}
		if id == "" {
			st.Selection = ""
			return nil
		}
		if _, _, ok := st.find(id); !ok {
			return apperrors.NotFound("record", id)
		}
		st.Selection = id
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return Project(page, st), nil
}

// SetFilters replaces the search text and equality filters. Empty filter
// values mean "all" and are dropped.
func (c *Controller) SetFilters(ctx context.Context, who identity.Identity, name, search string, filters map[string]string) (View, error) {
	page, err := c.begin(who, name)
	if err != nil {
		return View{}, err
	}
	clean := make(map[string]string, len(filters))
	for field, v := range filters {
		if !page.allowsFilter(field) {
			return View{}, apperrors.Validation("filters", "%s cannot be filtered by %q", page.Name, field)
		}
		if v != "" && v != "all" {
			clean[field] = v
		}
	}
	st, err := c.update(ctx, who, page, func(st *State) error {
		if st.Epoch == 0 {
			return apperrors.Validation("page", "mount %s first", page.Name)
		}
		st.Search = search
		st.Filters = clean
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return Project(page, st), nil
}

// Generate runs flow and inserts its records into the page. Failures of the
// flow become the page's error banner and leave loaded records untouched.
// The page returns to ready once no generation is pending.
func (c *Controller) Generate(ctx context.Context, who identity.Identity, name, flow string, args generation.Args) (View, error) {
	page, err := c.begin(who, name)
	if err != nil {
		return View{}, err
	}
	if !page.allowsFlow(flow) {
		return View{}, apperrors.Validation("flow", "%s cannot run %q", page.Name, flow)
	}

	var epoch int64
	if _, err := c.update(ctx, who, page, func(st *State) error {
		if err := requireReady(st); err != nil {
			return err
		}
		epoch = st.Epoch
		st.Pending++
		st.Phase = PhaseGenerating
		st.Error = ""
		return nil
	}); err != nil {
		return View{}, err
	}
	metrics.PageTransitions.WithLabelValues(page.Name, string(PhaseGenerating)).Inc()

	res, genErr := c.gen.Generate(ctx, who, flow, args)

	st, err := c.update(context.WithoutCancel(ctx), who, page, func(st *State) error {
		if st.Epoch != epoch {
			return errStale
		}
		if st.Pending > 0 {
			st.Pending--
		}
		if st.Pending == 0 {
			st.Phase = PhaseReady
		}
		if genErr != nil {
			st.Error = c.banner(page.Name, flow, genErr, "Generation failed. Please try again.")
			return nil
		}
		apply(st, page, res)
		return nil
	})
	if err != nil {
		return View{}, err
	}
	if st.Phase == PhaseReady {
		metrics.PageTransitions.WithLabelValues(page.Name, string(PhaseReady)).Inc()
	}
	return Project(page, st), nil
}

// apply inserts a flow's records into its slot at the flow's position.
func apply(st *State, page *Page, res generation.Result) {
	if res.Data != nil {
		st.Data[res.Flow] = res.Data
	}
	if _, ok := page.slot(res.Slot); !ok || len(res.Records) == 0 {
		return
	}
	entries := toEntries(res.Records)
	current := st.Slots[res.Slot]
	switch res.Position {
	case generation.Append:
		current = append(current, entries...)
	case generation.Prepend:
		current = append(entries, current...)
	case generation.Replace:
		for _, e := range entries {
			replaced := false
			for i := range current {
				if current[i]["id"] == e["id"] {
					current[i] = e
					replaced = true
					break
				}
			}
			if !replaced {
				current = append([]Entry{e}, current...)
			}
		}
	}
	st.Slots[res.Slot] = current
}

// SetStatus applies a status transition to a loaded record, persists it and
// patches the loaded entry in place without reloading the slot.
func (c *Controller) SetStatus(ctx context.Context, who identity.Identity, name string, change StatusChange) (View, error) {
	page, err := c.begin(who, name)
	if err != nil {
		return View{}, err
	}
	st, err := c.states.Get(ctx, who.ID, page.Name)
	if err != nil {
		return View{}, apperrors.Transport("load page state", err)
	}
	if st == nil {
		return View{}, apperrors.Validation("page", "mount %s first", page.Name)
	}
	slotName, i, ok := st.find(change.ID)
	if !ok {
		return View{}, apperrors.NotFound("record", change.ID)
	}
	slot, _ := page.slot(slotName)
	entry := st.Slots[slotName][i]

	current, _ := entry[statusField(slot.Kind)].(string)
	field, next, err := career.Transition(slot.Kind, current, change.Action)
	if err != nil {
		return View{}, err
	}
	rec, err := c.store.Update(ctx, who, string(slot.Kind), change.ID, map[string]any{field: next})
	if err != nil {
		return View{}, err
	}

	st, err = c.update(ctx, who, page, func(st *State) error {
		name, i, ok := st.find(change.ID)
		if !ok {
			return nil
		}
		patched := make(Entry, len(st.Slots[name][i]))
		for k, v := range st.Slots[name][i] {
			patched[k] = v
		}
		m := rec.Map()
		patched[field] = next
		patched["updated_date"] = m["updated_date"]
		patched["version"] = m["version"]
		st.Slots[name][i] = patched
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return Project(page, st), nil
}

// DeleteOwner drops every page state of owner.
func (c *Controller) DeleteOwner(ctx context.Context, owner uuid.UUID) error {
	if err := c.states.DeleteOwner(ctx, owner, c.Names()); err != nil {
		return apperrors.Transport("delete page states", err)
	}
	return nil
}

func statusField(kind entity.Kind) string {
	if kind == entity.KindInterviewPrep {
		return "practice_status"
	}
	return "completion_status"
}

func (c *Controller) begin(who identity.Identity, name string) (*Page, error) {
	if err := who.Require(); err != nil {
		return nil, err
	}
	return c.Page(name)
}

func requireReady(st *State) error {
	if st.Epoch == 0 {
		return apperrors.Validation("page", "mount %s first", st.Page)
	}
	if st.Phase == PhaseLoading {
		return apperrors.Validation("phase", "%s is still loading", st.Page)
	}
	return nil
}

// update applies fn to the stored state under the (user, page) lock and
// persists the result. fn returning errStale leaves the state unchanged.
func (c *Controller) update(ctx context.Context, who identity.Identity, page *Page, fn func(*State) error) (*State, error) {
	unlock := c.lock(who.ID, page.Name)
	defer unlock()

	st, err := c.states.Get(ctx, who.ID, page.Name)
	if err != nil {
		return nil, apperrors.Transport("load page state", err)
	}
	if st == nil {
		st = newState(page.Name)
	}
	if err := fn(st); err != nil {
		if errors.Is(err, errStale) {
			return st, nil
		}
		return nil, err
	}
	st.UpdatedAt = c.now().UTC()
	if err := c.states.Put(ctx, who.ID, st); err != nil {
		return nil, apperrors.Transport("save page state", err)
	}
	return st, nil
}

func (c *Controller) lock(owner uuid.UUID, page string) func() {
	mu := &c.locks[stripe(stateKey(owner, page))]
	mu.Lock()
	return mu.Unlock
}

func stripe(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % lockStripes
}

// banner turns an error into the message shown on the page. Details of
// backing service failures are logged, not shown.
func (c *Controller) banner(page, action string, err error, fallback string) string {
	if err == nil {
		return ""
	}
	c.logger.Warn("page action failed",
		"action", "page."+action,
		"page", page,
		"error", err.Error(),
	)
	if errors.Is(err, apperrors.ErrTransport) || !apperrors.Classified(err) {
		return fallback
	}
	return err.Error()
}

func toEntries(recs store.Records) []Entry {
	out := make([]Entry, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Map())
	}
	return out
}
