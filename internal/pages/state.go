package pages

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one loaded record in its flat field form.
type Entry = map[string]any

// State is the persisted view-state of one page for one user.
type State struct {
	Page      string             `json:"page"`
	Phase     Phase              `json:"phase"`
	Epoch     int64              `json:"epoch"`
	Pending   int                `json:"pending,omitempty"`
	Selection string             `json:"selection,omitempty"`
	Search    string             `json:"search,omitempty"`
	Filters   map[string]string  `json:"filters,omitempty"`
	Error     string             `json:"error,omitempty"`
	Slots     map[string][]Entry `json:"slots"`
	Data      map[string]any     `json:"data,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func newState(page string) *State {
	return &State{
		Page:    page,
		Phase:   PhaseLoading,
		Filters: map[string]string{},
		Slots:   map[string][]Entry{},
		Data:    map[string]any{},
	}
}

// find returns the slot and index holding the record id.
func (s *State) find(id string) (string, int, bool) {
	for name, entries := range s.Slots {
		for i, e := range entries {
			if e["id"] == id {
				return name, i, true
			}
		}
	}
	return "", 0, false
}

// StateStore persists page states. Get returns nil, nil when the page was
// never mounted or its state expired.
type StateStore interface {
	Get(ctx context.Context, owner uuid.UUID, page string) (*State, error)
	Put(ctx context.Context, owner uuid.UUID, st *State) error
	DeleteOwner(ctx context.Context, owner uuid.UUID, pages []string) error
}

// MemoryStates keeps states in process. States are stored serialized so
// callers never share maps with the store.
type MemoryStates struct {
	mu     sync.RWMutex
	states map[string][]byte
}

func NewMemoryStates() *MemoryStates {
	return &MemoryStates{states: make(map[string][]byte)}
}

func (m *MemoryStates) Get(_ context.Context, owner uuid.UUID, page string) (*State, error) {
	m.mu.RLock()
	b, ok := m.states[stateKey(owner, page)]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return decodeState(b)
}

func (m *MemoryStates) Put(_ context.Context, owner uuid.UUID, st *State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode page state: %w", err)
	}
	m.mu.Lock()
	m.states[stateKey(owner, st.Page)] = b
	m.mu.Unlock()
	return nil
}

func (m *MemoryStates) DeleteOwner(_ context.Context, owner uuid.UUID, pages []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range pages {
		delete(m.states, stateKey(owner, p))
	}
	return nil
}

func stateKey(owner uuid.UUID, page string) string {
	return "careerpilot:page:" + owner.String() + ":" + page
}

func decodeState(b []byte) (*State, error) {
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("decode page state: %w", err)
	}
	if st.Filters == nil {
		st.Filters = map[string]string{}
	}
	if st.Slots == nil {
		st.Slots = map[string][]Entry{}
	}
	if st.Data == nil {
		st.Data = map[string]any{}
	}
	return &st, nil
}
