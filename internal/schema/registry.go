package schema

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"gopkg.in/yaml.v3"
)

//go:embed definitions/*.yaml
var definitions embed.FS

// Registry holds the schema of every entity kind, keyed by kind name.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]*Schema
}

func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]*Schema)}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// Default returns the registry built from the embedded definitions.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = Load(definitions, "definitions")
	})
	return defaultRegistry, defaultErr
}

// MustDefault is Default for callers that cannot continue without schemas.
func MustDefault() *Registry {
	r, err := Default()
	if err != nil {
		panic(err)
	}
	return r
}

// Load reads every *.yaml file in dir of fsys as one schema definition.
func Load(fsys fs.FS, dir string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema definitions: %w", err)
	}

	registry := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		var s Schema
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", e.Name(), err)
		}
		if err := registry.Register(&s); err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
	}
	return registry, nil
}

func (r *Registry) Register(s *Schema) error {
	if err := s.check(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := normalizeKind(s.Kind)
	if _, dup := r.kinds[key]; dup {
		return fmt.Errorf("kind %s registered twice", s.Kind)
	}
	r.kinds[key] = s
	return nil
}

// Get resolves a kind by name. "CareerPath", "career_path" and
// "career-path" all resolve to the same schema.
func (r *Registry) Get(kind string) (*Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.kinds[normalizeKind(kind)]
	if !ok {
		return nil, apperrors.Validation("kind", "unknown entity kind %q", kind)
	}
	return s, nil
}

func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.kinds))
	for _, s := range r.kinds {
		out = append(out, s.Kind)
	}
	sort.Strings(out)
	return out
}

func normalizeKind(kind string) string {
	k := strings.ToLower(kind)
	k = strings.ReplaceAll(k, "_", "")
	return strings.ReplaceAll(k, "-", "")
}
