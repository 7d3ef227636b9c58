package preset

import (
	"fmt"
	"sync"

	"github.com/dwneale/slotlogic/internal/slot"
)

// Logger defines the logging interface used by the Store.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Session pairs a preset with the registry that performs its slot writes.
// The registry is built once per preset at load time and shared across API
// requests; it is safe for concurrent use.
type Session struct {
	Preset   *Preset
	Registry *slot.Registry
}

// SinkFactory builds the write sink for one preset. Implementations usually
// return a MultiSink with the durable store first and observers after, so a
// persistence failure prevents observers seeing a value that was never
// stored.
type SinkFactory func(p *Preset) slot.Sink

// Store holds the loaded presets and their registries, keyed by slug.
//
// Presets are immutable after load: lookups return deep copies so callers
// cannot mutate the cached trees.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	order    []string // slugs in load order, for stable listings
	logger   Logger
}

// NewStore creates an empty preset store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// Add validates the preset, builds its registry over the sink returned by
// the factory and caches the session. Returns ErrPresetExists when the slug
// is already taken.
func (s *Store) Add(p *Preset, sinks SinkFactory) error {
	if err := ValidatePreset(p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[p.Slug]; exists {
		return fmt.Errorf("%w: slug %q", ErrPresetExists, p.Slug)
	}

	cached := p.DeepCopy()
	reg := slot.NewRegistry(cached.Root, sinks(cached))
	reg.SetLogger(s.logger)

	s.sessions[p.Slug] = &Session{Preset: cached, Registry: reg}
	s.order = append(s.order, p.Slug)

	s.logger.Info("preset loaded",
		"preset_id", cached.ID,
		"slug", cached.Slug,
		"name", cached.Name,
	)
	return nil
}

// Get retrieves a preset by slug. The returned preset is a deep copy.
func (s *Store) Get(slug string) (*Preset, error) {
	s.mu.RLock()
	session, ok := s.sessions[slug]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: slug %q", ErrPresetNotFound, slug)
	}
	return session.Preset.DeepCopy(), nil
}

// Session retrieves the live session for a slug: the cached preset plus the
// shared registry. The preset inside must be treated as read-only.
func (s *Store) Session(slug string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[slug]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: slug %q", ErrPresetNotFound, slug)
	}
	return session, nil
}

// List returns all presets in load order as deep copies.
func (s *Store) List() []Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Preset, 0, len(s.order))
	for _, slug := range s.order {
		out = append(out, *s.sessions[slug].Preset.DeepCopy())
	}
	return out
}

// Len returns the number of loaded presets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Reload replaces the entire catalogue with the given presets in one swap.
// All presets are validated and their registries built before anything is
// replaced, so a bad definition leaves the current catalogue untouched.
func (s *Store) Reload(presets []*Preset, sinks SinkFactory) error {
	sessions := make(map[string]*Session, len(presets))
	order := make([]string, 0, len(presets))

	for _, p := range presets {
		if err := ValidatePreset(p); err != nil {
			return fmt.Errorf("preset %q: %w", p.Slug, err)
		}
		if _, dup := sessions[p.Slug]; dup {
			return fmt.Errorf("%w: slug %q", ErrPresetExists, p.Slug)
		}

		cached := p.DeepCopy()
		reg := slot.NewRegistry(cached.Root, sinks(cached))
		reg.SetLogger(s.logger)

		sessions[p.Slug] = &Session{Preset: cached, Registry: reg}
		order = append(order, p.Slug)
	}

	s.mu.Lock()
	s.sessions = sessions
	s.order = order
	s.mu.Unlock()

	s.logger.Info("preset catalogue reloaded", "count", len(order))
	return nil
}
