package slot

import (
	"context"
	"sync"
)

// Sink receives applied values keyed by slot identifier.
//
// The Registry assumes every accepted write is durable and immediately
// visible to a subsequent read; there are no partial-write states. Sink
// implementations must be safe for concurrent use.
type Sink interface {
	Set(ctx context.Context, identifier string, value any) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, identifier string, value any) error

// Set calls f(ctx, identifier, value).
func (f SinkFunc) Set(ctx context.Context, identifier string, value any) error {
	return f(ctx, identifier, value)
}

// MapSink is an in-memory Sink backed by a map. It is the default sink for
// tests and for sessions that do not need persistence.
type MapSink struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewMapSink creates an empty in-memory sink.
func NewMapSink() *MapSink {
	return &MapSink{values: make(map[string]any)}
}

// Set stores the value under the identifier.
func (s *MapSink) Set(_ context.Context, identifier string, value any) error {
	s.mu.Lock()
	s.values[identifier] = value
	s.mu.Unlock()
	return nil
}

// Get returns the current value for an identifier.
func (s *MapSink) Get(identifier string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[identifier]
	return v, ok
}

// Len returns the number of stored values.
func (s *MapSink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Values returns a copy of the stored values.
func (s *MapSink) Values() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// MultiSink fans a write out to several sinks in order. The first error
// aborts the fan-out and is returned to the caller; earlier writes in the
// chain are not rolled back. Place the durable sink first so observers never
// see a value that was not persisted.
type MultiSink []Sink

// Set writes the value to each sink in order.
func (m MultiSink) Set(ctx context.Context, identifier string, value any) error {
	for _, s := range m {
		if err := s.Set(ctx, identifier, value); err != nil {
			return err
		}
	}
	return nil
}
