package slot

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
)

// Logger defines the logging interface used by the Registry.
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

// Registry resolves labelled slots inside an interface tree and applies
// validated values to a sink.
//
// Resolutions are cached by label for the lifetime of the registry; the tree
// is treated as immutable, so there is no invalidation path. If the
// underlying tree changes, construct a new Registry.
//
// All public methods are safe for concurrent use. Resolution is a pure
// function of the tree, so racing cache population would be harmless, but
// the mutex also serialises the random source.
type Registry struct {
	root   Node
	sink   Sink
	logger Logger

	mu    sync.RWMutex
	cache map[string]ResolvedSlot
	rng   *rand.Rand

	// traversals counts full-tree walks, exercised by cache tests.
	traversals int
}

// NewRegistry creates a registry over an interface tree and a write sink
// with an empty resolution cache.
func NewRegistry(root Node, sink Sink) *Registry {
	return &Registry{
		root:   root,
		sink:   sink,
		logger: noopLogger{},
		cache:  make(map[string]ResolvedSlot),
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// SetRand replaces the random source used by the randomise operations.
// Pass a seeded source for reproducible draws in tests.
func (r *Registry) SetRand(rng *rand.Rand) {
	r.mu.Lock()
	r.rng = rng
	r.mu.Unlock()
}

// Resolve locates the slot with the given label.
//
// The first matching writable node in pre-order (parent before children,
// siblings in declaration order) wins; panel nodes without an identifier are
// descended into but never matched. The resolution is cached, so repeat
// lookups for the same label do not traverse the tree again.
//
// Returns ErrSlotNotFound naming the label when no node matches.
func (r *Registry) Resolve(label string) (ResolvedSlot, error) {
	r.mu.RLock()
	cached, ok := r.cache[label]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another caller may have populated the entry while we waited.
	if cached, ok := r.cache[label]; ok {
		return cached, nil
	}

	resolved, ok := r.find(label)
	if !ok {
		return ResolvedSlot{}, fmt.Errorf("%w: no slot labelled %q in tree %q", ErrSlotNotFound, label, r.root.Label)
	}

	r.cache[label] = resolved
	r.logger.Debug("slot resolved", "label", label, "identifier", resolved.Identifier, "kind", resolved.Kind)
	return resolved, nil
}

// find walks the tree in pre-order using an explicit stack, so deeply
// nested panels cannot exhaust the call stack. Callers must hold the lock.
func (r *Registry) find(label string) (ResolvedSlot, bool) {
	r.traversals++

	stack := []Node{r.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.Label == label && n.Identifier != "" {
			return ResolvedSlot{
				Identifier: n.Identifier,
				Kind:       n.Kind,
				Min:        copyBound(n.Min),
				Max:        copyBound(n.Max),
			}, true
		}

		// Push children in reverse so the first child is visited next.
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return ResolvedSlot{}, false
}

// SetNumeric applies a real value to a float slot.
//
// The value is clamped into [min, max]; an undeclared bound leaves that side
// unconstrained. The return value is the value actually written, so callers
// observe real effect rather than requested intent.
//
// NaN and infinite inputs are rejected with ErrNotFinite before any write.
func (r *Registry) SetNumeric(ctx context.Context, label string, value float64) (float64, error) {
	s, err := r.Resolve(label)
	if err != nil {
		return 0, err
	}
	if s.Kind != KindFloat {
		return 0, fmt.Errorf("%w: slot %q is %s, not %s", ErrKindMismatch, label, s.Kind, KindFloat)
	}
	if err := checkFinite(label, value); err != nil {
		return 0, err
	}

	applied := clamp(value, s.Min, s.Max)
	if err := r.sink.Set(ctx, s.Identifier, applied); err != nil {
		return 0, fmt.Errorf("writing slot %q: %w", label, err)
	}

	if applied != value {
		r.logger.Debug("numeric value clamped", "label", label, "requested", value, "applied", applied)
	}
	return applied, nil
}

// SetInteger applies a value to an integer slot.
//
// The input is truncated toward zero, then clamped into [min, max]. As with
// SetNumeric, an undeclared bound is unconstrained on that side — it never
// collapses the range to the input itself.
func (r *Registry) SetInteger(ctx context.Context, label string, value float64) (int, error) {
	s, err := r.Resolve(label)
	if err != nil {
		return 0, err
	}
	if s.Kind != KindInt {
		return 0, fmt.Errorf("%w: slot %q is %s, not %s", ErrKindMismatch, label, s.Kind, KindInt)
	}
	if err := checkFinite(label, value); err != nil {
		return 0, err
	}

	applied := int(value)
	if s.Min != nil && applied < int(*s.Min) {
		applied = int(*s.Min)
	}
	if s.Max != nil && applied > int(*s.Max) {
		applied = int(*s.Max)
	}

	if err := r.sink.Set(ctx, s.Identifier, applied); err != nil {
		return 0, fmt.Errorf("writing slot %q: %w", label, err)
	}
	return applied, nil
}

// RandomizeInteger draws a value uniformly from the closed interval
// [min, max] and writes it to an integer slot.
//
// An undeclared minimum defaults to 0 and an undeclared maximum defaults to
// the minimum, so a slot with no bounds at all yields the single choice 0.
func (r *Registry) RandomizeInteger(ctx context.Context, label string) (int, error) {
	s, err := r.Resolve(label)
	if err != nil {
		return 0, err
	}
	if s.Kind != KindInt {
		return 0, fmt.Errorf("%w: slot %q is %s, not %s", ErrKindMismatch, label, s.Kind, KindInt)
	}

	lo := 0
	if s.Min != nil {
		lo = int(*s.Min)
	}
	hi := lo
	if s.Max != nil {
		hi = int(*s.Max)
	}
	if hi < lo {
		return 0, fmt.Errorf("%w: slot %q declares [%d, %d]", ErrInvalidBounds, label, lo, hi)
	}

	r.mu.Lock()
	choice := lo + r.rng.IntN(hi-lo+1)
	r.mu.Unlock()

	if err := r.sink.Set(ctx, s.Identifier, choice); err != nil {
		return 0, fmt.Errorf("writing slot %q: %w", label, err)
	}
	return choice, nil
}

// SetColor applies an RGB or RGBA value to a colour slot.
//
// Exactly 3 or 4 components are accepted; anything else fails with
// ErrInvalidArity before any write. A 3-component input gains alpha = 1.0.
// Colour channels are written through unclamped — range enforcement is a
// numeric-slot concern, not a colour one.
func (r *Registry) SetColor(ctx context.Context, label string, components []float64) (Color, error) {
	s, err := r.Resolve(label)
	if err != nil {
		return Color{}, err
	}
	if s.Kind != KindColor {
		return Color{}, fmt.Errorf("%w: slot %q is %s, not %s", ErrKindMismatch, label, s.Kind, KindColor)
	}
	if len(components) != 3 && len(components) != 4 {
		return Color{}, fmt.Errorf("%w: got %d components, want 3 or 4", ErrInvalidArity, len(components))
	}

	var rgba Color
	rgba[3] = 1.0
	for i, c := range components {
		if err := checkFinite(label, c); err != nil {
			return Color{}, err
		}
		rgba[i] = c
	}

	if err := r.sink.Set(ctx, s.Identifier, rgba); err != nil {
		return Color{}, fmt.Errorf("writing slot %q: %w", label, err)
	}
	return rgba, nil
}

// RandomizeColor writes a random RGB colour with the given alpha to a colour
// slot. Each channel is drawn uniformly from [0, 1).
func (r *Registry) RandomizeColor(ctx context.Context, label string, alpha float64) (Color, error) {
	if err := checkFinite(label, alpha); err != nil {
		return Color{}, err
	}

	r.mu.Lock()
	red, green, blue := r.rng.Float64(), r.rng.Float64(), r.rng.Float64()
	r.mu.Unlock()

	return r.SetColor(ctx, label, []float64{red, green, blue, alpha})
}

// clamp constrains value to [min, max], applying each bound only if declared.
func clamp(value float64, min, max *float64) float64 {
	if min != nil && value < *min {
		value = *min
	}
	if max != nil && value > *max {
		value = *max
	}
	return value
}

// checkFinite rejects NaN and infinite inputs. NaN poisons clamp
// comparisons, so it would otherwise be written through silently.
func checkFinite(label string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %v for slot %q", ErrNotFinite, value, label)
	}
	return nil
}
