// Package slot provides the parametric slot registry for slotlogic.
//
// A slot is a single named, typed, independently-writable configuration
// value inside an interface tree — the hierarchical description of a
// parametric asset's adjustable surface, possibly grouped into nested
// panels. The registry flattens that tree into a lookup by human-readable
// label, caches resolutions, and applies incoming values to a write sink
// under per-kind validation rules.
//
// # Architecture
//
//	┌───────────────────────────────────────────────────────────────────┐
//	│                          Slot Registry                            │
//	│                                                                   │
//	│  ┌────────────────┐   ┌──────────────────┐   ┌────────────────┐  │
//	│  │    Registry    │   │    Validation    │   │     Batch      │  │
//	│  │ (registry.go)  │──▶│  (registry.go)   │   │  (batch.go)    │  │
//	│  │                │   │                  │   │                │  │
//	│  │ • Resolve      │   │ • clamp to range │   │ • role order   │  │
//	│  │ • label cache  │   │ • int coercion   │   │ • explicit     │  │
//	│  │ • randomise    │   │ • colour arity   │   │   beats random │  │
//	│  └────────┬───────┘   └──────────────────┘   └────────────────┘  │
//	└───────────│───────────────────────────────────────────────────────┘
//	            ▼
//	┌──────────────────────┐
//	│     Sink (sink.go)   │  MapSink / MultiSink / SinkFunc adapters
//	└──────────────────────┘
//
// # Validation rules
//
//   - Float slots: clamped into [min, max]; an undeclared bound leaves that
//     side unconstrained. NaN and ±Inf are rejected with ErrNotFinite.
//   - Integer slots: truncated toward zero, then clamped as above.
//   - Colour slots: exactly 3 or 4 components; 3-component inputs gain
//     alpha = 1.0. Channels are never clamped.
//
// Every operation returns the value actually written, so callers observe
// real effect rather than requested intent. On any error nothing is written.
//
// # Usage
//
//	reg := slot.NewRegistry(tree, slot.NewMapSink())
//	reg.SetLogger(log)
//
//	applied, err := reg.SetNumeric(ctx, "Width", 10.0) // clamped to the max
//	rgba, err := reg.SetColor(ctx, "Paint Color", []float64{0.2, 0.4, 0.9})
//
// # Thread Safety
//
// The Registry is safe for concurrent use; the cache and the random source
// are guarded by a read-write mutex. The tree itself is never mutated.
package slot
