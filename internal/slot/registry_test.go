package slot

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"
)

// bound is a test helper for optional bounds.
func bound(v float64) *float64 {
	return &v
}

// testTree builds the interface tree used across registry tests:
// a root panel with a nested "Dimensions" panel and top-level slots.
func testTree() Node {
	return Node{
		Label: "Door",
		Children: []Node{
			{
				Label: "Dimensions",
				Children: []Node{
					{Label: "Width", Identifier: "socket_2", Kind: KindFloat, Min: bound(0.3), Max: bound(3.0)},
					{Label: "Height", Identifier: "socket_3", Kind: KindFloat, Min: bound(0.5), Max: bound(4.0)},
				},
			},
			{Label: "Type", Identifier: "socket_4", Kind: KindInt, Min: bound(0), Max: bound(4)},
			{Label: "Paint Color", Identifier: "socket_5", Kind: KindColor},
			{Label: "Offset", Identifier: "socket_6", Kind: KindFloat}, // unbounded
		},
	}
}

func newTestRegistry(t *testing.T) (*Registry, *MapSink) {
	t.Helper()
	sink := NewMapSink()
	return NewRegistry(testTree(), sink), sink
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name           string
		label          string
		wantIdentifier string
		wantKind       Kind
		wantErr        error
	}{
		{
			name:           "top-level slot",
			label:          "Type",
			wantIdentifier: "socket_4",
			wantKind:       KindInt,
		},
		{
			name:           "nested slot inside panel",
			label:          "Width",
			wantIdentifier: "socket_2",
			wantKind:       KindFloat,
		},
		{
			name:    "missing label",
			label:   "Depth",
			wantErr: ErrSlotNotFound,
		},
		{
			name:    "panel label is never matched",
			label:   "Dimensions",
			wantErr: ErrSlotNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, _ := newTestRegistry(t)
			got, err := reg.Resolve(tt.label)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve(%q) error = %v, want %v", tt.label, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) unexpected error: %v", tt.label, err)
			}
			if got.Identifier != tt.wantIdentifier {
				t.Errorf("identifier = %q, want %q", got.Identifier, tt.wantIdentifier)
			}
			if got.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", got.Kind, tt.wantKind)
			}
		})
	}
}

func TestResolveNotFoundNamesLabel(t *testing.T) {
	reg, _ := newTestRegistry(t)
	_, err := reg.Resolve("Depth")
	if err == nil {
		t.Fatal("expected error for missing slot")
	}
	if got := err.Error(); !errors.Is(err, ErrSlotNotFound) || !strings.Contains(got, "Depth") {
		t.Errorf("error %q should wrap ErrSlotNotFound and mention the label", got)
	}
}

func TestResolveCachesTraversal(t *testing.T) {
	reg, _ := newTestRegistry(t)

	first, err := reg.Resolve("Width")
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	second, err := reg.Resolve("Width")
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}

	if first != second {
		t.Errorf("cached slot differs: %+v vs %+v", first, second)
	}
	if reg.traversals != 1 {
		t.Errorf("traversals = %d, want 1 (second lookup must hit the cache)", reg.traversals)
	}
}

func TestResolveFirstMatchWins(t *testing.T) {
	// Duplicate "Level" labels: the pre-order first match must win even when
	// the duplicate sits shallower in a later sibling.
	tree := Node{
		Label: "Root",
		Children: []Node{
			{
				Label: "Panel A",
				Children: []Node{
					{Label: "Level", Identifier: "first", Kind: KindFloat},
				},
			},
			{Label: "Level", Identifier: "second", Kind: KindFloat},
		},
	}

	reg := NewRegistry(tree, NewMapSink())
	got, err := reg.Resolve("Level")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Identifier != "first" {
		t.Errorf("identifier = %q, want %q (pre-order first match)", got.Identifier, "first")
	}
}

func TestResolveDeeplyNested(t *testing.T) {
	// A 200-level nesting chain must resolve without recursion issues.
	leaf := Node{Label: "Deep", Identifier: "deep_socket", Kind: KindFloat}
	tree := leaf
	for i := 0; i < 200; i++ {
		tree = Node{Label: "Panel", Children: []Node{tree}}
	}

	reg := NewRegistry(tree, NewMapSink())
	got, err := reg.Resolve("Deep")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Identifier != "deep_socket" {
		t.Errorf("identifier = %q, want %q", got.Identifier, "deep_socket")
	}
}

func TestSetNumeric(t *testing.T) {
	tests := []struct {
		name    string
		label   string
		value   float64
		want    float64
		wantErr error
	}{
		{name: "interior value is identity", label: "Width", value: 1.5, want: 1.5},
		{name: "clamped to max", label: "Width", value: 10.0, want: 3.0},
		{name: "clamped to min", label: "Width", value: 0.1, want: 0.3},
		{name: "exactly at bound", label: "Width", value: 3.0, want: 3.0},
		{name: "unbounded slot passes through", label: "Offset", value: -1234.5, want: -1234.5},
		{name: "missing slot", label: "Depth", value: 1.0, wantErr: ErrSlotNotFound},
		{name: "kind mismatch on int slot", label: "Type", value: 1.0, wantErr: ErrKindMismatch},
		{name: "NaN rejected", label: "Width", value: math.NaN(), wantErr: ErrNotFinite},
		{name: "positive infinity rejected", label: "Width", value: math.Inf(1), wantErr: ErrNotFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, sink := newTestRegistry(t)
			got, err := reg.SetNumeric(context.Background(), tt.label, tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SetNumeric error = %v, want %v", err, tt.wantErr)
				}
				if sink.Len() != 0 {
					t.Errorf("sink has %d writes after error, want 0", sink.Len())
				}
				return
			}
			if err != nil {
				t.Fatalf("SetNumeric: %v", err)
			}
			if got != tt.want {
				t.Errorf("applied = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetNumericWritesSink(t *testing.T) {
	reg, sink := newTestRegistry(t)

	applied, err := reg.SetNumeric(context.Background(), "Width", 10.0)
	if err != nil {
		t.Fatalf("SetNumeric: %v", err)
	}
	if applied != 3.0 {
		t.Errorf("applied = %v, want 3.0", applied)
	}

	stored, ok := sink.Get("socket_2")
	if !ok {
		t.Fatal("sink has no value under socket_2")
	}
	if stored != 3.0 {
		t.Errorf("sink value = %v, want 3.0", stored)
	}
}

func TestSetInteger(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		want    int
		wantErr error
	}{
		{name: "interior value", value: 2, want: 2},
		{name: "clamped to min", value: -2, want: 0},
		{name: "clamped to max", value: 99, want: 4},
		{name: "real input truncated before clamping", value: 2.9, want: 2},
		{name: "NaN rejected", value: math.NaN(), wantErr: ErrNotFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, _ := newTestRegistry(t)
			got, err := reg.SetInteger(context.Background(), "Type", tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SetInteger error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetInteger: %v", err)
			}
			if got != tt.want {
				t.Errorf("applied = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSetIntegerUnboundedDoesNotPin(t *testing.T) {
	// An integer slot with no declared bounds must accept any input rather
	// than collapsing the range to the input itself.
	tree := Node{
		Label: "Root",
		Children: []Node{
			{Label: "Count", Identifier: "socket_1", Kind: KindInt},
		},
	}
	reg := NewRegistry(tree, NewMapSink())

	for _, v := range []float64{-50, 0, 7, 1000} {
		got, err := reg.SetInteger(context.Background(), "Count", v)
		if err != nil {
			t.Fatalf("SetInteger(%v): %v", v, err)
		}
		if got != int(v) {
			t.Errorf("SetInteger(%v) = %d, want %d", v, got, int(v))
		}
	}
}

func TestRandomizeInteger(t *testing.T) {
	reg, _ := newTestRegistry(t)
	reg.SetRand(rand.New(rand.NewPCG(7, 11)))

	for i := 0; i < 100; i++ {
		got, err := reg.RandomizeInteger(context.Background(), "Type")
		if err != nil {
			t.Fatalf("RandomizeInteger: %v", err)
		}
		if got < 0 || got > 4 {
			t.Fatalf("draw %d outside closed interval [0, 4]", got)
		}
	}
}

func TestRandomizeIntegerUniform(t *testing.T) {
	reg, _ := newTestRegistry(t)
	reg.SetRand(rand.New(rand.NewPCG(1, 2)))

	const draws = 5000
	counts := make(map[int]int)
	for i := 0; i < draws; i++ {
		got, err := reg.RandomizeInteger(context.Background(), "Type")
		if err != nil {
			t.Fatalf("RandomizeInteger: %v", err)
		}
		counts[got]++
	}

	// Five buckets, expected 1000 each; allow 20% slack under a fixed seed.
	for v := 0; v <= 4; v++ {
		if counts[v] < 800 || counts[v] > 1200 {
			t.Errorf("value %d drawn %d times, want roughly %d", v, counts[v], draws/5)
		}
	}
}

func TestRandomizeIntegerUndeclaredBounds(t *testing.T) {
	tree := Node{
		Label: "Root",
		Children: []Node{
			{Label: "Count", Identifier: "socket_1", Kind: KindInt},
		},
	}
	reg := NewRegistry(tree, NewMapSink())

	// Wholly undeclared bounds produce the deterministic single choice 0.
	got, err := reg.RandomizeInteger(context.Background(), "Count")
	if err != nil {
		t.Fatalf("RandomizeInteger: %v", err)
	}
	if got != 0 {
		t.Errorf("draw = %d, want 0 for undeclared bounds", got)
	}
}

func TestSetColor(t *testing.T) {
	tests := []struct {
		name       string
		components []float64
		want       Color
		wantErr    error
	}{
		{
			name:       "three components gain alpha",
			components: []float64{0.2, 0.4, 0.9},
			want:       Color{0.2, 0.4, 0.9, 1.0},
		},
		{
			name:       "four components pass through",
			components: []float64{0.2, 0.4, 0.9, 0.5},
			want:       Color{0.2, 0.4, 0.9, 0.5},
		},
		{
			name:       "out-of-range channels are not clamped",
			components: []float64{1.8, -0.2, 0.5},
			want:       Color{1.8, -0.2, 0.5, 1.0},
		},
		{
			name:       "too few components",
			components: []float64{0.2, 0.4},
			wantErr:    ErrInvalidArity,
		},
		{
			name:       "too many components",
			components: []float64{0.1, 0.2, 0.3, 0.4, 0.5},
			wantErr:    ErrInvalidArity,
		},
		{
			name:       "empty input",
			components: nil,
			wantErr:    ErrInvalidArity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, sink := newTestRegistry(t)
			got, err := reg.SetColor(context.Background(), "Paint Color", tt.components)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SetColor error = %v, want %v", err, tt.wantErr)
				}
				if sink.Len() != 0 {
					t.Errorf("sink has %d writes after error, want 0", sink.Len())
				}
				return
			}
			if err != nil {
				t.Fatalf("SetColor: %v", err)
			}
			if got != tt.want {
				t.Errorf("applied = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetColorKindMismatch(t *testing.T) {
	reg, _ := newTestRegistry(t)
	_, err := reg.SetColor(context.Background(), "Width", []float64{0.1, 0.2, 0.3})
	if !errors.Is(err, ErrKindMismatch) {
		t.Errorf("SetColor on float slot = %v, want ErrKindMismatch", err)
	}
}

func TestRandomizeColor(t *testing.T) {
	reg, sink := newTestRegistry(t)
	reg.SetRand(rand.New(rand.NewPCG(3, 5)))

	got, err := reg.RandomizeColor(context.Background(), "Paint Color", 0.75)
	if err != nil {
		t.Fatalf("RandomizeColor: %v", err)
	}
	for i := 0; i < 3; i++ {
		if got[i] < 0 || got[i] >= 1 {
			t.Errorf("channel %d = %v, want in [0, 1)", i, got[i])
		}
	}
	if got[3] != 0.75 {
		t.Errorf("alpha = %v, want 0.75", got[3])
	}

	stored, ok := sink.Get("socket_5")
	if !ok {
		t.Fatal("sink has no value under socket_5")
	}
	if stored.(Color) != got {
		t.Errorf("sink value = %v, want %v", stored, got)
	}
}

func TestRandomizeColorReproducible(t *testing.T) {
	draw := func() Color {
		reg := NewRegistry(testTree(), NewMapSink())
		reg.SetRand(rand.New(rand.NewPCG(21, 42)))
		got, err := reg.RandomizeColor(context.Background(), "Paint Color", 1.0)
		if err != nil {
			t.Fatalf("RandomizeColor: %v", err)
		}
		return got
	}

	if first, second := draw(), draw(); first != second {
		t.Errorf("same seed produced %v and %v", first, second)
	}
}

func TestOperationsPropagateNotFound(t *testing.T) {
	ctx := context.Background()

	ops := []struct {
		name string
		call func(reg *Registry) error
	}{
		{"SetNumeric", func(reg *Registry) error { _, err := reg.SetNumeric(ctx, "Depth", 1.0); return err }},
		{"SetInteger", func(reg *Registry) error { _, err := reg.SetInteger(ctx, "Depth", 1); return err }},
		{"RandomizeInteger", func(reg *Registry) error { _, err := reg.RandomizeInteger(ctx, "Depth"); return err }},
		{"SetColor", func(reg *Registry) error { _, err := reg.SetColor(ctx, "Depth", []float64{0, 0, 0}); return err }},
		{"RandomizeColor", func(reg *Registry) error { _, err := reg.RandomizeColor(ctx, "Depth", 1.0); return err }},
	}

	for _, op := range ops {
		t.Run(op.name, func(t *testing.T) {
			reg, sink := newTestRegistry(t)
			if err := op.call(reg); !errors.Is(err, ErrSlotNotFound) {
				t.Fatalf("%s error = %v, want ErrSlotNotFound", op.name, err)
			}
			if sink.Len() != 0 {
				t.Errorf("sink has %d writes after not-found, want 0", sink.Len())
			}
		})
	}
}

func TestSinkErrorPropagates(t *testing.T) {
	wantErr := errors.New("disk full")
	failing := SinkFunc(func(context.Context, string, any) error { return wantErr })

	reg := NewRegistry(testTree(), failing)
	_, err := reg.SetNumeric(context.Background(), "Width", 1.0)
	if !errors.Is(err, wantErr) {
		t.Errorf("SetNumeric error = %v, want wrapped sink error", err)
	}
}

func TestMultiSinkOrderAndAbort(t *testing.T) {
	var order []string
	record := func(name string, err error) Sink {
		return SinkFunc(func(context.Context, string, any) error {
			order = append(order, name)
			return err
		})
	}

	boom := errors.New("boom")
	sink := MultiSink{record("durable", nil), record("failing", boom), record("observer", nil)}

	err := sink.Set(context.Background(), "socket", 1.0)
	if !errors.Is(err, boom) {
		t.Fatalf("Set error = %v, want boom", err)
	}
	if len(order) != 2 || order[0] != "durable" || order[1] != "failing" {
		t.Errorf("fan-out order = %v, want [durable failing]", order)
	}
}
