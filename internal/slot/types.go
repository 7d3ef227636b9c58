package slot

// Kind classifies the value a slot accepts.
type Kind string

// Kind constants.
const (
	// KindFloat is a real-valued slot, optionally bounded.
	KindFloat Kind = "float"

	// KindInt is an integer slot, optionally bounded. Incoming real values
	// are truncated toward zero before clamping.
	KindInt Kind = "int"

	// KindColor is an RGBA colour slot. Colour channels are never clamped.
	KindColor Kind = "color"
)

// AllKinds returns all valid slot kinds.
func AllKinds() []Kind {
	return []Kind{KindFloat, KindInt, KindColor}
}

// Node is a single entry in an interface tree.
//
// A node with a non-empty Identifier is a writable slot; a node with an empty
// Identifier is a panel that only groups its children. Panels are traversed
// during resolution but never matched, even when their label equals the
// lookup argument.
//
// Min and Max are declared bounds for numeric kinds. A nil bound means the
// slot is unconstrained on that side. The tree is read-only once handed to a
// Registry; if it changes, construct a new Registry.
type Node struct {
	Label      string   `json:"label"                yaml:"label"`
	Identifier string   `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	Kind       Kind     `json:"kind,omitempty"       yaml:"kind,omitempty"`
	Min        *float64 `json:"min,omitempty"        yaml:"min,omitempty"`
	Max        *float64 `json:"max,omitempty"        yaml:"max,omitempty"`
	Children   []Node   `json:"children,omitempty"   yaml:"children,omitempty"`
}

// DeepCopy returns an independent copy of the node and its subtree.
// Bounds pointers are cloned so modifications to the copy do not leak
// into cached trees.
func (n Node) DeepCopy() Node {
	cpy := n
	cpy.Min = copyBound(n.Min)
	cpy.Max = copyBound(n.Max)
	if n.Children != nil {
		cpy.Children = make([]Node, len(n.Children))
		for i := range n.Children {
			cpy.Children[i] = n.Children[i].DeepCopy()
		}
	}
	return cpy
}

func copyBound(b *float64) *float64 {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// ResolvedSlot is the result of a label lookup: the write key plus the
// declared kind and bounds. Resolved slots are cached by the Registry and
// never mutated after first resolution.
type ResolvedSlot struct {
	Identifier string   `json:"identifier"`
	Kind       Kind     `json:"kind"`
	Min        *float64 `json:"min,omitempty"`
	Max        *float64 `json:"max,omitempty"`
}

// Color is an RGBA colour as written to the sink. Components are not
// constrained to [0,1]; out-of-range values pass through unchanged.
type Color [4]float64

// Float64s returns the colour as a plain slice, useful for JSON payloads
// and sink values that should not depend on the Color type.
func (c Color) Float64s() []float64 {
	return []float64{c[0], c[1], c[2], c[3]}
}
