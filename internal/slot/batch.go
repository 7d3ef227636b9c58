package slot

import "context"

// Bindings maps batch roles to slot labels in the interface tree.
// A preset definition typically supplies these; DefaultBindings covers trees
// that label their slots after the roles directly.
type Bindings struct {
	Width  string `json:"width"  yaml:"width"`
	Height string `json:"height" yaml:"height"`
	Style  string `json:"style"  yaml:"style"`
	Color  string `json:"color"  yaml:"color"`
}

// DefaultBindings returns role-named bindings.
func DefaultBindings() Bindings {
	return Bindings{
		Width:  "Width",
		Height: "Height",
		Style:  "Style",
		Color:  "Color",
	}
}

// Request is a batch of optional slot writes. Nil fields are skipped.
//
// For the style and colour roles, an explicit value always takes precedence
// over the corresponding randomise flag.
type Request struct {
	Width          *float64  `json:"width,omitempty"`
	Height         *float64  `json:"height,omitempty"`
	Style          *float64  `json:"style,omitempty"`
	RandomizeStyle bool      `json:"randomize_style,omitempty"`
	Color          []float64 `json:"color,omitempty"`
	RandomizeColor bool      `json:"randomize_color,omitempty"`

	// Alpha is the alpha channel for randomised colours. Nil means 1.0.
	Alpha *float64 `json:"alpha,omitempty"`
}

// Result records the values actually applied, post-clamp, keyed by role.
// Roles not present in the request are nil and omitted from JSON. Field
// order matches the apply order: width, height, style, colour.
type Result struct {
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
	Style  *int     `json:"style,omitempty"`
	Color  *Color   `json:"color,omitempty"`
}

// Apply performs a batch of writes in a fixed order: width, height, style,
// colour. The ordering matters only for observability — slots are
// independent — but it is part of the contract so result records and
// downstream observers always see the same sequence.
//
// The first error aborts the batch; the returned Result reflects the writes
// that completed before the failure.
func (r *Registry) Apply(ctx context.Context, b Bindings, req Request) (Result, error) {
	var res Result

	if req.Width != nil {
		applied, err := r.SetNumeric(ctx, b.Width, *req.Width)
		if err != nil {
			return res, err
		}
		res.Width = &applied
	}

	if req.Height != nil {
		applied, err := r.SetNumeric(ctx, b.Height, *req.Height)
		if err != nil {
			return res, err
		}
		res.Height = &applied
	}

	switch {
	case req.Style != nil:
		applied, err := r.SetInteger(ctx, b.Style, *req.Style)
		if err != nil {
			return res, err
		}
		res.Style = &applied
	case req.RandomizeStyle:
		applied, err := r.RandomizeInteger(ctx, b.Style)
		if err != nil {
			return res, err
		}
		res.Style = &applied
	}

	switch {
	case req.Color != nil:
		applied, err := r.SetColor(ctx, b.Color, req.Color)
		if err != nil {
			return res, err
		}
		res.Color = &applied
	case req.RandomizeColor:
		alpha := 1.0
		if req.Alpha != nil {
			alpha = *req.Alpha
		}
		applied, err := r.RandomizeColor(ctx, b.Color, alpha)
		if err != nil {
			return res, err
		}
		res.Color = &applied
	}

	return res, nil
}
