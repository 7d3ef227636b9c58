package preset

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/dwneale/slotlogic/internal/slot"
)

// Validation constants.
const (
	maxNameLength  = 100
	maxSlugLength  = 50
	maxTreeDepth   = 32
	maxTreeNodes   = 1000
	maxLabelLength = 100
	slugPattern    = `^[a-z0-9]+(?:-[a-z0-9]+)*$`
)

var slugRegex = regexp.MustCompile(slugPattern)

// validKinds is built once for O(1) kind checks during tree validation.
var validKinds map[slot.Kind]struct{}

func init() {
	validKinds = make(map[slot.Kind]struct{}, len(slot.AllKinds()))
	for _, k := range slot.AllKinds() {
		validKinds[k] = struct{}{}
	}
}

// ValidatePreset performs comprehensive validation on a preset.
// Returns an error describing the first validation failure found.
func ValidatePreset(p *Preset) error {
	if p == nil {
		return ErrInvalidPreset
	}

	if err := ValidateName(p.Name); err != nil {
		return err
	}

	// Empty slug will be generated from the name.
	if p.Slug != "" {
		if err := ValidateSlug(p.Slug); err != nil {
			return err
		}
	}

	if err := validateTree(p.Root); err != nil {
		return err
	}

	return validateBindings(p.Bindings, p.Root)
}

// ValidateName checks that a preset name is valid.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPreset)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidPreset, maxNameLength)
	}
	return nil
}

// ValidateSlug checks that a slug is URL-safe.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("%w: slug is required", ErrInvalidPreset)
	}
	if len(slug) > maxSlugLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidSlug, maxSlugLength)
	}
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("%w: must be lowercase alphanumeric with hyphens", ErrInvalidSlug)
	}
	return nil
}

// validateTree walks the interface tree checking structural invariants:
// labels present, kinds valid, bounds ordered, identifiers unique, panels
// non-empty, depth and node count within limits.
func validateTree(root slot.Node) error {
	seen := make(map[string]string) // identifier -> label
	nodes := 0

	var walk func(n slot.Node, depth int) error
	walk = func(n slot.Node, depth int) error {
		if depth > maxTreeDepth {
			return fmt.Errorf("%w: tree exceeds max depth (%d)", ErrInvalidPreset, maxTreeDepth)
		}
		nodes++
		if nodes > maxTreeNodes {
			return fmt.Errorf("%w: tree exceeds max nodes (%d)", ErrInvalidPreset, maxTreeNodes)
		}

		if strings.TrimSpace(n.Label) == "" {
			return fmt.Errorf("%w: node label is required", ErrInvalidPreset)
		}
		if len(n.Label) > maxLabelLength {
			return fmt.Errorf("%w: label %q exceeds %d characters", ErrInvalidPreset, n.Label, maxLabelLength)
		}

		if n.Identifier != "" {
			// Writable slot: kind must be declared and valid.
			if _, ok := validKinds[n.Kind]; !ok {
				return fmt.Errorf("%w: slot %q has invalid kind %q", ErrInvalidPreset, n.Label, n.Kind)
			}
			if prev, dup := seen[n.Identifier]; dup {
				return fmt.Errorf("%w: %q used by both %q and %q",
					ErrDuplicateIdentifier, n.Identifier, prev, n.Label)
			}
			seen[n.Identifier] = n.Label

			if n.Min != nil && n.Max != nil && *n.Min > *n.Max {
				return fmt.Errorf("%w: slot %q has min %v above max %v",
					ErrInvalidPreset, n.Label, *n.Min, *n.Max)
			}
			if n.Kind == slot.KindColor && (n.Min != nil || n.Max != nil) {
				return fmt.Errorf("%w: colour slot %q cannot declare bounds", ErrInvalidPreset, n.Label)
			}
		} else {
			// Panel: must group something, must not carry slot attributes.
			if len(n.Children) == 0 {
				return fmt.Errorf("%w: panel %q has no children", ErrInvalidPreset, n.Label)
			}
			if n.Kind != "" || n.Min != nil || n.Max != nil {
				return fmt.Errorf("%w: panel %q declares slot attributes", ErrInvalidPreset, n.Label)
			}
		}

		for _, child := range n.Children {
			if err := walk(child, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	return walk(root, 1)
}

// validateBindings checks that every non-empty role binding names a slot
// that actually resolves in the tree. A throwaway registry does the lookups
// so binding resolution matches runtime resolution exactly.
func validateBindings(b slot.Bindings, root slot.Node) error {
	reg := slot.NewRegistry(root, slot.NewMapSink())

	roles := []struct {
		role  string
		label string
	}{
		{"width", b.Width},
		{"height", b.Height},
		{"style", b.Style},
		{"color", b.Color},
	}

	for _, r := range roles {
		if r.label == "" {
			continue
		}
		if _, err := reg.Resolve(r.label); err != nil {
			return fmt.Errorf("%w: binding %s -> %q: %v", ErrInvalidPreset, r.role, r.label, err)
		}
	}
	return nil
}

// GenerateSlug creates a URL-safe slug from a name.
func GenerateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")

	var result strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}
	slug = result.String()

	slug = strings.Trim(slug, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}

	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
		slug = strings.TrimRight(slug, "-")
	}

	return slug
}

// GenerateID creates a new UUID for a preset.
func GenerateID() string {
	return uuid.New().String()
}
