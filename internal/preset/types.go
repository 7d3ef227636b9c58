package preset

import (
	"time"

	"github.com/dwneale/slotlogic/internal/slot"
)

// Preset is a named, addressable parameter surface: an interface tree of
// typed slots plus the role bindings used by batch applies.
//
// Presets are loaded from YAML definition files at startup and persisted to
// SQLite so applied values survive restarts.
type Preset struct {
	// ID is the unique identifier (UUID).
	ID string `json:"id"`

	// Name is the human-readable display name.
	Name string `json:"name"`

	// Slug is the URL-safe identifier used in API paths and MQTT topics.
	Slug string `json:"slug"`

	// Description is optional free text.
	Description string `json:"description,omitempty"`

	// Bindings maps batch roles (width, height, style, color) to slot
	// labels inside Root. Unbound roles are left empty.
	Bindings slot.Bindings `json:"bindings"`

	// Root is the interface tree this preset exposes.
	Root slot.Node `json:"root"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeepCopy returns a completely independent copy of the preset.
// Used by the store to prevent callers mutating cached presets.
func (p *Preset) DeepCopy() *Preset {
	if p == nil {
		return nil
	}
	copied := *p
	copied.Root = p.Root.DeepCopy()
	return &copied
}

// AppliedValue is one persisted slot write: the label and identifier it
// targeted and the post-validation value, as stored in SQLite.
type AppliedValue struct {
	PresetID   string    `json:"preset_id"`
	Identifier string    `json:"identifier"`
	Value      any       `json:"value"`
	UpdatedAt  time.Time `json:"updated_at"`
}
