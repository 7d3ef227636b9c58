package preset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dwneale/slotlogic/internal/slot"
)

// Definition is the YAML shape of a preset definition file.
//
// Example:
//
//	name: Interior Door
//	slug: interior-door
//	description: Parametric interior door surface
//	bindings:
//	  width: Width
//	  height: Height
//	  style: Type
//	  color: Paint Color
//	slots:
//	  label: Door
//	  children:
//	    - label: Dimensions
//	      children:
//	        - label: Width
//	          identifier: socket_2
//	          kind: float
//	          min: 0.3
//	          max: 3.0
type Definition struct {
	Name        string        `yaml:"name"`
	Slug        string        `yaml:"slug"`
	Description string        `yaml:"description"`
	Bindings    slot.Bindings `yaml:"bindings"`
	Slots       slot.Node     `yaml:"slots"`
}

// LoadDefinition reads a single preset definition from a YAML file.
//
// The returned preset carries a freshly generated ID; persistence reconciles
// it against any previously stored preset with the same slug.
func LoadDefinition(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading definition file: %w", err)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalidDefinition, filepath.Base(path), err)
	}

	p, err := def.Preset()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, filepath.Base(path), err)
	}
	return p, nil
}

// LoadDir loads every *.yaml / *.yml definition in a directory, sorted by
// filename so load order is deterministic. Duplicate slugs across files are
// an error.
func LoadDir(dir string) ([]*Preset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading definitions directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	presets := make([]*Preset, 0, len(paths))
	slugs := make(map[string]string) // slug -> filename
	for _, path := range paths {
		p, err := LoadDefinition(path)
		if err != nil {
			return nil, err
		}
		if prev, dup := slugs[p.Slug]; dup {
			return nil, fmt.Errorf("%w: slug %q defined in both %s and %s",
				ErrInvalidDefinition, p.Slug, prev, filepath.Base(path))
		}
		slugs[p.Slug] = filepath.Base(path)
		presets = append(presets, p)
	}

	return presets, nil
}

// Preset converts a parsed definition into a validated preset.
func (d Definition) Preset() (*Preset, error) {
	now := time.Now().UTC()
	p := &Preset{
		ID:          GenerateID(),
		Name:        strings.TrimSpace(d.Name),
		Slug:        strings.TrimSpace(d.Slug),
		Description: strings.TrimSpace(d.Description),
		Bindings:    d.Bindings,
		Root:        d.Slots,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if p.Slug == "" {
		p.Slug = GenerateSlug(p.Name)
	}

	if err := ValidatePreset(p); err != nil {
		return nil, err
	}
	return p, nil
}
