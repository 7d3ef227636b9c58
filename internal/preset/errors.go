package preset

import (
	"errors"
	"fmt"
)

// Sentinel errors for preset operations.
// Use errors.Is() to check for these errors as they may be wrapped.
var (
	// ErrPresetNotFound is returned when a preset does not exist.
	ErrPresetNotFound = errors.New("preset not found")

	// ErrPresetExists is returned when creating a preset whose ID or slug
	// is already taken.
	ErrPresetExists = errors.New("preset already exists")

	// ErrInvalidPreset is returned when preset fields fail validation.
	ErrInvalidPreset = errors.New("invalid preset")

	// ErrInvalidSlug is returned when a slug fails format validation.
	// Matches ErrInvalidPreset under errors.Is.
	ErrInvalidSlug = fmt.Errorf("%w: invalid slug", ErrInvalidPreset)

	// ErrDuplicateIdentifier is returned when two slots in one tree share
	// an identifier. Matches ErrInvalidPreset under errors.Is.
	ErrDuplicateIdentifier = fmt.Errorf("%w: duplicate identifier", ErrInvalidPreset)

	// ErrInvalidDefinition is returned when a YAML definition file cannot
	// be converted into a valid preset.
	ErrInvalidDefinition = errors.New("invalid preset definition")

	// ErrValueNotFound is returned when no applied value is persisted for
	// the requested slot.
	ErrValueNotFound = errors.New("applied value not found")

	// ErrInvalidCommand is returned when a command payload cannot be
	// decoded into a batch apply request.
	ErrInvalidCommand = errors.New("invalid command payload")
)
