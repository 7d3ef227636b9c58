package preset

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dwneale/slotlogic/internal/slot"
)

// Repository defines the interface for preset persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetBySlug retrieves a preset by its slug.
	// Returns ErrPresetNotFound if the preset does not exist.
	GetBySlug(ctx context.Context, slug string) (*Preset, error)

	// List retrieves all presets ordered by name.
	List(ctx context.Context) ([]Preset, error)

	// Reconcile persists a freshly loaded preset. When a preset with the
	// same slug already exists, the stored ID and creation time are kept
	// and written back into p so identity is stable across restarts.
	Reconcile(ctx context.Context, p *Preset) error

	// Delete removes a preset and its applied values.
	// Returns ErrPresetNotFound if the preset does not exist.
	Delete(ctx context.Context, slug string) error

	// SaveValue upserts one applied slot value.
	SaveValue(ctx context.Context, presetID, identifier string, value any) error

	// GetValue retrieves one applied slot value.
	// Returns ErrValueNotFound if nothing is stored for the identifier.
	GetValue(ctx context.Context, presetID, identifier string) (*AppliedValue, error)

	// ListValues retrieves all applied values for a preset, ordered by
	// identifier.
	ListValues(ctx context.Context, presetID string) ([]AppliedValue, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetBySlug retrieves a preset by its slug.
func (r *SQLiteRepository) GetBySlug(ctx context.Context, slug string) (*Preset, error) {
	query := `
		SELECT id, name, slug, description, bindings, root, created_at, updated_at
		FROM presets
		WHERE slug = ?`

	p, err := scanPreset(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: slug %q", ErrPresetNotFound, slug)
		}
		return nil, fmt.Errorf("querying preset by slug: %w", err)
	}
	return p, nil
}

// List retrieves all presets ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Preset, error) {
	query := `
		SELECT id, name, slug, description, bindings, root, created_at, updated_at
		FROM presets
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying presets: %w", err)
	}
	defer rows.Close()

	var presets []Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning preset: %w", err)
		}
		presets = append(presets, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating presets: %w", err)
	}
	return presets, nil
}

// Reconcile persists a loaded preset, preserving stored identity on slug
// collision so applied values keep pointing at the same preset ID.
func (r *SQLiteRepository) Reconcile(ctx context.Context, p *Preset) error {
	existing, err := r.GetBySlug(ctx, p.Slug)
	if err != nil && !errors.Is(err, ErrPresetNotFound) {
		return err
	}

	bindingsJSON, err := json.Marshal(p.Bindings)
	if err != nil {
		return fmt.Errorf("marshalling bindings: %w", err)
	}
	rootJSON, err := json.Marshal(p.Root)
	if err != nil {
		return fmt.Errorf("marshalling root: %w", err)
	}

	now := time.Now().UTC()
	p.UpdatedAt = now

	if existing != nil {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt

		query := `
			UPDATE presets SET
				name = ?, description = ?, bindings = ?, root = ?, updated_at = ?
			WHERE slug = ?`

		if _, err := r.db.ExecContext(ctx, query,
			p.Name,
			nullString(p.Description),
			string(bindingsJSON),
			string(rootJSON),
			p.UpdatedAt.Format(time.RFC3339),
			p.Slug,
		); err != nil {
			return fmt.Errorf("updating preset: %w", err)
		}
		return nil
	}

	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}

	query := `
		INSERT INTO presets (id, name, slug, description, bindings, root, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	if _, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Slug,
		nullString(p.Description),
		string(bindingsJSON),
		string(rootJSON),
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	); err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: slug %q", ErrPresetExists, p.Slug)
		}
		return fmt.Errorf("inserting preset: %w", err)
	}
	return nil
}

// Delete removes a preset and, via ON DELETE CASCADE, its applied values.
func (r *SQLiteRepository) Delete(ctx context.Context, slug string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM presets WHERE slug = ?", slug)
	if err != nil {
		return fmt.Errorf("deleting preset: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: slug %q", ErrPresetNotFound, slug)
	}
	return nil
}

// SaveValue upserts one applied slot value. Values are stored as JSON so
// floats, integers and colour tuples share one column.
func (r *SQLiteRepository) SaveValue(ctx context.Context, presetID, identifier string, value any) error {
	valueJSON, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshalling value: %w", err)
	}

	query := `
		INSERT INTO slot_values (preset_id, identifier, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (preset_id, identifier)
		DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	if _, err := r.db.ExecContext(ctx, query,
		presetID,
		identifier,
		string(valueJSON),
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("saving slot value: %w", err)
	}
	return nil
}

// GetValue retrieves one applied slot value.
func (r *SQLiteRepository) GetValue(ctx context.Context, presetID, identifier string) (*AppliedValue, error) {
	query := `
		SELECT preset_id, identifier, value, updated_at
		FROM slot_values
		WHERE preset_id = ? AND identifier = ?`

	v, err := scanValue(r.db.QueryRowContext(ctx, query, presetID, identifier))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: identifier %q", ErrValueNotFound, identifier)
		}
		return nil, fmt.Errorf("querying slot value: %w", err)
	}
	return v, nil
}

// ListValues retrieves all applied values for a preset.
func (r *SQLiteRepository) ListValues(ctx context.Context, presetID string) ([]AppliedValue, error) {
	query := `
		SELECT preset_id, identifier, value, updated_at
		FROM slot_values
		WHERE preset_id = ?
		ORDER BY identifier`

	rows, err := r.db.QueryContext(ctx, query, presetID)
	if err != nil {
		return nil, fmt.Errorf("querying slot values: %w", err)
	}
	defer rows.Close()

	var values []AppliedValue
	for rows.Next() {
		v, err := scanValue(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning slot value: %w", err)
		}
		values = append(values, *v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating slot values: %w", err)
	}
	return values, nil
}

// StateSink adapts the repository into a slot.Sink for one preset, so every
// validated write lands in slot_values before observers see it.
type StateSink struct {
	repo     Repository
	presetID string
}

// NewStateSink creates a durable sink scoped to one preset.
func NewStateSink(repo Repository, presetID string) *StateSink {
	return &StateSink{repo: repo, presetID: presetID}
}

// Set persists one applied value. Color values are flattened to plain float
// slices so the stored JSON does not depend on the slot package's types.
func (s *StateSink) Set(ctx context.Context, identifier string, value any) error {
	if c, ok := value.(slot.Color); ok {
		value = c.Float64s()
	}
	return s.repo.SaveValue(ctx, s.presetID, identifier, value)
}

// rowScanner is an interface that sql.Row and sql.Rows both implement.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanPreset scans a row or rows result into a Preset.
func scanPreset(scanner rowScanner) (*Preset, error) {
	var p Preset
	var description sql.NullString
	var bindingsJSON, rootJSON string
	var createdAt, updatedAt string

	err := scanner.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&description,
		&bindingsJSON,
		&rootJSON,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		p.Description = description.String
	}

	if err := json.Unmarshal([]byte(bindingsJSON), &p.Bindings); err != nil {
		return nil, fmt.Errorf("unmarshalling bindings: %w", err)
	}
	if err := json.Unmarshal([]byte(rootJSON), &p.Root); err != nil {
		return nil, fmt.Errorf("unmarshalling root: %w", err)
	}

	if p.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &p, nil
}

// scanValue scans a row or rows result into an AppliedValue.
func scanValue(scanner rowScanner) (*AppliedValue, error) {
	var v AppliedValue
	var valueJSON, updatedAt string

	if err := scanner.Scan(&v.PresetID, &v.Identifier, &valueJSON, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(valueJSON), &v.Value); err != nil {
		return nil, fmt.Errorf("unmarshalling value: %w", err)
	}

	var err error
	if v.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &v, nil
}

// nullString returns a sql.NullString for optional strings.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// isUniqueConstraintError checks if an error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
