package preset

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dwneale/slotlogic/internal/slot"
)

// ApplyCommand executes a batch apply request delivered as a JSON payload,
// typically from an MQTT command topic. The payload is decoded into a batch
// request, applied through the preset's registry using its role bindings,
// and the applied result is returned re-encoded as JSON.
//
// Unknown slugs return ErrPresetNotFound. Malformed payloads return
// ErrInvalidCommand. Validation failures from the registry (unknown label,
// non-finite value, bad arity) pass through unwrapped so callers can map
// them with errors.Is.
func (s *Store) ApplyCommand(ctx context.Context, slug string, payload []byte) ([]byte, error) {
	session, err := s.Session(slug)
	if err != nil {
		return nil, err
	}

	var req slot.Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}

	result, err := session.Registry.Apply(ctx, session.Preset.Bindings, req)
	if err != nil {
		return nil, err
	}

	out, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode apply result: %w", err)
	}

	s.logger.Info("command apply completed", "slug", slug)
	return out, nil
}
