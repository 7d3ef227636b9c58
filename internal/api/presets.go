package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dwneale/slotlogic/internal/infrastructure/mqtt"
	"github.com/dwneale/slotlogic/internal/preset"
	"github.com/dwneale/slotlogic/internal/slot"
)

// handleListPresets returns all loaded presets in load order.
func (s *Server) handleListPresets(w http.ResponseWriter, _ *http.Request) {
	presets := s.store.List()
	writeJSON(w, http.StatusOK, map[string]any{"presets": presets, "count": len(presets)})
}

// handleGetPreset returns a single preset by slug, including its full
// interface tree and role bindings.
func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	p, err := s.store.Get(slug)
	if err != nil {
		if errors.Is(err, preset.ErrPresetNotFound) {
			writeNotFound(w, "preset not found")
			return
		}
		writeInternalError(w, "failed to get preset")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// handleResolveSlot resolves a slot label to its identifier, kind, and bounds.
func (s *Server) handleResolveSlot(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	label := chi.URLParam(r, "label")

	resolved, err := session.Registry.Resolve(label)
	if err != nil {
		if errors.Is(err, slot.ErrSlotNotFound) {
			writeNotFound(w, "slot not found")
			return
		}
		writeInternalError(w, "failed to resolve slot")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"label":      label,
		"identifier": resolved.Identifier,
		"kind":       resolved.Kind,
		"min":        resolved.Min,
		"max":        resolved.Max,
	})
}

// SetSlotRequest is the body for a typed slot write.
//
// Float and integer slots take a number; colour slots take an array of
// 3 or 4 channel values.
type SetSlotRequest struct {
	Value json.RawMessage `json:"value"`
}

// handleSetSlot applies a typed write to a slot.
//
// The slot's declared kind selects the operation: float slots clamp to
// bounds, integer slots truncate then clamp, colour slots extend 3-tuples
// with alpha 1.0. The response carries the value actually written.
func (s *Server) handleSetSlot(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	label := chi.URLParam(r, "label")

	var req SetSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if len(req.Value) == 0 {
		writeBadRequest(w, "value field is required")
		return
	}

	resolved, err := session.Registry.Resolve(label)
	if err != nil {
		if errors.Is(err, slot.ErrSlotNotFound) {
			writeNotFound(w, "slot not found")
			return
		}
		writeInternalError(w, "failed to resolve slot")
		return
	}

	slug := session.Preset.Slug
	ctx := r.Context()

	switch resolved.Kind {
	case slot.KindFloat:
		var value float64
		if err := json.Unmarshal(req.Value, &value); err != nil {
			writeBadRequest(w, "value must be a number for float slots")
			return
		}
		applied, err := session.Registry.SetNumeric(ctx, label, value)
		if err != nil {
			s.writeSlotError(w, err)
			return
		}
		s.recordClamp(slug, label, value, applied)
		writeJSON(w, http.StatusOK, map[string]any{"label": label, "applied": applied})

	case slot.KindInt:
		var value float64
		if err := json.Unmarshal(req.Value, &value); err != nil {
			writeBadRequest(w, "value must be a number for integer slots")
			return
		}
		applied, err := session.Registry.SetInteger(ctx, label, value)
		if err != nil {
			s.writeSlotError(w, err)
			return
		}
		s.recordClamp(slug, label, value, float64(applied))
		writeJSON(w, http.StatusOK, map[string]any{"label": label, "applied": applied})

	case slot.KindColor:
		var components []float64
		if err := json.Unmarshal(req.Value, &components); err != nil {
			writeBadRequest(w, "value must be an array of channel values for color slots")
			return
		}
		applied, err := session.Registry.SetColor(ctx, label, components)
		if err != nil {
			s.writeSlotError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"label": label, "applied": applied})

	default:
		writeInternalError(w, "unknown slot kind")
	}
}

// RandomizeRequest is the optional body for a randomize call.
// Alpha applies to colour slots only; nil means 1.0.
type RandomizeRequest struct {
	Alpha *float64 `json:"alpha,omitempty"`
}

// handleRandomizeSlot draws a random value for an integer or colour slot.
func (s *Server) handleRandomizeSlot(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	label := chi.URLParam(r, "label")

	// Body is optional
	var req RandomizeRequest
	if r.Body != nil {
		//nolint:errcheck // empty body is fine, alpha stays nil
		json.NewDecoder(r.Body).Decode(&req)
	}

	resolved, err := session.Registry.Resolve(label)
	if err != nil {
		if errors.Is(err, slot.ErrSlotNotFound) {
			writeNotFound(w, "slot not found")
			return
		}
		writeInternalError(w, "failed to resolve slot")
		return
	}

	ctx := r.Context()

	switch resolved.Kind {
	case slot.KindInt:
		applied, err := session.Registry.RandomizeInteger(ctx, label)
		if err != nil {
			s.writeSlotError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"label": label, "applied": applied})

	case slot.KindColor:
		alpha := 1.0
		if req.Alpha != nil {
			alpha = *req.Alpha
		}
		applied, err := session.Registry.RandomizeColor(ctx, label, alpha)
		if err != nil {
			s.writeSlotError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"label": label, "applied": applied})

	default:
		writeBadRequest(w, "slot kind does not support randomize")
	}
}

// handleApply performs a batch write across the preset's bound roles.
//
// Writes happen in a fixed order (width, height, style, colour) and the
// first failure aborts the batch; the response reflects the writes that
// completed. Explicit values take precedence over randomize flags.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	var req slot.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	result, err := session.Registry.Apply(r.Context(), session.Preset.Bindings, req)
	if err != nil {
		if errors.Is(err, slot.ErrSlotNotFound) {
			// Partial result still reported alongside the error
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error":   "slot not found",
				"applied": result,
			})
			return
		}
		if isSlotValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":   err.Error(),
				"applied": result,
			})
			return
		}
		writeInternalError(w, "failed to apply batch")
		return
	}

	s.publishBatch(session.Preset.Slug, result)

	writeJSON(w, http.StatusOK, map[string]any{"applied": result})
}

// handleListValues returns the persisted sink state for a preset.
func (s *Server) handleListValues(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	if s.repo == nil {
		writeNotFound(w, "value store not configured")
		return
	}

	values, err := s.repo.ListValues(r.Context(), session.Preset.ID)
	if err != nil {
		writeInternalError(w, "failed to list values")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"values": values, "count": len(values)})
}

// session looks up the live session for the request's slug, writing the
// error response itself when the preset is unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*preset.Session, bool) {
	slug := chi.URLParam(r, "slug")

	session, err := s.store.Session(slug)
	if err != nil {
		if errors.Is(err, preset.ErrPresetNotFound) {
			writeNotFound(w, "preset not found")
			return nil, false
		}
		writeInternalError(w, "failed to get preset")
		return nil, false
	}
	return session, true
}

// writeSlotError maps slot operation errors to HTTP responses.
func (s *Server) writeSlotError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, slot.ErrSlotNotFound):
		writeNotFound(w, "slot not found")
	case isSlotValidationError(err):
		writeBadRequest(w, err.Error())
	default:
		writeInternalError(w, "slot write failed")
	}
}

// isSlotValidationError checks whether an error is a slot validation error.
// Slot operations wrap several sentinels so we check all of them.
func isSlotValidationError(err error) bool {
	return errors.Is(err, slot.ErrNotFinite) ||
		errors.Is(err, slot.ErrInvalidArity) ||
		errors.Is(err, slot.ErrKindMismatch)
}

// recordClamp writes a clamp-delta point when the applied value differs
// from the requested one. No-op without a telemetry client.
func (s *Server) recordClamp(slug, label string, requested, applied float64) {
	if s.influx == nil || requested == applied {
		return
	}
	s.influx.WriteClampDelta(slug, label, requested, applied)
}

// publishBatch publishes a batch summary to MQTT. No-op without a client.
func (s *Server) publishBatch(slug string, result slot.Result) {
	if s.mqtt == nil {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Debug("failed to encode batch summary", "error", err)
		return
	}

	topic := mqtt.Topics{}.BatchApplied(slug)
	if err := s.mqtt.Publish(topic, payload, 1, false); err != nil {
		s.logger.Debug("MQTT publish failed", "topic", topic, "error", err)
	}
}
