package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteAppliedValue records one applied slot value in the applied_values
// measurement. Every validated write or randomization produces one point;
// colour writes record the mean channel value. Points are batched and sent
// asynchronously, and silently dropped while disconnected.
func (c *Client) WriteAppliedValue(preset, slot, kind string, value float64) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(
		"applied_values",
		map[string]string{"preset": preset, "slot": slot, "kind": kind},
		map[string]interface{}{"value": value},
		time.Now(),
	))
}

// WriteClampDelta records the gap between a requested value and the value
// applied after bounds clamping, in the clamp_deltas measurement. A sustained
// non-zero delta means a caller keeps pushing out-of-range values and leaning
// on the clamp.
func (c *Client) WriteClampDelta(preset, slot string, requested, applied float64) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(
		"clamp_deltas",
		map[string]string{"preset": preset, "slot": slot},
		map[string]interface{}{
			"requested": requested,
			"applied":   applied,
			"delta":     requested - applied,
		},
		time.Now(),
	))
}
