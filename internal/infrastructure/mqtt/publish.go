package mqtt

import "fmt"

// maxPayloadSize caps outgoing payloads at 1 MB, matching common broker
// limits. Applied values and batch results are a few hundred bytes.
const maxPayloadSize = 1 << 20

// Publish sends payload to topic and waits for the broker's acknowledgment,
// bounded by the publish timeout.
//
// QoS (0, 1 or 2) follows MQTT semantics: at most once, at least once,
// exactly once. Retained messages are stored by the broker and delivered
// immediately to new subscribers; applied-value and status topics are
// retained so observers see the current state on subscribe, while command
// and batch-result topics are not.
//
// Example:
//
//	topic := mqtt.Topics{}.Applied("interior-door", "Width")
//	err := client.Publish(topic, []byte(`{"identifier":"socket_2","value":1.2}`), 1, true)
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// PublishString publishes a string payload.
func (c *Client) PublishString(topic string, payload string, qos byte, retained bool) error {
	return c.Publish(topic, []byte(payload), qos, retained)
}

// PublishRetained publishes a retained message at the configured default
// QoS. Use for state topics where new subscribers need the current value.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, payload, byte(c.cfg.QoS), true)
}
