// Package mqtt provides MQTT client connectivity for slotlogic.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - The command topic subscription, restored across reconnects
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// slotlogic publishes every applied slot value to the broker as a retained
// message, so renderers and other observers can mirror the current parameter
// surface without polling the API. In the other direction it subscribes to
// the command topic hierarchy, letting external controllers drive batch
// applies over MQTT.
//
//	Controllers → slotlogic/command/{preset}/apply → slotlogic
//	slotlogic   → slotlogic/applied/{preset}/{slot} → Observers
//	slotlogic   → slotlogic/batch/{preset}          → Observers
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s with jitter
//   - Message throughput: Broker-limited (typically 10K+ msg/sec)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Publish an applied value, retained for late subscribers
//	topic := mqtt.Topics{}.Applied("interior-door", "Width")
//	client.Publish(topic, []byte(`{"identifier":"socket_2","value":1.2}`), 1, true)
//
//	// Serve batch apply commands from external controllers
//	err = client.Subscribe(mqtt.Topics{}.AllCommandApplies(), 1,
//	    func(topic string, payload []byte) error {
//	        slug, ok := mqtt.ParseCommandApply(topic)
//	        if !ok {
//	            return fmt.Errorf("unexpected topic %q", topic)
//	        }
//	        return applyBatch(slug, payload)
//	    })
package mqtt
