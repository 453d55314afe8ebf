// Package mqtt provides the MQTT publisher used by florabridge.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Last Will and Testament (LWT) so consumers notice a dead daemon
//   - Connection health monitoring
//
// The daemon only publishes. Readings go to "<destination>/<device id>";
// the daemon's own online/offline state is retained on "<destination>/status".
//
// # Usage
//
//	topics := mqtt.NewTopics(cfg.General.Destination)
//	client, err := mqtt.Connect(cfg.MQTT, topics)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Publish(topics.Sensor("Balcony-Plant"), payload, 1, false)
package mqtt
