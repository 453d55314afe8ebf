package publish

import (
	"context"
	"fmt"

	"github.com/nerrad567/florabridge/internal/infrastructure/config"
	"github.com/nerrad567/florabridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/florabridge/internal/miflora"
)

// Publisher is the subset of *mqtt.Client used by the MQTT sink.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// MQTT publishes readings to an MQTT broker.
type MQTT struct {
	client Publisher
	qos    byte
	retain bool
	format string
}

// NewMQTT creates an MQTT sink using the QoS, retain flag and payload format from cfg.
func NewMQTT(client Publisher, cfg config.MQTTConfig) *MQTT {
	return &MQTT{
		client: client,
		qos:    byte(cfg.QoS), // #nosec G115 -- validated to 0..2
		retain: cfg.Retain,
		format: cfg.Payload,
	}
}

// Publish implements polling.Sink.
func (s *MQTT) Publish(ctx context.Context, destination string, r *miflora.Reading) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := Encode(s.format, r)
	if err != nil {
		return err
	}

	topic := mqtt.NewTopics(destination).Sensor(r.Device)
	if err := s.client.Publish(topic, payload, s.qos, s.retain); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}
