package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/florabridge/internal/miflora"
)

// PointWriter is the subset of *influxdb.Client used by the Influx sink.
type PointWriter interface {
	WritePoint(ctx context.Context, measurement string, tags map[string]string, fields map[string]any, timestamp time.Time) error
}

// Influx writes readings as InfluxDB points.
type Influx struct {
	writer PointWriter
}

// NewInflux creates an Influx sink.
func NewInflux(writer PointWriter) *Influx {
	return &Influx{writer: writer}
}

// Publish implements polling.Sink.
// The measurement is the destination; empty tag values are left out.
func (s *Influx) Publish(ctx context.Context, destination string, r *miflora.Reading) error {
	tags := make(map[string]string, 4)
	for k, v := range map[string]string{
		"device":   r.Device,
		"location": r.Location,
		"mac":      r.Address,
		"firmware": r.Firmware,
	} {
		if v != "" {
			tags[k] = v
		}
	}

	fields := make(map[string]any, len(r.Values))
	for _, v := range r.Values {
		fields[v.Key] = v.Value
	}

	if err := s.writer.WritePoint(ctx, destination, tags, fields, r.Timestamp); err != nil {
		return fmt.Errorf("writing point for %s: %w", r.Device, err)
	}
	return nil
}
