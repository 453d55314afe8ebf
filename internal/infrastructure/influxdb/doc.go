// Package influxdb provides InfluxDB connectivity for florabridge.
//
// It wraps the official influxdb-client-go v2 library for connection
// management, point writing and health monitoring.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.WritePoint(ctx, "miflora",
//	    map[string]string{"device": "Balcony-Plant"},
//	    map[string]any{"light": 1234.0, "temperature": 21.5},
//	    reading.Timestamp)
//
// # Error Handling
//
// Writes use the blocking write API so a failed write is returned to the
// caller, which can store the reading for a later retry.
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
package influxdb
