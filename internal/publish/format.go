package publish

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"

	"github.com/nerrad567/florabridge/internal/infrastructure/config"
	"github.com/nerrad567/florabridge/internal/miflora"
)

// TimestampFormat is the local-time layout used in payloads.
const TimestampFormat = "2006-01-02 15:04:05"

// csvColumns is the fixed column order of the CSV payload; "mac" is the address.
var csvColumns = []string{
	miflora.Light,
	miflora.Temperature,
	miflora.Moisture,
	miflora.Conductivity,
	"mac",
	miflora.Battery,
	"timestamp",
}

// Encode serializes r in the given payload format.
func Encode(format string, r *miflora.Reading) ([]byte, error) {
	switch format {
	case config.PayloadJSON, "":
		return EncodeJSON(r)
	case config.PayloadCSV:
		return EncodeCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// EncodeJSON returns the flat JSON object for r: every catalog key plus
// timestamp, name, name_pretty, location, mac, firmware and id.
// Integer-formatted parameters are encoded as whole numbers.
func EncodeJSON(r *miflora.Reading) ([]byte, error) {
	obj := make(map[string]any, len(r.Values)+7)
	for _, v := range r.Values {
		obj[v.Key] = jsonNumber(v)
	}
	obj["timestamp"] = r.Timestamp.Local().Format(TimestampFormat)
	obj["name"] = r.Device
	obj["name_pretty"] = r.Name
	obj["location"] = r.Location
	obj["mac"] = r.Address
	obj["firmware"] = r.Firmware
	obj["id"] = r.ID.String()

	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encoding reading: %w", err)
	}
	return data, nil
}

func jsonNumber(v miflora.Value) any {
	if p, ok := miflora.Lookup(v.Key); ok && p.Format == "%d" {
		return int64(math.Round(v.Value))
	}
	return v.Value
}

// EncodeCSV returns one line: light,temperature,moisture,conductivity,mac,battery,timestamp.
func EncodeCSV(r *miflora.Reading) ([]byte, error) {
	record := make([]string, len(csvColumns))
	for i, col := range csvColumns {
		switch col {
		case "mac":
			record[i] = r.Address
		case "timestamp":
			record[i] = r.Timestamp.Local().Format(TimestampFormat)
		default:
			record[i] = r.Formatted(col)
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(record); err != nil {
		return nil, fmt.Errorf("encoding reading: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encoding reading: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
