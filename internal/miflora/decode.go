package miflora

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

const dataLength = 16

// invalidPrefix is what some sensors return when the data handle is read
// without the mode change.
var invalidPrefix = []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}

// sensorData is the decoded content of handle 0x35.
type sensorData struct {
	temperature  float64
	light        uint32
	moisture     uint8
	conductivity uint16
}

func decodeSensorData(b []byte) (sensorData, error) {
	if len(b) < dataLength {
		return sensorData{}, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidData, len(b), dataLength)
	}
	if bytes.HasPrefix(b, invalidPrefix) {
		return sensorData{}, fmt.Errorf("%w: sensor returned placeholder block", ErrInvalidData)
	}

	d := sensorData{
		temperature:  float64(int16(binary.LittleEndian.Uint16(b[0:2]))) / 10,
		light:        binary.LittleEndian.Uint32(b[3:7]),
		moisture:     b[7],
		conductivity: binary.LittleEndian.Uint16(b[8:10]),
	}
	if d.moisture > 100 {
		return sensorData{}, fmt.Errorf("%w: moisture %d%% out of range", ErrInvalidData, d.moisture)
	}
	return d, nil
}

// decodeFirmwareBattery splits the content of handle 0x38.
func decodeFirmwareBattery(b []byte) (battery int, firmware string, err error) {
	if len(b) < 7 {
		return 0, "", fmt.Errorf("%w: firmware block has %d bytes", ErrInvalidData, len(b))
	}
	return int(b[0]), strings.TrimRight(string(b[2:7]), "\x00"), nil
}

// parseCharValue extracts the bytes from a gatttool --char-read answer:
//
//	Characteristic value/descriptor: 64 10 33 2e 32 2e 31
func parseCharValue(out []byte) ([]byte, error) {
	for _, line := range strings.Split(string(out), "\n") {
		_, value, found := strings.Cut(line, "Characteristic value/descriptor:")
		if !found {
			continue
		}
		raw, err := hex.DecodeString(strings.ReplaceAll(strings.TrimSpace(value), " ", ""))
		if err != nil {
			return nil, fmt.Errorf("%w: malformed characteristic value %q", ErrTransport, strings.TrimSpace(value))
		}
		return raw, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrTransport, firstLine(out))
}

func firstLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if s == "" {
		return "empty gatttool output"
	}
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// versionAtLeast compares dotted numeric versions ("3.2.1" >= "2.6.6").
// Non-numeric parts compare as zero.
func versionAtLeast(version, minimum string) bool {
	a := strings.Split(version, ".")
	b := strings.Split(minimum, ".")
	for i := 0; i < len(a) || i < len(b); i++ {
		x, y := versionPart(a, i), versionPart(b, i)
		if x != y {
			return x > y
		}
	}
	return true
}

func versionPart(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
	if err != nil {
		return 0
	}
	return n
}
