package miflora

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestCatalog_Order(t *testing.T) {
	want := []string{Light, Temperature, Moisture, Conductivity, Battery}

	got := Catalog()
	if len(got) != len(want) {
		t.Fatalf("len(Catalog()) = %d, want %d", len(got), len(want))
	}
	for i, key := range want {
		if got[i].Key != key {
			t.Errorf("Catalog()[%d].Key = %q, want %q", i, got[i].Key, key)
		}
	}

	// mutating the copy must not leak back
	got[0].Key = "changed"
	if Catalog()[0].Key != Light {
		t.Error("Catalog() returned shared backing array")
	}
}

func TestCatalog_ConductivityHasNoClass(t *testing.T) {
	p, ok := Lookup(Conductivity)
	if !ok {
		t.Fatal("conductivity missing from catalog")
	}
	if p.DeviceClass != "" {
		t.Errorf("DeviceClass = %q, want empty", p.DeviceClass)
	}
	if _, ok := Lookup("humidity"); ok {
		t.Error("Lookup(humidity) should fail")
	}
}

func TestParameter_FormatValue(t *testing.T) {
	tests := []struct {
		key  string
		in   float64
		want string
	}{
		{Light, 1234, "1234"},
		{Light, 99.6, "100"},
		{Temperature, 21.34, "21.3"},
		{Temperature, -3.0, "-3.0"},
		{Moisture, 42, "42"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%v", tt.key, tt.in), func(t *testing.T) {
			p, _ := Lookup(tt.key)
			if got := p.FormatValue(tt.in); got != tt.want {
				t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeSensorData(t *testing.T) {
	// 21.5°C, 1000 lux, 35%, 350 µS/cm
	valid := []byte{0xD7, 0x00, 0x00, 0xE8, 0x03, 0x00, 0x00, 0x23, 0x5E, 0x01, 0x02, 0x3C, 0x00, 0xFB, 0x34, 0x9B}

	d, err := decodeSensorData(valid)
	if err != nil {
		t.Fatalf("decodeSensorData() error = %v", err)
	}
	if d.temperature != 21.5 {
		t.Errorf("temperature = %v, want 21.5", d.temperature)
	}
	if d.light != 1000 {
		t.Errorf("light = %v, want 1000", d.light)
	}
	if d.moisture != 35 {
		t.Errorf("moisture = %v, want 35", d.moisture)
	}
	if d.conductivity != 350 {
		t.Errorf("conductivity = %v, want 350", d.conductivity)
	}

	negative := append([]byte(nil), valid...)
	negative[0], negative[1] = 0xE2, 0xFF // -3.0°C
	if d, err := decodeSensorData(negative); err != nil || d.temperature != -3.0 {
		t.Errorf("negative temperature = %v, %v; want -3.0", d.temperature, err)
	}
}

func TestDecodeSensorData_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"too short", []byte{0x01, 0x02}},
		{"placeholder", []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x99, 0x88, 0x77, 0x66, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
		{"moisture over 100", []byte{0xD7, 0x00, 0x00, 0xE8, 0x03, 0x00, 0x00, 0xC8, 0x5E, 0x01, 0x02, 0x3C, 0x00, 0xFB, 0x34, 0x9B}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeSensorData(tt.in)
			if !errors.Is(err, ErrInvalidData) {
				t.Errorf("error = %v, want ErrInvalidData", err)
			}
		})
	}
}

func TestParseCharValue(t *testing.T) {
	got, err := parseCharValue([]byte("Characteristic value/descriptor: 64 10 33 2e 32 2e 31 \n"))
	if err != nil {
		t.Fatalf("parseCharValue() error = %v", err)
	}
	battery, firmware, err := decodeFirmwareBattery(got)
	if err != nil {
		t.Fatalf("decodeFirmwareBattery() error = %v", err)
	}
	if battery != 100 || firmware != "3.2.1" {
		t.Errorf("battery, firmware = %d, %q; want 100, 3.2.1", battery, firmware)
	}

	_, err = parseCharValue([]byte("connect error: Connection refused (111)\n"))
	if !errors.Is(err, ErrTransport) || !strings.Contains(err.Error(), "Connection refused") {
		t.Errorf("error = %v, want ErrTransport with gatttool message", err)
	}
}

func TestVersionAtLeast(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"2.6.6", true},
		{"3.2.1", true},
		{"2.6.10", true},
		{"2.6.2", false},
		{"2.5.9", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := versionAtLeast(tt.version, "2.6.6"); got != tt.want {
			t.Errorf("versionAtLeast(%q) = %v, want %v", tt.version, got, tt.want)
		}
	}
}

// fakeGatttool answers gatttool invocations from a handle table.
type fakeGatttool struct {
	reads  map[string]string
	writes []string
	err    error
	args   [][]string
}

func (f *fakeGatttool) run(_ context.Context, _ string, args ...string) ([]byte, error) {
	f.args = append(f.args, args)
	if f.err != nil {
		return []byte("connect error: Device or resource busy (16)\n"), f.err
	}
	if args[3] == "--char-write-req" {
		f.writes = append(f.writes, args[len(args)-1])
		return []byte("Characteristic value was written successfully\n"), nil
	}
	handle := args[len(args)-1]
	return []byte("Characteristic value/descriptor: " + f.reads[handle] + "\n"), nil
}

func newFakeSensor(firmware string) *fakeGatttool {
	fw := ""
	for _, c := range []byte(firmware) {
		fw += fmt.Sprintf(" %02x", c)
	}
	return &fakeGatttool{reads: map[string]string{
		handleFirmware:   "5a 10" + fw,
		handleData:       "d7 00 00 e8 03 00 00 23 5e 01 02 3c 00 fb 34 9b",
		handleDeviceName: "46 6c 6f 77 65 72 20 63 61 72 65",
	}}
}

func TestGatttoolPoller_FillCache(t *testing.T) {
	fake := newFakeSensor("3.2.1")
	p := NewGatttoolPoller("C4:7C:8D:11:22:33", GatttoolOptions{Adapter: "hci1", Runner: fake.run, Timeout: time.Second})

	if _, err := p.ParameterValue(Light); !errors.Is(err, ErrNoData) {
		t.Fatalf("ParameterValue() before fill error = %v, want ErrNoData", err)
	}

	if err := p.FillCache(t.Context()); err != nil {
		t.Fatalf("FillCache() error = %v", err)
	}

	want := map[string]float64{Light: 1000, Temperature: 21.5, Moisture: 35, Conductivity: 350, Battery: 90}
	for key, w := range want {
		got, err := p.ParameterValue(key)
		if err != nil || got != w {
			t.Errorf("ParameterValue(%s) = %v, %v; want %v", key, got, err, w)
		}
	}
	if p.FirmwareVersion() != "3.2.1" {
		t.Errorf("FirmwareVersion() = %q", p.FirmwareVersion())
	}
	if len(fake.writes) != 1 || fake.writes[0] != modeChangeValue {
		t.Errorf("mode writes = %q, want [%s]", fake.writes, modeChangeValue)
	}
	if got := strings.Join(fake.args[0][:3], " "); got != "--device=C4:7C:8D:11:22:33 -i hci1" {
		t.Errorf("gatttool args = %q", got)
	}

	name, err := p.Name(t.Context())
	if err != nil || name != "Flower care" {
		t.Errorf("Name() = %q, %v", name, err)
	}

	p.ClearCache()
	if _, err := p.ParameterValue(Light); !errors.Is(err, ErrNoData) {
		t.Errorf("ParameterValue() after clear error = %v, want ErrNoData", err)
	}
}

func TestGatttoolPoller_OldFirmwareSkipsModeChange(t *testing.T) {
	fake := newFakeSensor("2.6.2")
	p := NewGatttoolPoller("C4:7C:8D:11:22:33", GatttoolOptions{Runner: fake.run})

	if err := p.FillCache(t.Context()); err != nil {
		t.Fatalf("FillCache() error = %v", err)
	}
	if len(fake.writes) != 0 {
		t.Errorf("unexpected mode writes %q", fake.writes)
	}
}

func TestGatttoolPoller_TransportError(t *testing.T) {
	fake := newFakeSensor("3.2.1")
	fake.err = errors.New("exit status 1")
	p := NewGatttoolPoller("C4:7C:8D:11:22:33", GatttoolOptions{Runner: fake.run})

	err := p.FillCache(t.Context())
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("FillCache() error = %v, want ErrTransport", err)
	}
	if _, err := p.ParameterValue(Light); !errors.Is(err, ErrNoData) {
		t.Errorf("cache populated after failed fill: %v", err)
	}
}

func TestReading_Formatted(t *testing.T) {
	r := NewReading("Fern", "Fern", "", "C4:7C:8D:11:22:33", "3.2.1", time.Now(),
		[]Value{{Key: Light, Value: 12.4}, {Key: Temperature, Value: 19.25}})

	if r.ID.String() == "" {
		t.Error("reading has no ID")
	}
	if got := r.Formatted(Light); got != "12" {
		t.Errorf("Formatted(light) = %q", got)
	}
	if got := r.Formatted(Temperature); got != "19.2" && got != "19.3" {
		t.Errorf("Formatted(temperature) = %q", got)
	}
	if got := r.Formatted(Battery); got != "" {
		t.Errorf("Formatted(battery) = %q, want empty", got)
	}
}
