package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
general:
  adapter: "hci1"
  destination: "plants"
polling:
  period: 120
  max_attempts: 3
sensors:
  "Balcony Plant@Living Room": "C4:7C:8D:11:22:33"
mqtt:
  broker:
    host: "broker.local"
    port: 1883
  qos: 0
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.General.Adapter != "hci1" {
		t.Errorf("General.Adapter = %q, want %q", cfg.General.Adapter, "hci1")
	}
	if cfg.General.Destination != "plants" {
		t.Errorf("General.Destination = %q, want %q", cfg.General.Destination, "plants")
	}
	if cfg.PollPeriod() != 2*time.Minute {
		t.Errorf("PollPeriod() = %v, want %v", cfg.PollPeriod(), 2*time.Minute)
	}
	if cfg.Polling.MaxAttempts != 3 {
		t.Errorf("Polling.MaxAttempts = %d, want 3", cfg.Polling.MaxAttempts)
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.local")
	}
	if len(cfg.Sensors) != 1 || cfg.Sensors[0].Address != "C4:7C:8D:11:22:33" {
		t.Errorf("Sensors = %+v, want one entry for C4:7C:8D:11:22:33", cfg.Sensors)
	}
}

func TestLoad_Defaults(t *testing.T) {
	configPath := writeConfig(t, `
sensors:
  "Fern": "C4:7C:8D:AA:BB:CC"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Polling.Period != 300 {
		t.Errorf("Polling.Period = %d, want 300", cfg.Polling.Period)
	}
	if cfg.Polling.MaxAttempts != 2 {
		t.Errorf("Polling.MaxAttempts = %d, want 2", cfg.Polling.MaxAttempts)
	}
	if cfg.Polling.Pacing != PacingCycle {
		t.Errorf("Polling.Pacing = %q, want %q", cfg.Polling.Pacing, PacingCycle)
	}
	if cfg.General.Adapter != "hci0" {
		t.Errorf("General.Adapter = %q, want hci0", cfg.General.Adapter)
	}
	if cfg.MQTT.Payload != PayloadJSON {
		t.Errorf("MQTT.Payload = %q, want %q", cfg.MQTT.Payload, PayloadJSON)
	}
	if cfg.BluetoothTimeout() != 10*time.Second {
		t.Errorf("BluetoothTimeout() = %v, want 10s", cfg.BluetoothTimeout())
	}
}

func TestLoad_SensorOrderPreserved(t *testing.T) {
	configPath := writeConfig(t, `
sensors:
  "Zebra Plant@Office": "C4:7C:8D:00:00:03"
  "Aloe": "C4:7C:8D:00:00:01"
  "Monstera@Hall": "C4:7C:8D:00:00:02"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"Zebra Plant@Office", "Aloe", "Monstera@Hall"}
	if len(cfg.Sensors) != len(want) {
		t.Fatalf("len(Sensors) = %d, want %d", len(cfg.Sensors), len(want))
	}
	for i, key := range want {
		if cfg.Sensors[i].Key != key {
			t.Errorf("Sensors[%d].Key = %q, want %q", i, cfg.Sensors[i].Key, key)
		}
	}
}

func TestLoad_SensorsMustBeMapping(t *testing.T) {
	configPath := writeConfig(t, `
sensors:
  - "C4:7C:8D:00:00:01"
`)

	if _, err := Load(configPath); err == nil {
		t.Error("Load() expected error for a sensors list, got nil")
	}
}

func TestLoad_DuplicateSensorKey(t *testing.T) {
	configPath := writeConfig(t, `
sensors:
  "Aloe": "C4:7C:8D:00:00:01"
  "Aloe": "C4:7C:8D:00:00:02"
`)

	if _, err := Load(configPath); err == nil {
		t.Error("Load() expected error for duplicate sensor key, got nil")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "invalid: [yaml: content")

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	configPath := writeConfig(t, `
sensors:
  "Fern": "C4:7C:8D:AA:BB:CC"
`)
	t.Setenv("FLORABRIDGE_ADAPTER", "hci2")
	t.Setenv("FLORABRIDGE_MQTT_HOST", "mqtt.example")
	t.Setenv("FLORABRIDGE_MQTT_PASSWORD", "s3cret")
	t.Setenv("FLORABRIDGE_INFLUXDB_TOKEN", "token")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.General.Adapter != "hci2" {
		t.Errorf("General.Adapter = %q, want hci2", cfg.General.Adapter)
	}
	if cfg.MQTT.Broker.Host != "mqtt.example" {
		t.Errorf("MQTT.Broker.Host = %q, want mqtt.example", cfg.MQTT.Broker.Host)
	}
	if cfg.MQTT.Auth.Password != "s3cret" {
		t.Errorf("MQTT.Auth.Password not overridden")
	}
	if cfg.InfluxDB.Token != "token" {
		t.Errorf("InfluxDB.Token not overridden")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Sensors = Sensors{{Key: "Fern", Address: "C4:7C:8D:AA:BB:CC"}}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "no sensors",
			mutate:  func(c *Config) { c.Sensors = nil },
			wantErr: "at least one sensor",
		},
		{
			name:    "zero period",
			mutate:  func(c *Config) { c.Polling.Period = 0 },
			wantErr: "polling.period",
		},
		{
			name:    "zero attempts",
			mutate:  func(c *Config) { c.Polling.MaxAttempts = 0 },
			wantErr: "polling.max_attempts",
		},
		{
			name:    "unknown pacing",
			mutate:  func(c *Config) { c.Polling.Pacing = "sometimes" },
			wantErr: "polling.pacing",
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name:    "unknown payload",
			mutate:  func(c *Config) { c.MQTT.Payload = "xml" },
			wantErr: "mqtt.payload",
		},
		{
			name:    "empty destination",
			mutate:  func(c *Config) { c.General.Destination = "" },
			wantErr: "general.destination",
		},
		{
			name: "influxdb without url",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.URL = ""
			},
			wantErr: "influxdb.url",
		},
		{
			name:    "no publish target",
			mutate:  func(c *Config) { c.MQTT.Enabled = false },
			wantErr: "mqtt or influxdb",
		},
		{
			name: "outbox without path",
			mutate: func(c *Config) {
				c.Outbox.Enabled = true
				c.Outbox.Path = ""
			},
			wantErr: "outbox.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateReportsAllErrors(t *testing.T) {
	cfg := defaultConfig()
	cfg.Polling.Period = 0
	cfg.MQTT.QoS = 7

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil, want error")
	}
	for _, part := range []string{"polling.period", "mqtt.qos", "sensors"} {
		if !strings.Contains(err.Error(), part) {
			t.Errorf("Validate() error = %v, missing %q", err, part)
		}
	}
}
