package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Pacing policies for the polling loop.
const (
	// PacingCycle sleeps once per cycle, until the next period boundary.
	PacingCycle = "cycle"

	// PacingDevice sleeps for the full period after every individual device poll.
	PacingDevice = "device"
)

// MQTT payload formats.
const (
	PayloadJSON = "json"
	PayloadCSV  = "csv"
)

// Config is the root configuration structure for florabridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	General   GeneralConfig   `yaml:"general"`
	Polling   PollingConfig   `yaml:"polling"`
	Sensors   Sensors         `yaml:"sensors"`
	Bluetooth BluetoothConfig `yaml:"bluetooth"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Outbox    OutboxConfig    `yaml:"outbox"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
	Systemd   SystemdConfig   `yaml:"systemd"`
}

// GeneralConfig contains process-wide settings.
type GeneralConfig struct {
	// Adapter is the Bluetooth adapter handed opaquely to every poller (e.g. "hci0").
	Adapter string `yaml:"adapter"`

	// Destination is the topic or target name readings are published under.
	Destination string `yaml:"destination"`
}

// PollingConfig controls the polling loop and the per-cycle retry policy.
type PollingConfig struct {
	// Period is the number of seconds between scheduled polls.
	Period int `yaml:"period"`

	// MaxAttempts bounds the refresh attempts made for one device within one cycle.
	MaxAttempts int `yaml:"max_attempts"`

	// Pacing is either "cycle" or "device".
	Pacing string `yaml:"pacing"`
}

// BluetoothConfig contains settings for the gatttool-based poller.
type BluetoothConfig struct {
	// Binary is the gatttool executable. Looked up on PATH when not absolute.
	Binary string `yaml:"binary"`

	// Timeout bounds a single gatttool invocation (seconds).
	Timeout int `yaml:"timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Retain    bool                `yaml:"retain"`
	Payload   string              `yaml:"payload"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// OutboxConfig contains settings for the local store of unpublished readings.
type OutboxConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// ReplayBatch caps how many stored readings are replayed before each new publish.
	ReplayBatch int `yaml:"replay_batch"`

	// MaxAge drops stored readings older than this many hours. 0 keeps them forever.
	MaxAge int `yaml:"max_age"`
}

// MetricsConfig contains the Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SystemdConfig controls supervisor notifications.
type SystemdConfig struct {
	Notify bool `yaml:"notify"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: FLORABRIDGE_SECTION_KEY
// For example: FLORABRIDGE_MQTT_HOST, FLORABRIDGE_INFLUXDB_TOKEN
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			Adapter:     "hci0",
			Destination: "miflora",
		},
		Polling: PollingConfig{
			Period:      300,
			MaxAttempts: 2,
			Pacing:      PacingCycle,
		},
		Bluetooth: BluetoothConfig{
			Binary:  "gatttool",
			Timeout: 10,
		},
		MQTT: MQTTConfig{
			Enabled: true,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "florabridge",
			},
			QoS:     1,
			Payload: PayloadJSON,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Outbox: OutboxConfig{
			Path:        "./data/outbox.db",
			WALMode:     true,
			BusyTimeout: 5,
			ReplayBatch: 50,
			MaxAge:      72,
		},
		Metrics: MetricsConfig{
			Listen: ":9108",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stdout",
		},
		Systemd: SystemdConfig{
			Notify: true,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FLORABRIDGE_ADAPTER"); v != "" {
		cfg.General.Adapter = v
	}

	// MQTT
	if v := os.Getenv("FLORABRIDGE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("FLORABRIDGE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("FLORABRIDGE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("FLORABRIDGE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
// Hardware addresses are not checked here; the device registry owns that rule.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.General.Destination == "" {
		errs = append(errs, "general.destination is required")
	}

	if c.Polling.Period < 1 {
		errs = append(errs, "polling.period must be at least 1 second")
	}
	if c.Polling.MaxAttempts < 1 {
		errs = append(errs, "polling.max_attempts must be at least 1")
	}
	switch c.Polling.Pacing {
	case PacingCycle, PacingDevice:
	default:
		errs = append(errs, fmt.Sprintf("polling.pacing must be %q or %q", PacingCycle, PacingDevice))
	}

	if len(c.Sensors) == 0 {
		errs = append(errs, "sensors: at least one sensor is required")
	}

	if c.Bluetooth.Binary == "" {
		errs = append(errs, "bluetooth.binary is required")
	}
	if c.Bluetooth.Timeout < 1 {
		errs = append(errs, "bluetooth.timeout must be at least 1 second")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	switch c.MQTT.Payload {
	case PayloadJSON, PayloadCSV:
	default:
		errs = append(errs, fmt.Sprintf("mqtt.payload must be %q or %q", PayloadJSON, PayloadCSV))
	}

	if !c.MQTT.Enabled && !c.InfluxDB.Enabled {
		errs = append(errs, "at least one of mqtt or influxdb must be enabled")
	}
	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if c.Outbox.Enabled && c.Outbox.Path == "" {
		errs = append(errs, "outbox.path is required when the outbox is enabled")
	}

	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		errs = append(errs, "metrics.listen is required when metrics are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// PollPeriod returns the polling period as a Duration.
func (c *Config) PollPeriod() time.Duration {
	return time.Duration(c.Polling.Period) * time.Second
}

// BluetoothTimeout returns the per-invocation transport timeout as a Duration.
func (c *Config) BluetoothTimeout() time.Duration {
	return time.Duration(c.Bluetooth.Timeout) * time.Second
}

// OutboxMaxAge returns the outbox retention as a Duration (0 means unlimited).
func (c *Config) OutboxMaxAge() time.Duration {
	return time.Duration(c.Outbox.MaxAge) * time.Hour
}
