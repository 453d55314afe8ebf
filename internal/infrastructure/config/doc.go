// Package config handles loading and validating florabridge configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Keeping the sensors section in file order
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Broker passwords and InfluxDB tokens should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, s := range cfg.Sensors {
//	    fmt.Println(s.Key, s.Address)
//	}
package config
