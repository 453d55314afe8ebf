// florabridge - Mi Flora plant sensor bridge
//
// florabridge polls Xiaomi Mi Flora Bluetooth LE plant sensors on a fixed
// period and publishes every reading to MQTT and/or InfluxDB:
//   - Retries each sensor within a cycle and keeps per-sensor success rates
//   - Stores readings it could not deliver and replays them later
//   - Reports progress to systemd and exposes Prometheus metrics
//
// Run with --gen-openhab to print openHAB items for the configured sensors.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// options holds the parsed command line.
type options struct {
	configPath string
	genOpenHAB bool
}

func main() {
	// Cancel on Ctrl+C and SIGTERM so the polling loop can stop cleanly
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	opts := options{}

	root := &cobra.Command{
		Use:   "florabridge",
		Short: "Poll Mi Flora plant sensors and publish their readings",
		Long: "florabridge polls Xiaomi Mi Flora Bluetooth LE plant sensors and publishes\n" +
			"light, temperature, moisture, conductivity and battery readings to MQTT\n" +
			"and/or InfluxDB.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	root.Flags().StringVarP(&opts.configPath, "config", "c", getConfigPath(),
		"path to the configuration file (env FLORABRIDGE_CONFIG)")
	root.Flags().BoolVar(&opts.genOpenHAB, "gen-openhab", false,
		"print openHAB items for the configured sensors and exit")

	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "florabridge %s (commit %s, built %s)\n", version, commit, date)
}

func getConfigPath() string {
	if path := os.Getenv("FLORABRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
