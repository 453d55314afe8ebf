package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nerrad567/florabridge/internal/device"
	"github.com/nerrad567/florabridge/internal/infrastructure/config"
	"github.com/nerrad567/florabridge/internal/infrastructure/database"
	"github.com/nerrad567/florabridge/internal/infrastructure/influxdb"
	"github.com/nerrad567/florabridge/internal/infrastructure/logging"
	"github.com/nerrad567/florabridge/internal/infrastructure/metrics"
	"github.com/nerrad567/florabridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/florabridge/internal/infrastructure/systemd"
	"github.com/nerrad567/florabridge/internal/miflora"
	"github.com/nerrad567/florabridge/internal/openhab"
	"github.com/nerrad567/florabridge/internal/polling"
	"github.com/nerrad567/florabridge/internal/publish"
	"github.com/nerrad567/florabridge/migrations"
)

// app holds everything run wires together. Resources are released by close
// in reverse order of acquisition.
type app struct {
	cfg      *config.Config
	log      *logging.Logger
	notifier *systemd.Notifier
	registry *device.Registry
	recorder *metrics.Recorder
	sink     polling.Sink
	checks   map[string]metrics.HealthCheck
	closers  []func()
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - opts: Parsed command line
//   - out: Destination of generated items
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, opts options, out io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a := &app{cfg: cfg}
	defer a.close()

	if opts.genOpenHAB {
		// items go to out; keep log lines off stdout
		logCfg := cfg.Logging
		logCfg.Output = "stderr"
		a.log = logging.New(logCfg, version)
		if err := a.loadRegistry(); err != nil {
			return err
		}
		a.log.Info("generating openHAB items, copy to your configuration and modify as needed")
		return openhab.Generate(out, a.registry.Devices(), cfg.General.Destination, cfg.MQTT.Payload)
	}

	a.notifier = systemd.NewNotifier(cfg.Systemd.Notify)
	a.log = logging.New(cfg.Logging, version).WithStatus(a.notifier)
	a.log.Info("starting florabridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	if err := a.notifier.Ready("Configuration accepted"); err != nil {
		a.log.Warn("supervisor notification failed", "error", err)
	}
	a.log.Info("configuration accepted", "path", opts.configPath)

	if err := a.loadRegistry(); err != nil {
		a.log.Error("loading sensors failed", "error", err)
		return err
	}

	if err := a.buildSink(ctx); err != nil {
		a.log.Error("setting up publishing failed", "error", err)
		return err
	}

	if cfg.Metrics.Enabled {
		if err := a.startMetrics(); err != nil {
			return err
		}
	}

	return a.poll(ctx)
}

// loadRegistry builds the device registry from the sensors section.
func (a *app) loadRegistry() error {
	entries := make([]device.Entry, len(a.cfg.Sensors))
	for i, s := range a.cfg.Sensors {
		entries[i] = device.Entry{Key: s.Key, Address: s.Address}
	}

	factory := miflora.NewGatttoolFactory(miflora.GatttoolOptions{
		Adapter: a.cfg.General.Adapter,
		Binary:  a.cfg.Bluetooth.Binary,
		Timeout: a.cfg.BluetoothTimeout(),
	})

	reg, err := device.Load(entries, factory, a.cfg.PollPeriod())
	if err != nil {
		return fmt.Errorf("loading sensors: %w", err)
	}
	a.registry = reg
	return nil
}

// buildSink connects the enabled publish targets and wraps them in the
// outbox when one is configured.
func (a *app) buildSink(ctx context.Context) error {
	var sinks publish.Multi

	if a.cfg.MQTT.Enabled {
		client, err := mqtt.Connect(a.cfg.MQTT, mqtt.NewTopics(a.cfg.General.Destination))
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		a.onClose("disconnecting from MQTT", client.Close)
		a.log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", a.cfg.MQTT.Broker.Host, a.cfg.MQTT.Broker.Port),
			"client_id", a.cfg.MQTT.Broker.ClientID,
		)

		client.SetOnConnect(func() {
			a.log.Info("MQTT reconnected")
		})
		client.SetOnDisconnect(func(err error) {
			a.log.Warn("MQTT disconnected", "error", err)
		})

		sinks = append(sinks, publish.NewMQTT(client, a.cfg.MQTT))
		a.addHealthCheck("mqtt", client.HealthCheck)
	}

	if a.cfg.InfluxDB.Enabled {
		client, err := influxdb.Connect(ctx, a.cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		a.onClose("closing InfluxDB connection", client.Close)
		a.log.Info("InfluxDB connected",
			"url", a.cfg.InfluxDB.URL,
			"org", a.cfg.InfluxDB.Org,
			"bucket", a.cfg.InfluxDB.Bucket,
		)

		sinks = append(sinks, publish.NewInflux(client))
		a.addHealthCheck("influxdb", client.HealthCheck)
	}

	if len(sinks) == 0 {
		return errors.New("no publish target enabled")
	}
	a.sink = sinks
	if len(sinks) == 1 {
		a.sink = sinks[0]
	}

	if !a.cfg.Outbox.Enabled {
		return nil
	}

	db, err := database.Open(ctx, database.Config{
		Path:        a.cfg.Outbox.Path,
		WALMode:     a.cfg.Outbox.WALMode,
		BusyTimeout: a.cfg.Outbox.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening outbox: %w", err)
	}
	a.onClose("closing outbox", db.Close)

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		return fmt.Errorf("running outbox migrations: %w", err)
	}

	outbox := publish.NewOutbox(a.sink, db, publish.OutboxConfig{
		ReplayBatch: a.cfg.Outbox.ReplayBatch,
		MaxAge:      a.cfg.OutboxMaxAge(),
	})
	outbox.SetLogger(a.log)

	if n, err := outbox.Pending(ctx); err == nil && n > 0 {
		a.log.Info("outbox holds undelivered readings", "count", n)
	}

	a.sink = outbox
	a.addHealthCheck("outbox", db.HealthCheck)
	a.log.Info("outbox ready", "path", a.cfg.Outbox.Path)
	return nil
}

// startMetrics starts the Prometheus endpoint.
func (a *app) startMetrics() error {
	if a.recorder == nil {
		a.recorder = metrics.NewRecorder()
	}
	server := metrics.NewServer(a.cfg.Metrics.Listen, a.recorder, version)
	server.SetLogger(a.log)
	for name, check := range a.checks {
		server.AddHealthCheck(name, check)
	}

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting metrics endpoint: %w", err)
	}
	a.onClose("stopping metrics endpoint", server.Close)
	return nil
}

// poll probes every sensor once and then runs the scheduler until ctx ends.
func (a *app) poll(ctx context.Context) error {
	devices := a.registry.Devices()

	executor := polling.NewExecutor(a.cfg.Polling.MaxAttempts)
	executor.SetLogger(a.log)

	scheduler := polling.NewScheduler(devices, executor, a.sink, polling.SchedulerConfig{
		Destination: a.cfg.General.Destination,
		Period:      a.cfg.PollPeriod(),
		Pacing:      a.cfg.Polling.Pacing,
	})
	scheduler.SetLogger(a.log)

	if a.recorder != nil {
		executor.SetRecorder(a.recorder)
		scheduler.SetRecorder(a.recorder)
	}

	probe := polling.NewProbe()
	probe.SetLogger(a.log)
	reachable := probe.Run(ctx, devices)

	a.log.Info("initialization complete, continuing in regular intervals",
		"sensors", len(devices),
		"reachable", reachable,
	)

	err := scheduler.Run(ctx)

	if stopErr := a.notifier.Stopping(); stopErr != nil {
		a.log.Warn("supervisor notification failed", "error", stopErr)
	}
	a.log.Info("shutdown signal received, cleaning up")
	return err
}

// addHealthCheck records a component check for the /health endpoint.
func (a *app) addHealthCheck(name string, check metrics.HealthCheck) {
	if a.checks == nil {
		a.checks = make(map[string]metrics.HealthCheck)
	}
	a.checks[name] = check
}

// onClose registers a cleanup step run by close.
func (a *app) onClose(msg string, fn func() error) {
	a.closers = append(a.closers, func() {
		a.log.Info(msg)
		if err := fn(); err != nil {
			a.log.Error("cleanup failed", "step", msg, "error", err)
		}
	})
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	if a.log != nil && a.notifier != nil {
		a.log.Info("florabridge stopped")
	}
}
