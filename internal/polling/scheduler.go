package polling

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/nerrad567/florabridge/internal/device"
	"github.com/nerrad567/florabridge/internal/miflora"
)

// Pacing policies.
const (
	PacingCycle  = "cycle"
	PacingDevice = "device"
)

// State is the scheduler lifecycle state.
type State int32

const (
	// StateStartup is the state before Run is called.
	StateStartup State = iota

	// StateRunning is the only steady state.
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateStartup:
		return "STARTUP"
	case StateRunning:
		return "RUNNING"
	default:
		return "UNKNOWN"
	}
}

// Sink receives successful readings.
type Sink interface {
	Publish(ctx context.Context, destination string, r *miflora.Reading) error
}

// SchedulerConfig holds the scheduler settings.
type SchedulerConfig struct {
	// Destination is passed to every Publish call.
	Destination string

	// Period is the time between scheduled polls.
	Period time.Duration

	// Pacing is PacingCycle or PacingDevice. Empty means PacingCycle.
	Pacing string
}

// Scheduler is the fixed-period polling loop.
type Scheduler struct {
	devices  []*device.Device
	executor *Executor
	sink     Sink
	cfg      SchedulerConfig

	state    atomic.Int32
	logger   Logger
	recorder Recorder

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewScheduler creates a Scheduler over devices, in the given order.
func NewScheduler(devices []*device.Device, executor *Executor, sink Sink, cfg SchedulerConfig) *Scheduler {
	if cfg.Pacing == "" {
		cfg.Pacing = PacingCycle
	}
	return &Scheduler{
		devices:  devices,
		executor: executor,
		sink:     sink,
		cfg:      cfg,
		logger:   noopLogger{},
		recorder: noopRecorder{},
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// SetLogger sets the logger for the scheduler.
func (s *Scheduler) SetLogger(logger Logger) {
	s.logger = logger
}

// SetRecorder sets the recorder notified of publish failures.
func (s *Scheduler) SetRecorder(recorder Recorder) {
	s.recorder = recorder
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Run polls until ctx is cancelled. It returns nil on cancellation.
func (s *Scheduler) Run(ctx context.Context) error {
	s.state.Store(int32(StateRunning))
	s.logger.Info("polling loop started",
		"devices", len(s.devices),
		"period", s.cfg.Period,
		"pacing", s.cfg.Pacing,
	)

	next := s.now()
	for {
		if err := s.RunCycle(ctx); err != nil {
			return nil
		}

		if s.cfg.Pacing != PacingCycle {
			continue
		}

		// next period boundary; an overrunning cycle restarts the schedule
		next = next.Add(s.cfg.Period)
		now := s.now()
		if next.Before(now) {
			next = now
		}
		if err := s.sleep(ctx, next.Sub(now)); err != nil {
			return nil
		}
	}
}

// RunCycle makes one pass over all devices.
// It returns ctx.Err() if the context was cancelled during the pass.
func (s *Scheduler) RunCycle(ctx context.Context) error {
	for _, d := range s.devices {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.pollDevice(ctx, d)

		if s.cfg.Pacing == PacingDevice {
			if err := s.sleep(ctx, s.cfg.Period); err != nil {
				return err
			}
		}
	}
	return ctx.Err()
}

func (s *Scheduler) pollDevice(ctx context.Context, d *device.Device) {
	reading, err := s.executor.Execute(ctx, d)
	if err != nil {
		// already logged by the executor
		return
	}

	if err := s.sink.Publish(ctx, s.cfg.Destination, reading); err != nil {
		s.logger.Error("publishing reading failed",
			"device", d.ID,
			"destination", s.cfg.Destination,
			"error", err,
		)
		s.recorder.PublishFailed(d.ID)
		return
	}
	s.logger.Debug("reading published", "device", d.ID, "id", reading.ID.String())
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
