// Package poller runs the console's periodic background tasks: refreshing
// router reachability gauges and pruning expired sessions. Task failures
// are logged and swallowed; the next tick simply tries again.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dhakanet/ispconsole/internal/metrics"
)

// Task is one unit of periodic work.
type Task interface {
	// Name identifies the task in logs and metrics.
	Name() string

	// Run performs one iteration. Errors are reported but never stop the poller.
	Run(ctx context.Context) error
}

// Config holds the configuration for the poller.
type Config struct {
	// Interval is how often each tick runs the registered tasks.
	// Default: 60 seconds
	Interval time.Duration

	// TaskTimeout is the maximum time one task run is allowed to take.
	// Default: 30 seconds
	TaskTimeout time.Duration

	// ShutdownTimeout is how long Stop waits for a running tick to finish.
	// Default: 30 seconds
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Interval:        60 * time.Second,
		TaskTimeout:     30 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.Interval < time.Second {
		return fmt.Errorf("interval must be at least 1 second, got %v", c.Interval)
	}
	if c.TaskTimeout < time.Second {
		return fmt.Errorf("task timeout must be at least 1 second, got %v", c.TaskTimeout)
	}
	if c.ShutdownTimeout < time.Second {
		return fmt.Errorf("shutdown timeout must be at least 1 second, got %v", c.ShutdownTimeout)
	}
	return nil
}

// Poller runs registered tasks on a fixed interval.
type Poller struct {
	tasks  []Task
	config Config
	logger *slog.Logger

	// Synchronization
	wg     sync.WaitGroup
	stopCh chan struct{}
}

// New creates a new Poller with the given configuration.
// The poller must be started with Start() and stopped with Stop().
func New(config Config, logger *slog.Logger) (*Poller, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Poller{
		config: config,
		logger: logger,
		stopCh: make(chan struct{}),
	}, nil
}

// Register adds a task to the poller. Call this before Start().
func (p *Poller) Register(task Task) {
	p.tasks = append(p.tasks, task)
	p.logger.Debug("Registered poller task", "task", task.Name())
}

// Start begins the tick loop. The first tick runs immediately so gauges
// are populated right after boot.
func (p *Poller) Start(ctx context.Context) {
	p.wg.Add(1)
	go p.run(ctx)

	p.logger.Info("Poller started", "interval", p.config.Interval, "tasks", len(p.tasks))
}

// Stop signals the poller to stop and waits for the current tick to finish.
// It respects the configured ShutdownTimeout.
func (p *Poller) Stop() {
	p.logger.Info("Stopping poller...")
	close(p.stopCh)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("Poller stopped gracefully")
	case <-time.After(p.config.ShutdownTimeout):
		p.logger.Warn("Poller shutdown timeout exceeded, a task may still be running")
	}
}

// run is the main tick loop.
func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	p.tick(ctx)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			p.logger.Debug("Poller stopping")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick runs every registered task once, each under its own timeout.
func (p *Poller) tick(ctx context.Context) {
	for _, task := range p.tasks {
		taskCtx, cancel := context.WithTimeout(ctx, p.config.TaskTimeout)
		err := task.Run(taskCtx)
		cancel()

		if err != nil {
			// Background refreshes stay silent; the UI shows whatever the
			// last successful tick produced.
			metrics.PollerRunsTotal.WithLabelValues(task.Name(), "error").Inc()
			p.logger.Debug("poller task failed", "task", task.Name(), "error", err)
			continue
		}

		metrics.PollerRunsTotal.WithLabelValues(task.Name(), "success").Inc()
	}
}
