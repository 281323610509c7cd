package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"ReviewsScanner/internal/ports"
	"ReviewsScanner/pkg/logger"
)

// CronScheduler triggers jobs on a standard five-field cron expression.
// Overlapping triggers are skipped while a job is still running.
type CronScheduler struct {
	spec       string
	location   *time.Location
	runOnStart bool
	logger     *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	stopped chan struct{}

	// startup tracks the run-on-start job, which cron itself does not.
	startup sync.WaitGroup
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler configured via cron expression string.
func NewCronScheduler(spec string, location *time.Location, runOnStart bool, log *slog.Logger) *CronScheduler {
	if location == nil {
		location = time.UTC
	}
	return &CronScheduler{spec: spec, location: location, runOnStart: runOnStart, logger: log}
}

// Validate parses the expression without starting anything.
func Validate(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("parse cron expression %q: %w", spec, err)
	}
	return nil
}

// Start registers job and begins dispatching. It returns once the cron loop
// is running; the loop stops on Stop or when ctx is cancelled.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return nil
	}

	cronLog := logger.CronLogger{Log: c.logger}
	runner := cron.New(
		cron.WithLocation(c.location),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	id, err := runner.AddFunc(c.spec, func() { job(time.Now().In(c.location)) })
	if err != nil {
		return fmt.Errorf("schedule %q: %w", c.spec, err)
	}

	c.cron = runner
	runner.Start()

	if c.runOnStart {
		wrapped := runner.Entry(id).WrappedJob
		c.startup.Add(1)
		go func() {
			defer c.startup.Done()
			wrapped.Run()
		}()
	}

	if next := runner.Entry(id).Next; !next.IsZero() && c.logger != nil {
		c.logger.Info("scheduler started", "cron", c.spec, "next_run", next)
	}

	go func() {
		<-ctx.Done()
		_ = c.Stop(context.Background())
	}()

	return nil
}

// Stop halts dispatching and waits until running jobs, the run-on-start one
// included, have returned, or until ctx is done. Every caller waits on the
// same shutdown, so a Stop racing the context watcher still blocks.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	if runner := c.cron; runner != nil {
		c.cron = nil
		done := runner.Stop()
		stopped := make(chan struct{})
		c.stopped = stopped
		go func() {
			<-done.Done()
			c.startup.Wait()
			close(stopped)
		}()
	}
	stopped := c.stopped
	c.mu.Unlock()

	if stopped == nil {
		return nil
	}

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
