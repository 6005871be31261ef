// Package scheduler runs background jobs once a day at a configured local time.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidConfig is returned when the trigger time is out of range
var ErrInvalidConfig = errors.New("invalid scheduler configuration")

// Job is a unit of scheduled work
type Job interface {
	Name() string
	Run(ctx context.Context, now time.Time) error
}

// JobFunc adapts a function to Job
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context, now time.Time) error
}

// Name returns the job name
func (j JobFunc) Name() string { return j.JobName }

// Run calls Fn
func (j JobFunc) Run(ctx context.Context, now time.Time) error { return j.Fn(ctx, now) }

// Recorder receives the outcome of every run
type Recorder interface {
	JobFinished(job string, took time.Duration, err error)
}

// DailyTriggerConfig holds configuration for the daily trigger
type DailyTriggerConfig struct {
	Hour   int
	Minute int

	// CheckInterval is how often to check if it's time to run
	CheckInterval time.Duration

	// Timeout bounds a single run; zero means no limit
	Timeout time.Duration
}

// DefaultDailyTriggerConfig returns the 07:00 schedule
func DefaultDailyTriggerConfig() DailyTriggerConfig {
	return DailyTriggerConfig{
		Hour:          7,
		Minute:        0,
		CheckInterval: time.Minute,
		Timeout:       5 * time.Minute,
	}
}

// DailyTrigger runs its job once per calendar day, the first time the clock
// is at or past the configured hour and minute. A process started after that
// time runs the job on its first check.
type DailyTrigger struct {
	config   DailyTriggerConfig
	job      Job
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewDailyTrigger creates a new trigger for job
func NewDailyTrigger(config DailyTriggerConfig, job Job, logger *zap.Logger) (*DailyTrigger, error) {
	if config.Hour < 0 || config.Hour > 23 || config.Minute < 0 || config.Minute > 59 {
		return nil, fmt.Errorf("%w: %02d:%02d", ErrInvalidConfig, config.Hour, config.Minute)
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	return &DailyTrigger{
		config: config,
		job:    job,
		logger: logger,
		now:    time.Now,
	}, nil
}

// SetRecorder sets the run recorder
func (c *DailyTrigger) SetRecorder(recorder Recorder) {
	c.recorder = recorder
}

// Start starts the trigger loop
func (c *DailyTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Daily trigger started",
		zap.String("job", c.job.Name()),
		zap.String("at", fmt.Sprintf("%02d:%02d", c.config.Hour, c.config.Minute)),
		zap.Duration("check_interval", c.config.CheckInterval),
	)
	return nil
}

// Stop stops the trigger and waits for a running job or ctx
func (c *DailyTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Daily trigger stopped", zap.String("job", c.job.Name()))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *DailyTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	c.checkAndTrigger(ctx)

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkAndTrigger(ctx)
		}
	}
}

// checkAndTrigger runs the job when today's slot has been reached and not yet used
func (c *DailyTrigger) checkAndTrigger(ctx context.Context) bool {
	now := c.now()
	today := now.Format("2006-01-02")

	c.mu.Lock()
	if c.lastRunDate == today {
		c.mu.Unlock()
		return false
	}
	slot := time.Date(now.Year(), now.Month(), now.Day(), c.config.Hour, c.config.Minute, 0, 0, now.Location())
	if now.Before(slot) {
		c.mu.Unlock()
		return false
	}
	c.lastRunDate = today
	c.mu.Unlock()

	_ = c.RunNow(ctx)
	return true
}

// RunNow runs the job immediately, outside the daily schedule
func (c *DailyTrigger) RunNow(ctx context.Context) error {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	err := c.job.Run(ctx, c.now())
	took := time.Since(start)

	if c.recorder != nil {
		c.recorder.JobFinished(c.job.Name(), took, err)
	}
	if err != nil {
		c.logger.Error("Scheduled job failed",
			zap.String("job", c.job.Name()),
			zap.Duration("took", took),
			zap.Error(err))
		return err
	}
	c.logger.Info("Scheduled job finished",
		zap.String("job", c.job.Name()),
		zap.Duration("took", took))
	return nil
}
