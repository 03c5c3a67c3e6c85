// Package scheduler runs periodic maintenance jobs, such as regenerating the
// pre-built encrypted tests, on a gocron scheduler.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

var ErrAlreadyStarted = errors.New("rotator already started")

// Job is one run of a periodic task. ctx is cancelled when the rotator stops.
type Job func(ctx context.Context) error

// Rotator runs a Job every interval, starting immediately. Runs never
// overlap and failures are logged, not retried.
type Rotator struct {
	scheduler *gocron.Scheduler
	interval  time.Duration
	job       Job
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	started  bool
	runs     int
	failures int
	lastErr  error
	lastRun  time.Time
}

func New(interval time.Duration, job Job, logger *zap.Logger) *Rotator {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	ctx, cancel := context.WithCancel(context.Background())
	return &Rotator{
		scheduler: s,
		interval:  interval,
		job:       job,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start schedules the job and begins running it in the background.
func (r *Rotator) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return ErrAlreadyStarted
	}
	if r.interval <= 0 {
		return fmt.Errorf("rotation interval must be positive, got %s", r.interval)
	}

	if _, err := r.scheduler.Every(r.interval).StartImmediately().Do(r.run); err != nil {
		return fmt.Errorf("schedule rotation: %w", err)
	}
	r.scheduler.StartAsync()
	r.started = true
	r.logger.Info("rotation scheduled", zap.Duration("interval", r.interval))
	return nil
}

// Stop cancels any running job and stops the scheduler.
func (r *Rotator) Stop() {
	r.cancel()
	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if started {
		r.scheduler.Stop()
	}
}

// RunNow runs the job synchronously, outside the schedule.
func (r *Rotator) RunNow(ctx context.Context) error {
	return r.execute(ctx)
}

// Stats reports how many runs completed and how many of them failed.
// LastRun is the start time of the most recent run, zero before the first.
func (r *Rotator) LastRun() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRun
}

func (r *Rotator) Stats() (runs, failures int, lastErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs, r.failures, r.lastErr
}

func (r *Rotator) run() {
	_ = r.execute(r.ctx)
}

func (r *Rotator) execute(ctx context.Context) error {
	started := time.Now()
	err := r.job(ctx)

	r.mu.Lock()
	r.runs++
	r.lastRun = started
	r.lastErr = err
	if err != nil {
		r.failures++
	}
	r.mu.Unlock()

	if err != nil {
		r.logger.Error("rotation failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		return err
	}
	r.logger.Info("rotation finished", zap.Duration("elapsed", time.Since(started)))
	return nil
}
