package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Job is the work run once per scheduled day
type Job func(ctx context.Context) error

// Daemon runs a job every day at a fixed wall-clock time
type Daemon struct {
	job         Job
	dailyHour   int // Hour to run (0-23)
	dailyMinute int // Minute to run (0-59)
	location    *time.Location
	logger      *zap.Logger
	now         func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex // Protect against concurrent runs
	running     bool
	lastRunDate string    // Date of last successful run, in location
	lastRunTime time.Time // Time of last successful run
}

// NewScheduledDaemon creates a daemon that runs job daily at hour:minute in loc
func NewScheduledDaemon(job Job, dailyHour, dailyMinute int, loc *time.Location, logger *zap.Logger) *Daemon {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		job:         job,
		dailyHour:   dailyHour,
		dailyMinute: dailyMinute,
		location:    loc,
		logger:      logger,
		now:         time.Now,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start runs the schedule until Stop is called, parent is canceled or the
// process receives SIGINT or SIGTERM.
func (d *Daemon) Start(parent context.Context) error {
	stop := context.AfterFunc(parent, d.cancel)
	defer stop()

	d.logger.Info("Daemon started",
		zap.Int("daily_hour", d.dailyHour),
		zap.Int("daily_minute", d.dailyMinute),
		zap.String("timezone", d.location.String()))

	// Catch up if today's slot has already passed
	now := d.now().In(d.location)
	scheduledToday := time.Date(now.Year(), now.Month(), now.Day(),
		d.dailyHour, d.dailyMinute, 0, 0, d.location)
	if now.After(scheduledToday) {
		d.logger.Info("Scheduled time already passed today, collecting now",
			zap.Time("scheduled_time", scheduledToday),
			zap.Time("current_time", now))
		if err := d.RunNow(); err != nil {
			d.logger.Error("Initial collection failed", zap.Error(err))
		}
	}

	d.logNextRun()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// Check every minute if it's time to run
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			d.logger.Info("Daemon stopped")
			return nil

		case sig := <-sigChan:
			d.logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			d.Stop()
			return nil

		case tick := <-ticker.C:
			if !d.shouldRunAt(tick) {
				continue
			}
			d.logger.Info("Starting scheduled collection", zap.Time("time", tick))
			if err := d.RunNow(); err != nil {
				d.logger.Error("Scheduled collection failed", zap.Error(err))
				continue
			}
			d.logNextRun()
		}
	}
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	d.cancel()
}

// RunNow runs the job unless it already succeeded today or is running.
// A failed run leaves the day open so the next trigger tries again.
func (d *Daemon) RunNow() error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		d.logger.Warn("Collection already running, skipping concurrent execution")
		return fmt.Errorf("collection already in progress")
	}
	today := d.now().In(d.location).Format("2006-01-02")
	if d.lastRunDate == today {
		d.mu.Unlock()
		d.logger.Info("Already collected today, skipping",
			zap.String("last_run_date", d.lastRunDate),
			zap.Time("last_run_time", d.lastRunTime))
		return nil
	}
	d.running = true
	d.mu.Unlock()

	err := d.job(d.ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = false
	if err != nil {
		return fmt.Errorf("failed to collect: %w", err)
	}
	d.lastRunDate = today
	d.lastRunTime = d.now()
	d.logger.Info("Collection completed", zap.String("date", today))
	return nil
}

// LastRun returns the date and time of the last successful run
func (d *Daemon) LastRun() (string, time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastRunDate, d.lastRunTime
}

func (d *Daemon) logNextRun() {
	nextRun := d.calculateNextRun(d.now())
	d.logger.Info("Next collection scheduled",
		zap.Time("next_run", nextRun),
		zap.Duration("wait_duration", nextRun.Sub(d.now())))
}

// calculateNextRun returns the first scheduled slot strictly after now
func (d *Daemon) calculateNextRun(now time.Time) time.Time {
	now = now.In(d.location)

	today := time.Date(now.Year(), now.Month(), now.Day(),
		d.dailyHour, d.dailyMinute, 0, 0, d.location)

	if !now.Before(today) {
		return today.AddDate(0, 0, 1)
	}
	return today
}

// shouldRunAt checks if now falls in the scheduled minute
func (d *Daemon) shouldRunAt(now time.Time) bool {
	local := now.In(d.location)
	return local.Hour() == d.dailyHour && local.Minute() == d.dailyMinute
}
