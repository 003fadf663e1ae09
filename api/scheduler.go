/*
scheduler.go - Automated closing period scheduler

PURPOSE:
  Periodically makes sure every employee has an OPEN closing period for the
  current month, so punches and summaries never wait for an administrator
  to open one.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - "Current month" is evaluated in the labor config's time zone
  - Existing periods are left untouched; creation is idempotent

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewPeriodScheduler(handler.Service, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - attendance/service.go: EnsureCurrentPeriods
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// PeriodOpener is the part of attendance.Service the scheduler drives.
type PeriodOpener interface {
	EnsureCurrentPeriods(ctx context.Context, now time.Time) (int, error)
}

// PeriodScheduler opens the current month's periods on a timer.
type PeriodScheduler struct {
	Service       PeriodOpener
	CheckInterval time.Duration
	Enabled       bool
	Now           func() time.Time

	logger *slog.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewPeriodScheduler creates a new scheduler.
func NewPeriodScheduler(service PeriodOpener, logger *slog.Logger) *PeriodScheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PeriodScheduler{
		Service:       service,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		Now:           time.Now,
		logger:        logger.With(slog.String("component", "scheduler")),
	}
}

// Start begins the scheduler.
func (ps *PeriodScheduler) Start() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if !ps.Enabled {
		ps.logger.Info("scheduler disabled, not starting")
		return
	}
	if ps.ticker != nil {
		return
	}

	ps.ticker = time.NewTicker(ps.CheckInterval)
	ps.stop = make(chan struct{})
	ps.wg.Add(1)

	go ps.run(ps.ticker, ps.stop)

	ps.logger.Info("scheduler started", slog.Duration("interval", ps.CheckInterval))
}

// Stop stops the scheduler and waits for a running check to finish.
func (ps *PeriodScheduler) Stop() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.ticker == nil {
		return
	}
	ps.ticker.Stop()
	close(ps.stop)
	ps.wg.Wait()
	ps.ticker = nil
	ps.logger.Info("scheduler stopped")
}

func (ps *PeriodScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer ps.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	// Run immediately on start
	ps.RunOnce(ctx)

	for {
		select {
		case <-ticker.C:
			ps.RunOnce(ctx)
		case <-stop:
			return
		}
	}
}

// RunOnce performs one check and returns how many periods were opened.
func (ps *PeriodScheduler) RunOnce(ctx context.Context) int {
	created, err := ps.Service.EnsureCurrentPeriods(ctx, ps.Now())
	if err != nil {
		ps.logger.Error("opening current periods failed",
			slog.Int("created", created),
			slog.Any("error", err),
		)
		return created
	}
	if created > 0 {
		ps.logger.Info("opened current periods", slog.Int("created", created))
	}
	return created
}
