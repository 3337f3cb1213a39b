package bookings

import (
	"context"
	"sync"
	"time"

	"stayhub/internal/shared/config"
	"stayhub/pkg/logger"
)

// JobProcessor runs the background sweeps: a frequent pass that cancels
// expired holds and a daily pass that cancels confirmed no-shows.
type JobProcessor struct {
	service Service
	cfg     *config.Config
	log     *logger.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

func NewJobProcessor(service Service, cfg *config.Config, log *logger.Logger) *JobProcessor {
	return &JobProcessor{
		service: service,
		cfg:     cfg,
		log:     log,
		stopCh:  make(chan struct{}),
	}
}

// Start launches the sweep loops. Call Stop to shut them down.
func (jp *JobProcessor) Start() {
	jp.wg.Add(2)
	go jp.runLoop(jp.cfg.Booking.ExpirySweepInterval, jp.sweepExpiredHolds)
	go jp.runLoop(jp.cfg.Booking.NoShowSweepInterval, jp.sweepNoShows)
	jp.log.Info("booking job processor started",
		"expiry_interval", jp.cfg.Booking.ExpirySweepInterval.String(),
		"no_show_interval", jp.cfg.Booking.NoShowSweepInterval.String())
}

// Stop signals the loops to exit and waits for in-flight sweeps to finish
func (jp *JobProcessor) Stop() {
	jp.once.Do(func() {
		close(jp.stopCh)
	})
	jp.wg.Wait()
	jp.log.Info("booking job processor stopped")
}

func (jp *JobProcessor) runLoop(interval time.Duration, sweep func(context.Context)) {
	defer jp.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-jp.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			sweep(ctx)
			cancel()
		}
	}
}

func (jp *JobProcessor) sweepExpiredHolds(ctx context.Context) {
	swept, err := jp.service.SweepExpiredHolds(ctx)
	if err != nil {
		jp.log.LogSweepFailure(ctx, "expired_holds", "", err)
		return
	}
	if swept > 0 {
		jp.log.Info("expired holds released", "count", swept)
	}
}

func (jp *JobProcessor) sweepNoShows(ctx context.Context) {
	swept, err := jp.service.SweepNoShows(ctx)
	if err != nil {
		jp.log.LogSweepFailure(ctx, "no_shows", "", err)
		return
	}
	if swept > 0 {
		jp.log.Info("no-show bookings cancelled", "count", swept)
	}
}
