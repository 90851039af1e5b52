package jobs

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/metrics"
)

// Sweeper fails jobs stuck in processing past a threshold. Implemented by
// the job storage; split out so poller tests can count sweep calls.
type Sweeper interface {
	FailStale(ctx context.Context, threshold time.Duration) (int, error)
}

// PollerConfig holds scheduled poller configuration
type PollerConfig struct {
	Processor  *Processor
	Sweeper    Sweeper
	Logger     *slog.Logger
	Interval   time.Duration
	BatchSize  int
	StaleAfter time.Duration
	// GracePeriod bounds how long Stop waits for an in-flight tick.
	GracePeriod time.Duration
}

// Poller periodically asks the processor to claim and run a batch of
// pending jobs. Ticks are single-flight: when a tick is still running the
// next one is skipped, which bounds database load regardless of interval
// misconfiguration.
type Poller struct {
	processor   *Processor
	sweeper     Sweeper
	logger      *slog.Logger
	interval    time.Duration
	batchSize   int
	staleAfter  time.Duration
	gracePeriod time.Duration

	inFlight atomic.Bool
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewPoller creates a poller with conservative defaults suitable for
// shared hosting.
func NewPoller(cfg *PollerConfig) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 5
	}

	gracePeriod := cfg.GracePeriod
	if gracePeriod <= 0 {
		gracePeriod = 5 * time.Second
	}

	return &Poller{
		processor:   cfg.Processor,
		sweeper:     cfg.Sweeper,
		logger:      cfg.Logger,
		interval:    interval,
		batchSize:   batchSize,
		staleAfter:  cfg.StaleAfter,
		gracePeriod: gracePeriod,
		stopChan:    make(chan struct{}),
		doneChan:    make(chan struct{}),
	}
}

// Start runs the polling loop until Stop is called or ctx is canceled.
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting job poller",
		slog.Duration("interval", p.interval),
		slog.Int("batch_size", p.batchSize),
	)

	go p.loop(ctx)
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.doneChan)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			p.logger.Info("Job poller stopping - stop requested")
			return

		case <-ctx.Done():
			p.logger.Info("Job poller stopping - context canceled")
			return

		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick runs one poll cycle. Returns false when the tick was skipped
// because a previous one is still in flight.
func (p *Poller) Tick(ctx context.Context) bool {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.logger.Warn("Poller tick still in flight, skipping")
		metrics.PollerTicksSkipped.Inc()
		return false
	}
	defer p.inFlight.Store(false)

	processed, err := p.processor.ProcessPending(ctx, p.batchSize)
	if err != nil {
		// One bad batch must not stop future polling.
		p.logger.Error("Poller batch failed",
			slog.String("error", err.Error()),
		)
	} else if processed > 0 {
		p.logger.Info("Poller batch processed",
			slog.Int("count", processed),
		)
	}

	if p.sweeper != nil && p.staleAfter > 0 {
		if _, err := p.sweeper.FailStale(ctx, p.staleAfter); err != nil {
			p.logger.Error("Stale job sweep failed",
				slog.String("error", err.Error()),
			)
		}
	}

	return true
}

// Stop stops scheduling new ticks and waits up to the grace period for an
// in-flight tick to finish.
func (p *Poller) Stop() {
	close(p.stopChan)

	select {
	case <-p.doneChan:
		p.logger.Info("Job poller stopped")
	case <-time.After(p.gracePeriod):
		p.logger.Warn("Job poller shutdown grace period exceeded")
	}
}
