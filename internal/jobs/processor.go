package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/jobs/domain"
	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/metrics"
)

// Handler executes the long-running work for one job type. It must not
// leave partial persisted state behind when it returns an error.
type Handler func(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)

// Store is the persistence contract the processor drives. Claim, Complete
// and Fail are conditional updates; the processor relies on that for its
// idempotence guarantees.
type Store interface {
	Create(ctx context.Context, userID string, jobType domain.JobType, payload, metadata json.RawMessage) (string, error)
	Get(ctx context.Context, jobID string) (*domain.Job, error)
	Claim(ctx context.Context, jobID string) (*domain.Job, error)
	ClaimBatch(ctx context.Context, limit int) ([]domain.Job, error)
	Complete(ctx context.Context, jobID string, result json.RawMessage) error
	Fail(ctx context.Context, jobID string, errorMsg string) error
}

// Notifier receives terminal transitions. Delivery is best-effort; the
// processor logs notifier errors and moves on.
type Notifier interface {
	JobTerminal(ctx context.Context, job *domain.Job)
}

// Config holds processor configuration
type Config struct {
	Store      Store
	Notifier   Notifier
	Logger     *slog.Logger
	JobTimeout time.Duration
}

// Processor owns the job lifecycle state machine
// (pending -> processing -> completed | failed).
type Processor struct {
	store      Store
	notifier   Notifier
	logger     *slog.Logger
	jobTimeout time.Duration
	handlers   map[domain.JobType]Handler
}

// NewProcessor creates a processor with an empty handler registry.
func NewProcessor(cfg *Config) *Processor {
	timeout := cfg.JobTimeout
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}

	return &Processor{
		store:      cfg.Store,
		notifier:   cfg.Notifier,
		logger:     cfg.Logger,
		jobTimeout: timeout,
		handlers:   make(map[domain.JobType]Handler),
	}
}

// Register binds a handler to a job type. Registration happens once at
// startup, before any processing goroutine runs.
func (p *Processor) Register(jobType domain.JobType, handler Handler) {
	p.handlers[jobType] = handler
}

// CreateJob validates the job type and persists a new pending job.
func (p *Processor) CreateJob(ctx context.Context, userID string, jobType domain.JobType, payload, metadata json.RawMessage) (string, error) {
	if !jobType.Valid() {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownJobType, jobType)
	}
	if _, ok := p.handlers[jobType]; !ok {
		return "", fmt.Errorf("%w: no handler registered for %s", domain.ErrUnknownJobType, jobType)
	}

	jobID, err := p.store.Create(ctx, userID, jobType, payload, metadata)
	if err != nil {
		return "", err
	}

	metrics.JobsCreatedTotal.Inc()
	return jobID, nil
}

// GetStatus returns a read-only snapshot of the job. Ownership checks are
// the caller's responsibility.
func (p *Processor) GetStatus(ctx context.Context, jobID string) (*domain.Job, error) {
	return p.store.Get(ctx, jobID)
}

// ProcessOne fetches and executes a single job. It is the idempotence
// boundary: calling it on an already-claimed or terminal job is a safe
// no-op, so the inline trigger, the queue consumer, and the poller can all
// race on the same job id.
func (p *Processor) ProcessOne(ctx context.Context, jobID string) error {
	job, err := p.store.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			p.logger.Warn("Process trigger for unknown job",
				slog.String("job_id", jobID),
			)
			return nil
		}
		return fmt.Errorf("failed to fetch job: %w", err)
	}

	if job.Status != domain.StatusPending {
		p.logger.Debug("Job not pending, skipping",
			slog.String("job_id", jobID),
			slog.String("status", string(job.Status)),
		)
		return nil
	}

	claimed, err := p.store.Claim(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobAlreadyClaimed) {
			// Lost the race to another trigger path.
			p.logger.Debug("Job already claimed, skipping",
				slog.String("job_id", jobID),
			)
			return nil
		}
		return fmt.Errorf("failed to claim job: %w", err)
	}

	p.execute(ctx, claimed)
	return nil
}

// ProcessPending claims up to batchSize pending jobs and executes them
// concurrently, bounded by the batch size. Used by the scheduled poller.
func (p *Processor) ProcessPending(ctx context.Context, batchSize int) (int, error) {
	claimed, err := p.store.ClaimBatch(ctx, batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to claim pending jobs: %w", err)
	}

	if len(claimed) == 0 {
		return 0, nil
	}

	var wg sync.WaitGroup
	for i := range claimed {
		job := claimed[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.execute(ctx, &job)
		}()
	}
	wg.Wait()

	return len(claimed), nil
}

// execute runs the handler for an already-claimed job and records the
// terminal transition. No error escapes: handler failures, timeouts, and
// panics all end in a failed job, never a processing one.
func (p *Processor) execute(ctx context.Context, job *domain.Job) {
	p.logger.Info("Processing job",
		slog.String("job_id", job.ID),
		slog.String("job_type", string(job.Type)),
	)

	metrics.JobsInFlight.Inc()
	start := time.Now()

	result, err := p.runHandler(ctx, job)

	metrics.JobProcessingDuration.Observe(time.Since(start).Seconds())
	metrics.JobsInFlight.Dec()

	if err != nil {
		p.logger.Error("Job execution failed",
			slog.String("job_id", job.ID),
			slog.String("job_type", string(job.Type)),
			slog.String("error", err.Error()),
		)

		if failErr := p.store.Fail(ctx, job.ID, err.Error()); failErr != nil {
			p.logger.Error("Failed to record job failure",
				slog.String("job_id", job.ID),
				slog.String("error", failErr.Error()),
			)
			return
		}

		metrics.JobsFailedTotal.Inc()
		p.notifyTerminal(ctx, job.ID)
		return
	}

	if completeErr := p.store.Complete(ctx, job.ID, result); completeErr != nil {
		p.logger.Error("Failed to record job completion",
			slog.String("job_id", job.ID),
			slog.String("error", completeErr.Error()),
		)
		return
	}

	p.logger.Info("Job completed successfully",
		slog.String("job_id", job.ID),
		slog.String("job_type", string(job.Type)),
	)

	metrics.JobsCompletedTotal.Inc()
	p.notifyTerminal(ctx, job.ID)
}

// runHandler dispatches to the registered handler under the configured
// deadline, converting panics into ordinary errors.
func (p *Processor) runHandler(ctx context.Context, job *domain.Job) (result json.RawMessage, err error) {
	handler, ok := p.handlers[job.Type]
	if !ok {
		// Creation validates the type, so this only happens when a job
		// outlives a deploy that removed its handler.
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownJobType, job.Type)
	}

	handlerCtx, cancel := context.WithTimeout(ctx, p.jobTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	result, err = handler(handlerCtx, job.Payload)
	if err != nil && errors.Is(handlerCtx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("job timed out after %s: %w", p.jobTimeout, err)
	}
	return result, err
}

// notifyTerminal re-reads the job so the notifier sees the persisted
// terminal state, then emits the notification.
func (p *Processor) notifyTerminal(ctx context.Context, jobID string) {
	if p.notifier == nil {
		return
	}

	job, err := p.store.Get(ctx, jobID)
	if err != nil {
		p.logger.Error("Failed to load job for notification",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		return
	}

	p.notifier.JobTerminal(ctx, job)
}
