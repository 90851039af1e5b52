package jobs

import (
	"context"
	"log/slog"
	"time"
)

// InlineRunner triggers immediate processing of a just-created job in the
// same process, for deployments without a dedicated worker. The HTTP
// response that created the job has already been sent by the time the
// trigger runs, so every error stops here: logged, never propagated.
type InlineRunner struct {
	processor *Processor
	logger    *slog.Logger
	timeout   time.Duration
}

// NewInlineRunner creates an inline trigger for the given processor.
func NewInlineRunner(processor *Processor, logger *slog.Logger, timeout time.Duration) *InlineRunner {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &InlineRunner{
		processor: processor,
		logger:    logger,
		timeout:   timeout,
	}
}

// Run fires processing of jobID on a new goroutine and returns immediately.
func (r *InlineRunner) Run(jobID string) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("Inline processing panicked",
					slog.String("job_id", jobID),
					slog.Any("panic", rec),
				)
			}
		}()

		// Detached from the request context on purpose: the request is
		// already answered and must not cancel the job.
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.processor.ProcessOne(ctx, jobID); err != nil {
			r.logger.Error("Inline processing failed",
				slog.String("job_id", jobID),
				slog.String("error", err.Error()),
			)
		}
	}()
}
