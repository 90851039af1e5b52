package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/jobs/domain"
)

const jobColumns = `job_id, user_id, job_type, payload, status, result,
		error_message, metadata, created_at, started_at, completed_at, updated_at`

// Storage persists job records. It is the only component that touches the
// jobs table; all status transitions go through conditional updates so that
// concurrent callers can never double-claim or double-complete a job.
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new pending job and returns its id.
func (s *Storage) Create(ctx context.Context, userID string, jobType domain.JobType, payload, metadata json.RawMessage) (string, error) {
	query := `
		INSERT INTO jobs (
			job_id, user_id, job_type, payload, status, metadata, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW(), NOW()
		)
	`

	jobID := uuid.New().String()
	_, err := s.db.ExecContext(ctx, query, jobID, userID, jobType, payload, domain.StatusPending, metadata)
	if err != nil {
		return "", fmt.Errorf("failed to create job: %w", err)
	}

	s.logger.Info("Job created",
		slog.String("job_id", jobID),
		slog.String("job_type", string(jobType)),
		slog.String("user_id", userID),
	)

	return jobID, nil
}

// Get retrieves a job by its id.
func (s *Storage) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE job_id = $1`

	var job domain.Job
	err := s.db.GetContext(ctx, &job, query, jobID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

// Claim attempts to transition a single job from pending to processing.
// The conditional update is the source of truth for execution rights: when
// two triggers race, exactly one caller gets the job back and the other
// gets ErrJobAlreadyClaimed.
func (s *Storage) Claim(ctx context.Context, jobID string) (*domain.Job, error) {
	query := `
		UPDATE jobs
		SET status = $1,
		    started_at = NOW(),
		    updated_at = NOW()
		WHERE job_id = $2
		  AND status = $3
		RETURNING ` + jobColumns

	var job domain.Job
	err := s.db.GetContext(ctx, &job, query, domain.StatusProcessing, jobID, domain.StatusPending)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrJobAlreadyClaimed
		}
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}

	s.logger.Info("Job claimed",
		slog.String("job_id", jobID),
		slog.String("job_type", string(job.Type)),
	)

	return &job, nil
}

// ClaimBatch selects up to limit pending jobs oldest-first and atomically
// transitions them to processing. FOR UPDATE SKIP LOCKED keeps concurrent
// batch claimers from ever returning overlapping jobs.
func (s *Storage) ClaimBatch(ctx context.Context, limit int) ([]domain.Job, error) {
	query := `
		UPDATE jobs
		SET status = $1,
		    started_at = NOW(),
		    updated_at = NOW()
		WHERE job_id IN (
			SELECT job_id FROM jobs
			WHERE status = $2
			ORDER BY created_at ASC
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + jobColumns

	var jobs []domain.Job
	err := s.db.SelectContext(ctx, &jobs, query, domain.StatusProcessing, domain.StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim batch: %w", err)
	}

	if len(jobs) > 0 {
		s.logger.Info("Claimed pending jobs",
			slog.Int("count", len(jobs)),
		)
	}

	return jobs, nil
}

// Complete records a successful terminal transition. The job must be in
// processing status; anything else is an invariant violation.
func (s *Storage) Complete(ctx context.Context, jobID string, result json.RawMessage) error {
	query := `
		UPDATE jobs
		SET status = $1,
		    result = $2,
		    completed_at = NOW(),
		    updated_at = NOW()
		WHERE job_id = $3
		  AND status = $4
	`

	return s.finish(ctx, jobID, domain.StatusCompleted, query, domain.StatusCompleted, result, jobID, domain.StatusProcessing)
}

// Fail records a failed terminal transition with a human-readable message.
func (s *Storage) Fail(ctx context.Context, jobID string, errorMsg string) error {
	query := `
		UPDATE jobs
		SET status = $1,
		    error_message = $2,
		    completed_at = NOW(),
		    updated_at = NOW()
		WHERE job_id = $3
		  AND status = $4
	`

	return s.finish(ctx, jobID, domain.StatusFailed, query, domain.StatusFailed, errorMsg, jobID, domain.StatusProcessing)
}

func (s *Storage) finish(ctx context.Context, jobID string, status domain.Status, query string, args ...interface{}) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		s.logger.Error("Terminal transition rejected - job not in processing status",
			slog.String("job_id", jobID),
			slog.String("target_status", string(status)),
		)
		return domain.ErrInvalidTransition
	}

	s.logger.Info("Job status updated",
		slog.String("job_id", jobID),
		slog.String("status", string(status)),
	)

	return nil
}

// ListByUser returns the caller's jobs filtered by status set, newest first.
// Backed by the (user_id, status) index so the active-job tracker can poll
// it cheaply.
func (s *Storage) ListByUser(ctx context.Context, userID string, statuses []domain.Status, limit int) ([]domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE user_id = $1`
	args := []interface{}{userID}
	argIdx := 2

	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, st := range statuses {
			values[i] = string(st)
		}
		query += fmt.Sprintf(" AND status = ANY($%d)", argIdx)
		args = append(args, pq.Array(values))
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, limit)
	}

	var jobs []domain.Job
	if err := s.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}

// FailStale fails jobs stuck in processing longer than threshold. Recovers
// rows orphaned by a crash between claim and terminal transition.
func (s *Storage) FailStale(ctx context.Context, threshold time.Duration) (int, error) {
	query := `
		UPDATE jobs
		SET status = $1,
		    error_message = $2,
		    completed_at = NOW(),
		    updated_at = NOW()
		WHERE status = $3
		  AND started_at < NOW() - ($4 * INTERVAL '1 second')
	`

	result, err := s.db.ExecContext(ctx, query,
		domain.StatusFailed,
		fmt.Sprintf("processing exceeded %s, marked stale", threshold),
		domain.StatusProcessing,
		int(threshold.Seconds()),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep stale jobs: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected > 0 {
		s.logger.Warn("Swept stale processing jobs",
			slog.Int64("count", rowsAffected),
			slog.Duration("threshold", threshold),
		)
	}

	return int(rowsAffected), nil
}
