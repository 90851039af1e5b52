package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/jobs/domain"
	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/metrics"
)

// Store is the persistence contract the emitter writes through.
type Store interface {
	Create(ctx context.Context, userID, title, message string, notificationType NotificationType, metadata json.RawMessage) (string, error)
}

// Emitter writes user-visible notification records for terminal job
// transitions. Delivery is best-effort: a failed write is logged and never
// rolls back the job's terminal state.
type Emitter struct {
	store  Store
	logger *slog.Logger
}

// NewEmitter creates an emitter instance
func NewEmitter(store Store, logger *slog.Logger) *Emitter {
	return &Emitter{
		store:  store,
		logger: logger,
	}
}

// JobTerminal builds and persists the notification for a job that reached
// completed or failed status.
func (e *Emitter) JobTerminal(ctx context.Context, job *domain.Job) {
	if !job.Status.Terminal() {
		e.logger.Error("Notification requested for non-terminal job",
			slog.String("job_id", job.ID),
			slog.String("status", string(job.Status)),
		)
		return
	}

	title, message, notificationType := describe(job)

	metadata, err := json.Marshal(map[string]string{
		"job_id":   job.ID,
		"job_type": string(job.Type),
	})
	if err != nil {
		e.logger.Error("Failed to build notification metadata",
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	notificationID, err := e.store.Create(ctx, job.UserID, title, message, notificationType, metadata)
	if err != nil {
		e.logger.Error("Failed to write notification",
			slog.String("job_id", job.ID),
			slog.String("user_id", job.UserID),
			slog.String("error", err.Error()),
		)
		return
	}

	metrics.NotificationsEmittedTotal.Inc()
	e.logger.Info("Notification written",
		slog.String("notification_id", notificationID),
		slog.String("job_id", job.ID),
		slog.String("type", string(notificationType)),
	)
}

// describe maps a terminal job to a user-facing title and message.
func describe(job *domain.Job) (title, message string, notificationType NotificationType) {
	subject := subjectFor(job.Type)

	if job.Status == domain.StatusCompleted {
		return subject + " ready",
			fmt.Sprintf("Your %s finished and is ready to view.", subjectLower(job.Type)),
			NotificationTypeJobCompleted
	}

	reason := "an unexpected error occurred"
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		reason = *job.ErrorMessage
	}

	return subject + " failed",
		fmt.Sprintf("Your %s could not be completed: %s", subjectLower(job.Type), reason),
		NotificationTypeJobFailed
}

func subjectFor(jobType domain.JobType) string {
	switch jobType {
	case domain.JobTypeResumeParse:
		return "Resume analysis"
	case domain.JobTypeResumeGenerate:
		return "Tailored resume"
	case domain.JobTypeCoverLetterGenerate:
		return "Cover letter"
	default:
		return "Background task"
	}
}

func subjectLower(jobType domain.JobType) string {
	switch jobType {
	case domain.JobTypeResumeParse:
		return "resume analysis"
	case domain.JobTypeResumeGenerate:
		return "tailored resume"
	case domain.JobTypeCoverLetterGenerate:
		return "cover letter"
	default:
		return "background task"
	}
}
