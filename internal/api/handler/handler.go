package handler

import (
	"context"
	"log/slog"

	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/jobs"
	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/jobs/domain"
	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/notify"
)

// TriggerPublisher publishes the post-create job trigger to the queue.
// Nil when the deployment has no broker; publishing is best-effort either
// way because the inline runner and the poller pick the job up regardless.
type TriggerPublisher interface {
	Publish(ctx context.Context, body []byte, contentType string) error
}

// NotificationStore is the notification surface the API reads and flips.
type NotificationStore interface {
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]notify.Notification, error)
	MarkRead(ctx context.Context, userID string, notificationIDs []string) (int, error)
}

// JobLister lists the caller's jobs, filterable by status set.
type JobLister interface {
	ListByUser(ctx context.Context, userID string, statuses []domain.Status, limit int) ([]domain.Job, error)
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger        *slog.Logger
	Processor     *jobs.Processor
	InlineRunner  *jobs.InlineRunner
	Watcher       *jobs.Watcher
	JobLister     JobLister
	Publisher     TriggerPublisher
	Notifications NotificationStore
}

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	logger       *slog.Logger
	processor    *jobs.Processor
	inlineRunner *jobs.InlineRunner
	watcher      *jobs.Watcher
	jobLister    JobLister
	publisher    TriggerPublisher
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger:       deps.Logger,
		processor:    deps.Processor,
		inlineRunner: deps.InlineRunner,
		watcher:      deps.Watcher,
		jobLister:    deps.JobLister,
		publisher:    deps.Publisher,
	}
}

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	logger        *slog.Logger
	notifications NotificationStore
}

// NewNotificationHandler creates a new NotificationHandler instance
func NewNotificationHandler(deps *Dependencies) *NotificationHandler {
	return &NotificationHandler{
		logger:        deps.Logger,
		notifications: deps.Notifications,
	}
}
