package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/jobs/domain"
)

type recordedNotification struct {
	userID           string
	title            string
	message          string
	notificationType NotificationType
	metadata         json.RawMessage
}

type fakeNotificationStore struct {
	created []recordedNotification
	err     error
}

func (s *fakeNotificationStore) Create(ctx context.Context, userID, title, message string, notificationType NotificationType, metadata json.RawMessage) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.created = append(s.created, recordedNotification{
		userID:           userID,
		title:            title,
		message:          message,
		notificationType: notificationType,
		metadata:         metadata,
	})
	return uuid.New().String(), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func completedJob(jobType domain.JobType) *domain.Job {
	return &domain.Job{
		ID:     uuid.New().String(),
		UserID: "user-1",
		Type:   jobType,
		Status: domain.StatusCompleted,
	}
}

func TestEmitter_CompletedJob(t *testing.T) {
	store := &fakeNotificationStore{}
	emitter := NewEmitter(store, discardLogger())

	job := completedJob(domain.JobTypeResumeGenerate)
	emitter.JobTerminal(context.Background(), job)

	require.Len(t, store.created, 1)
	created := store.created[0]

	assert.Equal(t, "user-1", created.userID)
	assert.Equal(t, "Tailored resume ready", created.title)
	assert.Equal(t, "Your tailored resume finished and is ready to view.", created.message)
	assert.Equal(t, NotificationTypeJobCompleted, created.notificationType)

	var metadata map[string]string
	require.NoError(t, json.Unmarshal(created.metadata, &metadata))
	assert.Equal(t, job.ID, metadata["job_id"])
	assert.Equal(t, "resume_generate", metadata["job_type"])
}

func TestEmitter_FailedJob(t *testing.T) {
	store := &fakeNotificationStore{}
	emitter := NewEmitter(store, discardLogger())

	errMsg := "rate limit exceeded"
	job := completedJob(domain.JobTypeCoverLetterGenerate)
	job.Status = domain.StatusFailed
	job.ErrorMessage = &errMsg

	emitter.JobTerminal(context.Background(), job)

	require.Len(t, store.created, 1)
	created := store.created[0]

	assert.Equal(t, "Cover letter failed", created.title)
	assert.Equal(t, "Your cover letter could not be completed: rate limit exceeded", created.message)
	assert.Equal(t, NotificationTypeJobFailed, created.notificationType)
}

func TestEmitter_FailedJobWithoutErrorMessage(t *testing.T) {
	store := &fakeNotificationStore{}
	emitter := NewEmitter(store, discardLogger())

	job := completedJob(domain.JobTypeResumeParse)
	job.Status = domain.StatusFailed

	emitter.JobTerminal(context.Background(), job)

	require.Len(t, store.created, 1)
	assert.Equal(t, "Resume analysis failed", store.created[0].title)
	assert.Contains(t, store.created[0].message, "an unexpected error occurred")
}

func TestEmitter_SkipsNonTerminalJob(t *testing.T) {
	store := &fakeNotificationStore{}
	emitter := NewEmitter(store, discardLogger())

	job := completedJob(domain.JobTypeResumeParse)
	job.Status = domain.StatusProcessing

	emitter.JobTerminal(context.Background(), job)

	assert.Empty(t, store.created)
}

func TestEmitter_StoreErrorIsSwallowed(t *testing.T) {
	store := &fakeNotificationStore{err: errors.New("connection refused")}
	emitter := NewEmitter(store, discardLogger())

	// Must not panic or propagate; notification delivery is best-effort.
	emitter.JobTerminal(context.Background(), completedJob(domain.JobTypeResumeParse))

	assert.Empty(t, store.created)
}

func TestDescribeSubjects(t *testing.T) {
	tests := []struct {
		jobType domain.JobType
		title   string
	}{
		{domain.JobTypeResumeParse, "Resume analysis ready"},
		{domain.JobTypeResumeGenerate, "Tailored resume ready"},
		{domain.JobTypeCoverLetterGenerate, "Cover letter ready"},
		{domain.JobType("unknown"), "Background task ready"},
	}

	for _, tt := range tests {
		t.Run(string(tt.jobType), func(t *testing.T) {
			title, _, notificationType := describe(completedJob(tt.jobType))
			assert.Equal(t, tt.title, title)
			assert.Equal(t, NotificationTypeJobCompleted, notificationType)
		})
	}
}
