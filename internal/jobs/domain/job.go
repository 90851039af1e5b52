package domain

import (
	"encoding/json"
	"time"
)

// JobType identifies the kind of work a job performs. The set is closed:
// dispatch happens through typed constants, not free-form strings.
type JobType string

const (
	JobTypeResumeParse         JobType = "resume_parse"
	JobTypeResumeGenerate      JobType = "resume_generate"
	JobTypeCoverLetterGenerate JobType = "cover_letter_generate"
)

// Valid reports whether t is one of the known job types.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeResumeParse, JobTypeResumeGenerate, JobTypeCoverLetterGenerate:
		return true
	default:
		return false
	}
}

// Status is the lifecycle state of a job.
type Status string

// Terminal reports whether no further transitions are permitted.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is the unit of asynchronous work. Status, StartedAt, CompletedAt,
// Result and ErrorMessage are written exclusively through the store's
// claim/complete/fail operations.
type Job struct {
	ID           string          `db:"job_id"`
	UserID       string          `db:"user_id"`
	Type         JobType         `db:"job_type"`
	Status       Status          `db:"status"`
	Payload      json.RawMessage `db:"payload"`
	Result       json.RawMessage `db:"result"`
	ErrorMessage *string         `db:"error_message"`
	Metadata     json.RawMessage `db:"metadata"`
	CreatedAt    time.Time       `db:"created_at"`
	StartedAt    *time.Time      `db:"started_at"`
	CompletedAt  *time.Time      `db:"completed_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}
