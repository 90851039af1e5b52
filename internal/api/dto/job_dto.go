package dto

import "encoding/json"

type CreateJobRequest struct {
	JobType  string          `json:"job_type" binding:"required"`
	Payload  json.RawMessage `json:"payload" binding:"required"`
	Metadata json.RawMessage `json:"metadata"`
}

// CreateJobResponse is returned immediately; callers poll the status
// endpoint for the outcome.
type CreateJobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

type JobResponse struct {
	JobID        string          `json:"job_id"`
	UserID       string          `json:"user_id"`
	JobType      string          `json:"job_type"`
	Status       string          `json:"status"`
	Result       json.RawMessage `json:"result,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	CreatedAt    string          `json:"created_at"`
	StartedAt    string          `json:"started_at,omitempty"`
	CompletedAt  string          `json:"completed_at,omitempty"`
}

type ListJobsRequest struct {
	Statuses []string `form:"status"`
	Limit    int      `form:"limit"`
}

type ListJobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}
