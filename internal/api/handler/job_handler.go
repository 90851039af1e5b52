package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/api/dto"
	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/jobs"
	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/jobs/domain"
	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/jobs/handlers"
)

// CreateJob handles POST /api/v1/jobs
// Validates the type-specific payload, persists a pending job, and fires
// the triggers. The response returns before any processing happens.
func (h *JobHandler) CreateJob(c *gin.Context) {
	userID := CallerID(c)

	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	jobType := domain.JobType(req.JobType)
	if !jobType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("unknown job type: %s", req.JobType),
		})
		return
	}

	if err := validatePayload(jobType, req.Payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	jobID, err := h.processor.CreateJob(c.Request.Context(), userID, jobType, req.Payload, req.Metadata)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownJobType) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}
		h.logger.Error("Failed to create job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create job",
		})
		return
	}

	h.publishTrigger(c, jobID)
	h.inlineRunner.Run(jobID)

	c.JSON(http.StatusOK, dto.CreateJobResponse{
		JobID:  jobID,
		Status: "processing",
	})
}

// publishTrigger sends the queue trigger. Failures are logged only: the
// inline runner and the poller guarantee the job still gets picked up.
func (h *JobHandler) publishTrigger(c *gin.Context, jobID string) {
	if h.publisher == nil {
		return
	}

	body, err := json.Marshal(jobs.TriggerMessage{JobID: jobID})
	if err != nil {
		h.logger.Error("Failed to marshal trigger message",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := h.publisher.Publish(c.Request.Context(), body, "application/json"); err != nil {
		h.logger.Warn("Failed to publish job trigger",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
	}
}

// GetJob handles GET /api/v1/jobs/:job_id
// Returns a status snapshot of a job owned by the caller.
func (h *JobHandler) GetJob(c *gin.Context) {
	userID := CallerID(c)

	// A non-UUID id can never match a stored job, so skip the lookup.
	jobID := c.Param("job_id")
	if _, err := uuid.Parse(jobID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Job not found",
		})
		return
	}

	job, err := h.processor.GetStatus(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Job not found",
			})
			return
		}
		h.logger.Error("Failed to get job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get job",
		})
		return
	}

	if job.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Job does not belong to caller",
		})
		return
	}

	c.JSON(http.StatusOK, toJobResponse(job))
}

// ListJobs handles GET /api/v1/jobs
// Lists the caller's jobs, filterable by a set of statuses
// (?status=pending&status=processing). Backed by a single indexed query so
// active-job polling stays cheap.
func (h *JobHandler) ListJobs(c *gin.Context) {
	userID := CallerID(c)

	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	statuses := make([]domain.Status, 0, len(req.Statuses))
	for _, raw := range req.Statuses {
		status := domain.Status(strings.ToLower(raw))
		switch status {
		case domain.StatusPending, domain.StatusProcessing, domain.StatusCompleted, domain.StatusFailed:
			statuses = append(statuses, status)
		default:
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("unknown status: %s", raw),
			})
			return
		}
	}

	if req.Limit <= 0 {
		req.Limit = 50
	}
	if req.Limit > 200 {
		req.Limit = 200
	}

	jobList, err := h.jobLister.ListByUser(c.Request.Context(), userID, statuses, req.Limit)
	if err != nil {
		h.logger.Error("Failed to list jobs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list jobs",
		})
		return
	}

	resp := dto.ListJobsResponse{Jobs: make([]dto.JobResponse, len(jobList))}
	for i := range jobList {
		resp.Jobs[i] = toJobResponse(&jobList[i])
	}

	c.JSON(http.StatusOK, resp)
}

// validatePayload binds the payload into the type-specific input struct
// and checks required fields, so malformed jobs are rejected before a row
// is ever created.
func validatePayload(jobType domain.JobType, payload json.RawMessage) error {
	switch jobType {
	case domain.JobTypeResumeParse:
		var p handlers.ResumeParsePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("invalid payload: %v", err)
		}
		if strings.TrimSpace(p.Text) == "" {
			return fmt.Errorf("payload field 'text' is required")
		}

	case domain.JobTypeResumeGenerate:
		var p handlers.ResumeGeneratePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("invalid payload: %v", err)
		}
		if strings.TrimSpace(p.ResumeText) == "" {
			return fmt.Errorf("payload field 'resume_text' is required")
		}
		if strings.TrimSpace(p.JobDescription) == "" {
			return fmt.Errorf("payload field 'job_description' is required")
		}

	case domain.JobTypeCoverLetterGenerate:
		var p handlers.CoverLetterPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("invalid payload: %v", err)
		}
		if strings.TrimSpace(p.ResumeText) == "" {
			return fmt.Errorf("payload field 'resume_text' is required")
		}
		if strings.TrimSpace(p.JobDescription) == "" {
			return fmt.Errorf("payload field 'job_description' is required")
		}
	}

	return nil
}

func toJobResponse(job *domain.Job) dto.JobResponse {
	resp := dto.JobResponse{
		JobID:     job.ID,
		UserID:    job.UserID,
		JobType:   string(job.Type),
		Status:    string(job.Status),
		Result:    job.Result,
		Metadata:  job.Metadata,
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
	}

	if job.ErrorMessage != nil {
		resp.ErrorMessage = *job.ErrorMessage
	}
	if job.StartedAt != nil {
		resp.StartedAt = job.StartedAt.Format(time.RFC3339)
	}
	if job.CompletedAt != nil {
		resp.CompletedAt = job.CompletedAt.Format(time.RFC3339)
	}

	return resp
}
