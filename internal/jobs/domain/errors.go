package domain

import "errors"

var (
	// ErrJobNotFound is returned when a job cannot be found in the database
	ErrJobNotFound = errors.New("job not found")

	// ErrJobAlreadyClaimed is returned when attempting to claim a job that's not in pending status
	ErrJobAlreadyClaimed = errors.New("job already claimed or not in pending status")

	// ErrInvalidTransition is returned when completing or failing a job that's not in processing status
	ErrInvalidTransition = errors.New("job is not in processing status")

	// ErrUnknownJobType is returned at creation time for a job type with no registered handler
	ErrUnknownJobType = errors.New("unknown job type")

	// ErrInvalidPayload is returned when a job payload is malformed
	ErrInvalidPayload = errors.New("invalid job payload")
)
