package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobType_Valid(t *testing.T) {
	tests := []struct {
		jobType JobType
		valid   bool
	}{
		{JobTypeResumeParse, true},
		{JobTypeResumeGenerate, true},
		{JobTypeCoverLetterGenerate, true},
		{JobType("resume_parse "), false},
		{JobType("mystery"), false},
		{JobType(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.jobType), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.jobType.Valid())
		})
	}
}

func TestStatus_Terminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
}

func TestActiveStatuses(t *testing.T) {
	assert.Equal(t, []Status{StatusPending, StatusProcessing}, ActiveStatuses)
	for _, status := range ActiveStatuses {
		assert.False(t, status.Terminal())
	}
}
