package domain

// Job status constants
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ActiveStatuses is the set of non-terminal states the client tracker
// polls for.
var ActiveStatuses = []Status{StatusPending, StatusProcessing}
