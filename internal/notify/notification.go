package notify

import (
	"encoding/json"
	"time"
)

// NotificationType classifies a notification for client rendering.
type NotificationType string

const (
	NotificationTypeJobCompleted NotificationType = "job_completed"
	NotificationTypeJobFailed    NotificationType = "job_failed"
)

// Notification is a one-way, user-visible event record derived from a
// job's terminal transition. Only the read flag is mutable afterwards.
type Notification struct {
	ID        string           `db:"notification_id"`
	UserID    string           `db:"user_id"`
	Title     string           `db:"title"`
	Message   string           `db:"message"`
	Type      NotificationType `db:"notification_type"`
	Read      bool             `db:"read"`
	Metadata  json.RawMessage  `db:"metadata"`
	CreatedAt time.Time        `db:"created_at"`
}
