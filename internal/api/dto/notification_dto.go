package dto

import "encoding/json"

type ListNotificationsRequest struct {
	UnreadOnly bool `form:"unread_only"`
	Limit      int  `form:"limit"`
}

type NotificationResponse struct {
	NotificationID string          `json:"notification_id"`
	Title          string          `json:"title"`
	Message        string          `json:"message"`
	Type           string          `json:"type"`
	Read           bool            `json:"read"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	CreatedAt      string          `json:"created_at"`
}

type ListNotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}

type MarkReadRequest struct {
	NotificationIDs []string `json:"notification_ids" binding:"required"`
}

type MarkReadResponse struct {
	Updated int `json:"updated"`
}
