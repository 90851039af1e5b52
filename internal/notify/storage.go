package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Storage persists notification records.
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// Create inserts a notification and returns its id.
func (s *Storage) Create(ctx context.Context, userID, title, message string, notificationType NotificationType, metadata json.RawMessage) (string, error) {
	query := `
		INSERT INTO notifications (
			notification_id, user_id, title, message, notification_type, read, metadata, created_at
		) VALUES (
			$1, $2, $3, $4, $5, FALSE, $6, NOW()
		)
	`

	notificationID := uuid.New().String()
	_, err := s.db.ExecContext(ctx, query, notificationID, userID, title, message, notificationType, metadata)
	if err != nil {
		return "", fmt.Errorf("failed to create notification: %w", err)
	}

	return notificationID, nil
}

// ListByUser returns the caller's notifications, newest first.
func (s *Storage) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]Notification, error) {
	query := `
		SELECT notification_id, user_id, title, message, notification_type, read, metadata, created_at
		FROM notifications
		WHERE user_id = $1
	`
	args := []interface{}{userID}
	argIdx := 2

	if unreadOnly {
		query += " AND read = FALSE"
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, limit)
	}

	var notifications []Notification
	if err := s.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead flips the read flag for the given ids, scoped to the caller so
// one user cannot mark another's notifications.
func (s *Storage) MarkRead(ctx context.Context, userID string, notificationIDs []string) (int, error) {
	if len(notificationIDs) == 0 {
		return 0, nil
	}

	query := `
		UPDATE notifications
		SET read = TRUE
		WHERE user_id = $1
		  AND notification_id = ANY($2)
	`

	result, err := s.db.ExecContext(ctx, query, userID, pq.Array(notificationIDs))
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}
