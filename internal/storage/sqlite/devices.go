package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"sunsetCompanionAPI/internal/notification"
)

func (s *Store) UpsertDeviceToken(ctx context.Context, t *notification.DeviceToken) error {
	query := `
	INSERT INTO device_tokens (token, user_id, platform, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(token) DO UPDATE
	SET user_id = excluded.user_id, platform = excluded.platform, updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query, t.Token, t.UserID, t.Platform, micro(t.CreatedAt), micro(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to register device token: %w", err)
	}
	return nil
}

func (s *Store) ListDeviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	query := `
	SELECT token, user_id, platform, created_at, updated_at
	FROM device_tokens
	WHERE user_id = ?
	ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list device tokens: %w", err)
	}
	defer rows.Close()

	tokens := []notification.DeviceToken{}
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.UserID, &t.Platform, microTime{&t.CreatedAt}, microTime{&t.UpdatedAt}); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
