package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"sunsetCompanionAPI/internal/notification"
)

func (s *Store) UpsertDeviceToken(ctx context.Context, t *notification.DeviceToken) error {
	query := `
	INSERT INTO device_tokens (token, user_id, platform, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (token) DO UPDATE
	SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform, updated_at = EXCLUDED.updated_at`

	if _, err := s.db.Exec(ctx, query, t.Token, t.UserID, t.Platform, t.CreatedAt, t.UpdatedAt); err != nil {
		return fmt.Errorf("failed to register device token: %w", err)
	}
	return nil
}

func (s *Store) ListDeviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	query := `
	SELECT token, user_id, platform, created_at, updated_at
	FROM device_tokens
	WHERE user_id = $1
	ORDER BY updated_at DESC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list device tokens: %w", err)
	}
	defer rows.Close()

	tokens := []notification.DeviceToken{}
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.UserID, &t.Platform, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
