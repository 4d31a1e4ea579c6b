package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"sunsetCompanionAPI/internal/storage"
	"sunsetCompanionAPI/internal/user"
	"sunsetCompanionAPI/utils"
)

type ProfileService struct {
	store   storage.Store
	streaks *StreakService
}

func NewProfileService(store storage.Store, streaks *StreakService) *ProfileService {
	return &ProfileService{store: store, streaks: streaks}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID, now time.Time) (*user.Profile, error) {
	if userID == uuid.Nil {
		return nil, utils.NewNotAuthenticatedError()
	}

	u, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, utils.NewNotFoundError("User not found")
	}
	if err != nil {
		return nil, utils.NewStorageError("Failed to load user", err)
	}

	total, err := s.store.CountSunsetsByUser(ctx, userID)
	if err != nil {
		return nil, utils.NewStorageError("Failed to count sunsets", err)
	}

	status, err := s.streaks.GetStatus(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	return &user.Profile{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Avatar:        u.AvatarURL,
		JoinedAt:      u.CreatedAt,
		TotalSunsets:  total,
		Streak:        status.CurrentStreak,
		LongestStreak: status.LongestStreak,
	}, nil
}
