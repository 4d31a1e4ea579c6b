package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"sunsetCompanionAPI/internal/storage"
	"sunsetCompanionAPI/internal/streak"
	"sunsetCompanionAPI/internal/sunset"
	"sunsetCompanionAPI/utils"
)

const (
	maxCaptionLen  = 500
	maxLocationLen = 200
	maxCommentLen  = 1000
)

type SunsetService struct {
	store   storage.Store
	streaks *StreakService
}

func NewSunsetService(store storage.Store, streaks *StreakService) *SunsetService {
	return &SunsetService{store: store, streaks: streaks}
}

// CreateSunset stores a sunset and advances the author's streak in one
// transaction. Only the first sunset of a calendar day is accepted.
func (s *SunsetService) CreateSunset(ctx context.Context, userID uuid.UUID, req *sunset.CreateSunsetRequest, now time.Time) (*sunset.CreateSunsetResponse, error) {
	if userID == uuid.Nil {
		return nil, utils.NewNotAuthenticatedError()
	}

	post, err := newSunset(userID, req, now.Truncate(time.Microsecond))
	if err != nil {
		return nil, err
	}
	if err := s.streaks.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	var (
		next       *streak.Streak
		transition streak.Transition
	)
	err = s.store.InTx(ctx, func(tx storage.Tx) error {
		logged, err := s.streaks.loggedToday(ctx, tx, userID, post.CreatedAt)
		if err != nil {
			return err
		}
		if logged {
			return utils.NewDuplicatePostError()
		}

		if err := tx.InsertSunset(ctx, post); err != nil {
			return utils.NewStorageError("Failed to save sunset", err)
		}

		next, transition, err = s.streaks.RecordQualifyingPost(ctx, tx, userID, post.CreatedAt)
		return err
	})
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrDuplicatePost) {
			duplicatePosts.WithLabelValues("sunset").Inc()
			return nil, err
		}
		if _, ok := utils.AsAppError(err); ok {
			return nil, err
		}
		return nil, utils.NewStorageError("Failed to save sunset", err)
	}

	sunsetsCreated.Inc()
	s.streaks.afterCommit(ctx, next, transition)

	created, err := s.store.GetSunset(ctx, post.ID)
	if err != nil {
		// committed already; answer with what was written
		created = post
	}

	updated := next.UpdatedAt
	return &sunset.CreateSunsetResponse{
		Sunset: created,
		Streak: &streak.Summary{Count: next.CurrentStreak, LastUpdated: &updated},
	}, nil
}

func newSunset(userID uuid.UUID, req *sunset.CreateSunsetRequest, now time.Time) (*sunset.Sunset, error) {
	imageURL := strings.TrimSpace(req.ImageURL)
	if imageURL == "" {
		return nil, utils.NewValidationError("Image URL is required")
	}

	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return nil, utils.NewValidationError("Rating must be between 1 and 5")
	}

	caption := trimOptional(req.Caption)
	if caption != nil && utf8.RuneCountInString(*caption) > maxCaptionLen {
		return nil, utils.NewValidationError("Caption is too long")
	}

	location := trimOptional(req.Location)
	if location != nil && utf8.RuneCountInString(*location) > maxLocationLen {
		return nil, utils.NewValidationError("Location is too long")
	}

	visibility, ok := sunset.ParseVisibility(strings.ToLower(strings.TrimSpace(req.Visibility)))
	if !ok {
		return nil, utils.NewValidationError("Visibility must be public or private")
	}

	return &sunset.Sunset{
		ID:         uuid.New(),
		UserID:     userID,
		ImageURL:   imageURL,
		Caption:    caption,
		Location:   location,
		Rating:     req.Rating,
		Visibility: visibility,
		CreatedAt:  now,
		Likes:      []sunset.Like{},
		Comments:   []sunset.Comment{},
	}, nil
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// visibleSunset loads id and hides private sunsets from everyone but the owner.
func visibleSunset(ctx context.Context, store storage.SunsetStore, viewerID, id uuid.UUID) (*sunset.Sunset, error) {
	out, err := store.GetSunset(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, utils.NewNotFoundError("Sunset not found")
	}
	if err != nil {
		return nil, utils.NewStorageError("Failed to load sunset", err)
	}
	if !out.VisibleTo(viewerID) {
		return nil, utils.NewNotFoundError("Sunset not found")
	}
	return out, nil
}

// DeleteSunset removes a sunset owned by userID. The streak is left as is.
func (s *SunsetService) DeleteSunset(ctx context.Context, userID, id uuid.UUID) error {
	if userID == uuid.Nil {
		return utils.NewNotAuthenticatedError()
	}

	existing, err := s.store.GetSunset(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return utils.NewNotFoundError("Sunset not found")
	}
	if err != nil {
		return utils.NewStorageError("Failed to load sunset", err)
	}
	if existing.UserID != userID {
		return utils.NewForbiddenError()
	}

	err = s.store.DeleteSunset(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return utils.NewNotFoundError("Sunset not found")
	}
	if err != nil {
		return utils.NewStorageError("Failed to delete sunset", err)
	}
	return nil
}

func (s *SunsetService) ToggleLike(ctx context.Context, userID, id uuid.UUID, now time.Time) (*sunset.LikeState, error) {
	if userID == uuid.Nil {
		return nil, utils.NewNotAuthenticatedError()
	}
	if _, err := visibleSunset(ctx, s.store, userID, id); err != nil {
		return nil, err
	}

	liked, count, err := s.store.ToggleLike(ctx, userID, id, now.Truncate(time.Microsecond))
	if err != nil {
		return nil, utils.NewStorageError("Failed to update like", err)
	}
	return &sunset.LikeState{Liked: liked, LikeCount: count}, nil
}

func (s *SunsetService) AddComment(ctx context.Context, userID, id uuid.UUID, body string, now time.Time) (*sunset.Comment, error) {
	if userID == uuid.Nil {
		return nil, utils.NewNotAuthenticatedError()
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, utils.NewValidationError("Comment cannot be empty")
	}
	if utf8.RuneCountInString(body) > maxCommentLen {
		return nil, utils.NewValidationError("Comment is too long")
	}

	if _, err := visibleSunset(ctx, s.store, userID, id); err != nil {
		return nil, err
	}

	c := &sunset.Comment{
		ID:        uuid.New(),
		SunsetID:  id,
		UserID:    userID,
		Body:      body,
		CreatedAt: now.Truncate(time.Microsecond),
	}
	if err := s.store.InsertComment(ctx, c); err != nil {
		return nil, utils.NewStorageError("Failed to save comment", err)
	}

	if author, err := s.store.GetUserByID(ctx, userID); err == nil {
		c.User = &sunset.Author{ID: author.ID, Name: author.Name, Email: author.Email, Avatar: author.AvatarURL}
	}
	return c, nil
}
