package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"sunsetCompanionAPI/internal/storage"
	"sunsetCompanionAPI/internal/streak"
	"sunsetCompanionAPI/utils"
)

type StreakService struct {
	store    storage.Store
	cal      streak.Calendar
	notifier utils.NotificationCreator
}

func NewStreakService(store storage.Store, cal streak.Calendar, notifier utils.NotificationCreator) *StreakService {
	return &StreakService{store: store, cal: cal, notifier: notifier}
}

func (s *StreakService) Calendar() streak.Calendar {
	return s.cal
}

// HasLoggedToday reports whether userID created a sunset between local
// midnight and now.
func (s *StreakService) HasLoggedToday(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error) {
	if userID == uuid.Nil {
		return false, utils.NewNotAuthenticatedError()
	}
	return s.loggedToday(ctx, s.store, userID, now)
}

func (s *StreakService) loggedToday(ctx context.Context, q storage.Queries, userID uuid.UUID, now time.Time) (bool, error) {
	logged, err := q.HasSunsetSince(ctx, userID, s.cal.StartOfDay(now), now)
	if err != nil {
		return false, utils.NewStorageError("Failed to check today's sunset", err)
	}
	return logged, nil
}

// RecordQualifyingPost advances the streak inside the caller's transaction.
// A concurrent advance for the same user makes the conditional write miss,
// which is reported as a duplicate post.
func (s *StreakService) RecordQualifyingPost(ctx context.Context, tx storage.Tx, userID uuid.UUID, now time.Time) (*streak.Streak, streak.Transition, error) {
	if userID == uuid.Nil {
		return nil, "", utils.NewNotAuthenticatedError()
	}

	prev, err := tx.GetStreak(ctx, userID)
	if err != nil {
		return nil, "", utils.NewStorageError("Failed to load streak", err)
	}

	// stored timestamps carry microseconds
	next, transition := streak.Advance(prev, userID, now.Truncate(time.Microsecond), s.cal)

	var written bool
	if prev == nil {
		written, err = tx.InsertStreak(ctx, &next)
	} else {
		written, err = tx.SwapStreak(ctx, prev.UpdatedAt, &next)
	}
	if err != nil {
		return nil, "", utils.NewStorageError("Failed to save streak", err)
	}
	if !written {
		return nil, "", utils.NewDuplicatePostError()
	}

	return &next, transition, nil
}

// afterCommit records metrics and queues a milestone push for a committed
// transition.
func (s *StreakService) afterCommit(ctx context.Context, st *streak.Streak, transition streak.Transition) {
	recordTransition(transition)
	if transition == streak.TransitionStarted || transition == streak.TransitionExtended {
		if utils.StreakMilestoneReached(ctx, s.notifier, st.UserID, st.CurrentStreak) {
			log.Printf("Streak: user %s reached %d days", st.UserID, st.CurrentStreak)
		}
	}
}

func (s *StreakService) GetStatus(ctx context.Context, userID uuid.UUID, now time.Time) (*streak.Status, error) {
	if userID == uuid.Nil {
		return nil, utils.NewNotAuthenticatedError()
	}

	st, err := s.store.GetStreak(ctx, userID)
	if err != nil {
		return nil, utils.NewStorageError("Failed to load streak", err)
	}

	logged, err := s.loggedToday(ctx, s.store, userID, now)
	if err != nil {
		return nil, err
	}

	status := &streak.Status{LoggedToday: logged}
	if st != nil {
		status.CurrentStreak = st.Effective(now, s.cal)
		status.LongestStreak = st.LongestStreak
		updated := st.UpdatedAt
		status.LastUpdated = &updated
	}
	return status, nil
}

func (s *StreakService) GetStreak(ctx context.Context, userID uuid.UUID, now time.Time) (*streak.Summary, error) {
	if userID == uuid.Nil {
		return nil, utils.NewNotAuthenticatedError()
	}

	st, err := s.store.GetStreak(ctx, userID)
	if err != nil {
		return nil, utils.NewStorageError("Failed to load streak", err)
	}

	summary := &streak.Summary{}
	if st != nil {
		summary.Count = st.Effective(now, s.cal)
		updated := st.UpdatedAt
		summary.LastUpdated = &updated
	}
	return summary, nil
}

// requireUser rejects a session whose account no longer exists.
func (s *StreakService) requireUser(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return utils.NewNotAuthenticatedError()
	}
	_, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return utils.NewNotAuthenticatedError()
	}
	if err != nil {
		return utils.NewStorageError("Failed to load user", err)
	}
	return nil
}

// Increment is a check-in without a photo. It counts once per day and is
// refused when a sunset was already logged today.
func (s *StreakService) Increment(ctx context.Context, userID uuid.UUID, now time.Time) (*streak.IncrementResponse, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	var (
		next       *streak.Streak
		transition streak.Transition
	)
	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		logged, err := s.loggedToday(ctx, tx, userID, now)
		if err != nil {
			return err
		}
		if logged {
			return utils.NewDuplicatePostError()
		}

		prev, err := tx.GetStreak(ctx, userID)
		if err != nil {
			return utils.NewStorageError("Failed to load streak", err)
		}
		if prev.AdvancedOn(now, s.cal) {
			return utils.NewDuplicatePostError()
		}

		next, transition, err = s.RecordQualifyingPost(ctx, tx, userID, now)
		return err
	})
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrDuplicatePost) {
			duplicatePosts.WithLabelValues("increment").Inc()
			return nil, err
		}
		if _, ok := utils.AsAppError(err); ok {
			return nil, err
		}
		return nil, utils.NewStorageError("Failed to update streak", err)
	}

	s.afterCommit(ctx, next, transition)
	return &streak.IncrementResponse{Success: true, Count: next.CurrentStreak}, nil
}
