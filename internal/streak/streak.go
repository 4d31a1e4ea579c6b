package streak

import (
	"time"

	"github.com/google/uuid"
)

type Streak struct {
	UserID        uuid.UUID `json:"userId" db:"user_id"`
	CurrentStreak int       `json:"currentStreak" db:"current_streak"`
	LongestStreak int       `json:"longestStreak" db:"longest_streak"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// Transition names the state change Advance applied.
type Transition string

const (
	TransitionStarted   Transition = "started"
	TransitionExtended  Transition = "extended"
	TransitionReset     Transition = "reset"
	TransitionUnchanged Transition = "unchanged"
)

// Advance computes the streak after a qualifying post at now.
// prev is nil when the user has no streak record yet. The returned streak
// always carries UpdatedAt = now, including the unchanged case.
func Advance(prev *Streak, userID uuid.UUID, now time.Time, cal Calendar) (Streak, Transition) {
	if prev == nil {
		return Streak{
			UserID:        userID,
			CurrentStreak: 1,
			LongestStreak: 1,
			CreatedAt:     now,
			UpdatedAt:     now,
		}, TransitionStarted
	}

	next := *prev
	next.UpdatedAt = now

	var transition Transition
	switch gap := cal.DayGap(prev.UpdatedAt, now); {
	case gap <= 0:
		// gap < 0 only happens with clock skew between writers
		transition = TransitionUnchanged
	case gap == 1:
		next.CurrentStreak++
		transition = TransitionExtended
	default:
		next.CurrentStreak = 1
		transition = TransitionReset
	}

	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}

	return next, transition
}

// Effective returns the count to report at now. A streak whose last
// qualifying day is older than yesterday is already broken.
func (s *Streak) Effective(now time.Time, cal Calendar) int {
	if s == nil {
		return 0
	}
	if cal.DayGap(s.UpdatedAt, now) >= 2 {
		return 0
	}
	return s.CurrentStreak
}

// AdvancedOn reports whether the streak was already advanced on now's day.
func (s *Streak) AdvancedOn(now time.Time, cal Calendar) bool {
	return s != nil && cal.DayGap(s.UpdatedAt, now) <= 0
}

type Status struct {
	CurrentStreak int        `json:"currentStreak"`
	LongestStreak int        `json:"longestStreak"`
	LoggedToday   bool       `json:"loggedToday"`
	LastUpdated   *time.Time `json:"lastUpdated"`
}

type Summary struct {
	Count       int        `json:"count"`
	LastUpdated *time.Time `json:"lastUpdated"`
}

type IncrementResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}
