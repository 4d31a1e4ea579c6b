package streak

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testZone = time.FixedZone("UTC+3", 3*60*60)

func day(d, hour int) time.Time {
	return time.Date(2025, time.March, d, hour, 0, 0, 0, testZone)
}

func TestCalendar_StartOfDay(t *testing.T) {
	cal := NewCalendar(testZone)

	start := cal.StartOfDay(day(10, 18))
	assert.Equal(t, day(10, 0), start)

	// 22:30 UTC on the 9th is already the 10th in UTC+3
	late := time.Date(2025, time.March, 9, 22, 30, 0, 0, time.UTC)
	assert.True(t, cal.StartOfDay(late).Equal(day(10, 0)))
}

func TestCalendar_DayGap(t *testing.T) {
	cal := NewCalendar(testZone)

	assert.Equal(t, 0, cal.DayGap(day(10, 0), day(10, 23)))
	assert.Equal(t, 1, cal.DayGap(day(10, 23), day(11, 0)))
	assert.Equal(t, 3, cal.DayGap(day(10, 12), day(13, 1)))
	assert.Equal(t, -1, cal.DayGap(day(11, 1), day(10, 23)))
}

func TestCalendar_DayGapAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}
	cal := NewCalendar(loc)

	// clocks jump forward on 2025-03-09, that day has 23 hours
	before := time.Date(2025, time.March, 8, 23, 0, 0, 0, loc)
	after := time.Date(2025, time.March, 9, 23, 30, 0, 0, loc)
	assert.Equal(t, 1, cal.DayGap(before, after))

	nextDay := time.Date(2025, time.March, 10, 0, 10, 0, 0, loc)
	assert.Equal(t, 2, cal.DayGap(before, nextDay))
}

func TestAdvance(t *testing.T) {
	cal := NewCalendar(testZone)
	userID := uuid.New()

	first, tr := Advance(nil, userID, day(10, 19), cal)
	assert.Equal(t, TransitionStarted, tr)
	assert.Equal(t, 1, first.CurrentStreak)
	assert.Equal(t, 1, first.LongestStreak)
	assert.Equal(t, userID, first.UserID)

	same, tr := Advance(&first, userID, day(10, 21), cal)
	assert.Equal(t, TransitionUnchanged, tr)
	assert.Equal(t, 1, same.CurrentStreak)
	assert.Equal(t, day(10, 21), same.UpdatedAt)

	second, tr := Advance(&first, userID, day(11, 19), cal)
	assert.Equal(t, TransitionExtended, tr)
	assert.Equal(t, 2, second.CurrentStreak)
	assert.Equal(t, 2, second.LongestStreak)

	broken, tr := Advance(&second, userID, day(13, 19), cal)
	assert.Equal(t, TransitionReset, tr)
	assert.Equal(t, 1, broken.CurrentStreak)
	assert.Equal(t, 2, broken.LongestStreak, "longest streak survives a reset")
	assert.Equal(t, first.CreatedAt, broken.CreatedAt)
}

func TestAdvance_ClockSkewIsNoop(t *testing.T) {
	cal := NewCalendar(testZone)
	prev := &Streak{UserID: uuid.New(), CurrentStreak: 4, LongestStreak: 4, UpdatedAt: day(12, 8)}

	next, tr := Advance(prev, prev.UserID, day(11, 20), cal)
	assert.Equal(t, TransitionUnchanged, tr)
	assert.Equal(t, 4, next.CurrentStreak)
}

func TestStreak_Effective(t *testing.T) {
	cal := NewCalendar(testZone)

	var missing *Streak
	assert.Equal(t, 0, missing.Effective(day(10, 12), cal))

	s := &Streak{CurrentStreak: 5, UpdatedAt: day(10, 20)}
	assert.Equal(t, 5, s.Effective(day(10, 23), cal))
	assert.Equal(t, 5, s.Effective(day(11, 23), cal))
	assert.Equal(t, 0, s.Effective(day(12, 0), cal))
}

func TestStreak_AdvancedOn(t *testing.T) {
	cal := NewCalendar(testZone)

	var missing *Streak
	require.False(t, missing.AdvancedOn(day(10, 12), cal))

	s := &Streak{CurrentStreak: 1, UpdatedAt: day(10, 1)}
	assert.True(t, s.AdvancedOn(day(10, 23), cal))
	assert.False(t, s.AdvancedOn(day(11, 0), cal))
}
