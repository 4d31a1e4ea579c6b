package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sunsetCompanionAPI/internal/storage"
	"sunsetCompanionAPI/internal/storage/storagetest"
	"sunsetCompanionAPI/internal/streak"
	"sunsetCompanionAPI/internal/sunset"
	"sunsetCompanionAPI/utils"
)

func post(t *testing.T, svc *testServices, userID uuid.UUID, at time.Time) (*sunset.CreateSunsetResponse, error) {
	t.Helper()
	return svc.sunsets.CreateSunset(context.Background(), userID, &sunset.CreateSunsetRequest{
		ImageURL: "https://img.example.com/sunset.jpg",
	}, at)
}

func TestStreakLifecycle(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	u := storagetest.NewUser(t, svc.store)

	res, err := post(t, svc, u.ID, day(10, 19))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak.Count)

	_, err = post(t, svc, u.ID, day(10, 21))
	assert.True(t, utils.IsErrorCode(err, utils.ErrDuplicatePost))

	res, err = post(t, svc, u.ID, day(11, 18))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Streak.Count)

	res, err = post(t, svc, u.ID, day(14, 18))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak.Count, "a missed day resets the streak")

	status, err := svc.streaks.GetStatus(ctx, u.ID, day(14, 20))
	require.NoError(t, err)
	assert.Equal(t, 1, status.CurrentStreak)
	assert.Equal(t, 2, status.LongestStreak)
	assert.True(t, status.LoggedToday)
	require.NotNil(t, status.LastUpdated)
	assert.True(t, day(14, 18).Equal(*status.LastUpdated))
}

func TestCreateSunsetAcrossLocalMidnight(t *testing.T) {
	svc := newTestServices(t)
	u := storagetest.NewUser(t, svc.store)

	_, err := post(t, svc, u.ID, time.Date(2025, time.March, 10, 23, 59, 0, 0, testZone))
	require.NoError(t, err)

	// 00:01 local is still March 10 in UTC
	res, err := post(t, svc, u.ID, time.Date(2025, time.March, 11, 0, 1, 0, 0, testZone))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Streak.Count)
}

func TestGetStatusWithoutRecord(t *testing.T) {
	svc := newTestServices(t)
	u := storagetest.NewUser(t, svc.store)

	status, err := svc.streaks.GetStatus(context.Background(), u.ID, day(10, 12))
	require.NoError(t, err)
	assert.Equal(t, streak.Status{}, *status)

	summary, err := svc.streaks.GetStreak(context.Background(), u.ID, day(10, 12))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Count)
	assert.Nil(t, summary.LastUpdated)
}

func TestStatusReportsBrokenStreak(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	u := storagetest.NewUser(t, svc.store)

	for d := 10; d <= 12; d++ {
		_, err := post(t, svc, u.ID, day(d, 19))
		require.NoError(t, err)
	}

	status, err := svc.streaks.GetStatus(ctx, u.ID, day(13, 9))
	require.NoError(t, err)
	assert.Equal(t, 3, status.CurrentStreak, "yesterday's post keeps the streak alive")
	assert.False(t, status.LoggedToday)

	status, err = svc.streaks.GetStatus(ctx, u.ID, day(14, 9))
	require.NoError(t, err)
	assert.Equal(t, 0, status.CurrentStreak)
	assert.Equal(t, 3, status.LongestStreak)

	summary, err := svc.streaks.GetStreak(ctx, u.ID, day(14, 9))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Count)
}

func TestHasLoggedToday(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	u := storagetest.NewUser(t, svc.store)

	logged, err := svc.streaks.HasLoggedToday(ctx, u.ID, day(10, 8))
	require.NoError(t, err)
	assert.False(t, logged)

	_, err = post(t, svc, u.ID, day(10, 9))
	require.NoError(t, err)

	logged, err = svc.streaks.HasLoggedToday(ctx, u.ID, day(10, 22))
	require.NoError(t, err)
	assert.True(t, logged)

	logged, err = svc.streaks.HasLoggedToday(ctx, u.ID, day(11, 0))
	require.NoError(t, err)
	assert.False(t, logged)

	_, err = svc.streaks.HasLoggedToday(ctx, uuid.Nil, day(10, 22))
	assert.True(t, utils.IsErrorCode(err, utils.ErrUnauthorized))
}

func TestIncrement(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	u := storagetest.NewUser(t, svc.store)

	res, err := svc.streaks.Increment(ctx, u.ID, day(10, 8))
	require.NoError(t, err)
	assert.Equal(t, &streak.IncrementResponse{Success: true, Count: 1}, res)

	_, err = svc.streaks.Increment(ctx, u.ID, day(10, 9))
	assert.True(t, utils.IsErrorCode(err, utils.ErrDuplicatePost), "one check-in per day")

	// a photo on a checked-in day is accepted and leaves the count alone
	created, err := post(t, svc, u.ID, day(10, 19))
	require.NoError(t, err)
	assert.Equal(t, 1, created.Streak.Count)

	_, err = post(t, svc, u.ID, day(11, 19))
	require.NoError(t, err)
	_, err = svc.streaks.Increment(ctx, u.ID, day(11, 20))
	assert.True(t, utils.IsErrorCode(err, utils.ErrDuplicatePost), "sunset already logged today")

	res, err = svc.streaks.Increment(ctx, u.ID, day(12, 7))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count)

	_, err = svc.streaks.Increment(ctx, uuid.Nil, day(12, 7))
	assert.True(t, utils.IsErrorCode(err, utils.ErrUnauthorized))
}

func TestMilestoneNotification(t *testing.T) {
	svc := newTestServices(t)
	u := storagetest.NewUser(t, svc.store)

	for d := 10; d <= 12; d++ {
		_, err := post(t, svc, u.ID, day(d, 19))
		require.NoError(t, err)
	}

	sent := svc.notifier.all()
	require.Len(t, sent, 1)
	assert.Equal(t, u.ID, sent[0].UserID)
	assert.Equal(t, "3", sent[0].Data["streak"])

	_, err := post(t, svc, u.ID, day(13, 19))
	require.NoError(t, err)
	assert.Len(t, svc.notifier.all(), 1)
}

func TestConcurrentPostsCountOnce(t *testing.T) {
	svc := newTestServices(t)
	u := storagetest.NewUser(t, svc.store)
	now := day(10, 19)

	const n = 8
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		ok, dupes  int
		unexpected []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := post(t, svc, u.ID, now)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case utils.IsErrorCode(err, utils.ErrDuplicatePost):
				dupes++
			default:
				unexpected = append(unexpected, err)
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, unexpected)
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dupes)

	status, err := svc.streaks.GetStatus(context.Background(), u.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 1, status.CurrentStreak)
}

// brokenStreakStore fails every streak write inside a transaction.
type brokenStreakStore struct {
	storage.Store
}

func (b brokenStreakStore) InTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	return b.Store.InTx(ctx, func(tx storage.Tx) error {
		return fn(brokenStreakTx{tx})
	})
}

type brokenStreakTx struct {
	storage.Tx
}

func (brokenStreakTx) InsertStreak(ctx context.Context, st *streak.Streak) (bool, error) {
	return false, errors.New("disk full")
}

func TestCreateSunsetRollsBackOnStreakFailure(t *testing.T) {
	store := newTestStore(t)
	broken := brokenStreakStore{store}
	streaks := NewStreakService(broken, streak.NewCalendar(testZone), nil)
	sunsets := NewSunsetService(broken, streaks)
	u := storagetest.NewUser(t, store)

	_, err := sunsets.CreateSunset(context.Background(), u.ID, &sunset.CreateSunsetRequest{ImageURL: "https://x"}, day(10, 19))
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrStorage))

	count, err := store.CountSunsetsByUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "the sunset insert must roll back with the streak")
}
