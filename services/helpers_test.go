package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sunsetCompanionAPI/internal/notification"
	"sunsetCompanionAPI/internal/storage"
	"sunsetCompanionAPI/internal/storage/sqlite"
	"sunsetCompanionAPI/internal/streak"
)

var testZone = time.FixedZone("UTC+3", 3*60*60)

// day returns hour:00 local time on March d, 2025.
func day(d, hour int) time.Time {
	return time.Date(2025, time.March, d, hour, 0, 0, 0, testZone)
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(s.Close)
	return s
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []*notification.Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) all() []*notification.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*notification.Notification(nil), r.sent...)
}

type testServices struct {
	store    storage.Store
	notifier *recordingNotifier
	streaks  *StreakService
	sunsets  *SunsetService
	feed     *FeedService
	profiles *ProfileService
	users    *UserService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	store := newTestStore(t)
	notifier := &recordingNotifier{}
	streaks := NewStreakService(store, streak.NewCalendar(testZone), notifier)
	return &testServices{
		store:    store,
		notifier: notifier,
		streaks:  streaks,
		sunsets:  NewSunsetService(store, streaks),
		feed:     NewFeedService(store),
		profiles: NewProfileService(store, streaks),
		users:    NewUserService(store),
	}
}
