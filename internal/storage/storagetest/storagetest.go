// Package storagetest holds the behaviour every storage.Store driver must share.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sunsetCompanionAPI/internal/notification"
	"sunsetCompanionAPI/internal/storage"
	"sunsetCompanionAPI/internal/streak"
	"sunsetCompanionAPI/internal/sunset"
	"sunsetCompanionAPI/internal/user"
)

var base = time.Date(2025, time.March, 10, 18, 30, 0, 0, time.UTC)

// Run exercises a fresh, migrated store returned by open for each subtest.
func Run(t *testing.T, open func(t *testing.T) storage.Store) {
	tests := map[string]func(t *testing.T, s storage.Store){
		"users":           testUsers,
		"clerk users":     testClerkUsers,
		"sunset tx":       testSunsetTx,
		"tx rollback":     testRollback,
		"streak swap":     testStreakSwap,
		"listing":         testListing,
		"likes":           testLikes,
		"comments":        testComments,
		"delete cascades": testDelete,
		"device tokens":   testDeviceTokens,
	}
	for name, fn := range tests {
		t.Run(name, func(t *testing.T) {
			fn(t, open(t))
		})
	}
}

// NewUser inserts a user with fake details.
func NewUser(t *testing.T, s storage.Store) *user.User {
	t.Helper()
	u := &user.User{
		ID:        uuid.New(),
		Email:     gofakeit.Email(),
		Name:      gofakeit.Name(),
		CreatedAt: base,
		UpdatedAt: base,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

// NewSunset inserts a sunset owned by userID at createdAt.
func NewSunset(t *testing.T, s storage.Store, userID uuid.UUID, createdAt time.Time, vis sunset.Visibility) *sunset.Sunset {
	t.Helper()
	out := &sunset.Sunset{
		ID:         uuid.New(),
		UserID:     userID,
		ImageURL:   gofakeit.URL(),
		Visibility: vis,
		CreatedAt:  createdAt,
	}
	err := s.InTx(context.Background(), func(tx storage.Tx) error {
		return tx.InsertSunset(context.Background(), out)
	})
	require.NoError(t, err)
	return out
}

func testUsers(t *testing.T, s storage.Store) {
	ctx := context.Background()
	email := gofakeit.Email()
	u := &user.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Sol",
		PasswordHash: "hash",
		CreatedAt:    base,
		UpdatedAt:    base,
	}
	require.NoError(t, s.CreateUser(ctx, u))

	got, err := s.GetUserByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Nil(t, got.ClerkID)
	assert.True(t, base.Equal(got.CreatedAt))

	byID, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sol", byID.Name)

	dup := *u
	dup.ID = uuid.New()
	assert.ErrorIs(t, s.CreateUser(ctx, &dup), storage.ErrConflict)

	_, err = s.GetUserByID(ctx, uuid.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testClerkUsers(t *testing.T, s storage.Store) {
	ctx := context.Background()
	clerkID := "user_" + gofakeit.LetterN(12)
	u := &user.User{
		ID:        uuid.New(),
		ClerkID:   &clerkID,
		Email:     gofakeit.Email(),
		Name:      "Before",
		CreatedAt: base,
		UpdatedAt: base,
	}
	require.NoError(t, s.CreateUser(ctx, u))

	got, err := s.GetUserByClerkID(ctx, clerkID)
	require.NoError(t, err)
	assert.Empty(t, got.PasswordHash)

	avatar := "https://img.example.com/a.png"
	updated, err := s.UpdateUserByClerkID(ctx, clerkID, "After", &avatar)
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
	require.NotNil(t, updated.AvatarURL)
	assert.Equal(t, avatar, *updated.AvatarURL)

	_, err = s.UpdateUserByClerkID(ctx, "user_missing", "x", nil)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.DeleteUserByClerkID(ctx, clerkID))
	assert.ErrorIs(t, s.DeleteUserByClerkID(ctx, clerkID), storage.ErrNotFound)
}

func testSunsetTx(t *testing.T, s storage.Store) {
	ctx := context.Background()
	u := NewUser(t, s)

	st, err := s.GetStreak(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, st)

	caption := "golden"
	rating := 5
	first := &sunset.Sunset{
		ID:         uuid.New(),
		UserID:     u.ID,
		ImageURL:   "https://img.example.com/1.jpg",
		Caption:    &caption,
		Rating:     &rating,
		Visibility: sunset.VisibilityPrivate,
		CreatedAt:  base,
	}
	created := &streak.Streak{UserID: u.ID, CurrentStreak: 1, LongestStreak: 1, CreatedAt: base, UpdatedAt: base}

	err = s.InTx(ctx, func(tx storage.Tx) error {
		if err := tx.InsertSunset(ctx, first); err != nil {
			return err
		}
		ok, err := tx.InsertStreak(ctx, created)
		require.True(t, ok)
		return err
	})
	require.NoError(t, err)

	got, err := s.GetSunset(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, sunset.VisibilityPrivate, got.Visibility)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 5, *got.Rating)
	require.NotNil(t, got.Caption)
	assert.Equal(t, "golden", *got.Caption)
	assert.Nil(t, got.Location)
	require.NotNil(t, got.User)
	assert.Equal(t, u.Name, got.User.Name)

	has, err := s.HasSunsetSince(ctx, u.ID, base.Add(-time.Hour), base.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, has)

	has, err = s.HasSunsetSince(ctx, u.ID, base.Add(time.Second), base.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, has)

	err = s.InTx(ctx, func(tx storage.Tx) error {
		ok, err := tx.InsertStreak(ctx, created)
		assert.False(t, ok)
		return err
	})
	require.NoError(t, err)

	st, err = s.GetStreak(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, 1, st.CurrentStreak)
	assert.True(t, base.Equal(st.UpdatedAt))
}

func testRollback(t *testing.T, s storage.Store) {
	ctx := context.Background()
	u := NewUser(t, s)
	boom := errors.New("boom")

	id := uuid.New()
	err := s.InTx(ctx, func(tx storage.Tx) error {
		require.NoError(t, tx.InsertSunset(ctx, &sunset.Sunset{
			ID: id, UserID: u.ID, ImageURL: "x", Visibility: sunset.VisibilityPublic, CreatedAt: base,
		}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.GetSunset(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testStreakSwap(t *testing.T, s storage.Store) {
	ctx := context.Background()
	u := NewUser(t, s)
	first := &streak.Streak{UserID: u.ID, CurrentStreak: 1, LongestStreak: 1, CreatedAt: base, UpdatedAt: base}
	require.NoError(t, s.InTx(ctx, func(tx storage.Tx) error {
		_, err := tx.InsertStreak(ctx, first)
		return err
	}))

	next := *first
	next.CurrentStreak = 2
	next.LongestStreak = 2
	next.UpdatedAt = base.Add(24 * time.Hour)

	require.NoError(t, s.InTx(ctx, func(tx storage.Tx) error {
		ok, err := tx.SwapStreak(ctx, base.Add(time.Microsecond), &next)
		assert.False(t, ok, "stale updated_at must not match")
		return err
	}))

	require.NoError(t, s.InTx(ctx, func(tx storage.Tx) error {
		ok, err := tx.SwapStreak(ctx, base, &next)
		assert.True(t, ok)
		return err
	}))

	got, err := s.GetStreak(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentStreak)
	assert.Equal(t, 2, got.LongestStreak)
	assert.True(t, next.UpdatedAt.Equal(got.UpdatedAt))
}

func testListing(t *testing.T, s storage.Store) {
	ctx := context.Background()
	owner := NewUser(t, s)
	other := NewUser(t, s)

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		vis := sunset.VisibilityPublic
		if i == 4 {
			vis = sunset.VisibilityPrivate
		}
		ids = append(ids, NewSunset(t, s, owner.ID, base.Add(time.Duration(i)*time.Hour), vis).ID)
	}
	NewSunset(t, s, other.ID, base.Add(10*time.Hour), sunset.VisibilityPublic)

	total, err := s.CountSunsetsByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	page, err := s.ListSunsetsByUser(ctx, owner.ID, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[4], page[0].ID)
	assert.Equal(t, ids[3], page[1].ID)

	page, err = s.ListSunsetsByUser(ctx, owner.ID, 4, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[0], page[0].ID)

	public, err := s.ListPublicSunsets(ctx, 3)
	require.NoError(t, err)
	require.Len(t, public, 3)
	assert.Equal(t, other.ID, public[0].UserID)
	for _, p := range public {
		assert.Equal(t, sunset.VisibilityPublic, p.Visibility)
	}
}

func testLikes(t *testing.T, s storage.Store) {
	ctx := context.Background()
	owner := NewUser(t, s)
	fan := NewUser(t, s)
	sn := NewSunset(t, s, owner.ID, base, sunset.VisibilityPublic)

	liked, count, err := s.ToggleLike(ctx, fan.ID, sn.ID, base)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)

	liked, count, err = s.ToggleLike(ctx, owner.ID, sn.ID, base)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 2, count)

	likes, err := s.ListLikes(ctx, []uuid.UUID{sn.ID})
	require.NoError(t, err)
	require.Len(t, likes, 2)
	assert.Equal(t, sn.ID, likes[0].SunsetID)
	require.NotNil(t, likes[0].User)

	liked, count, err = s.ToggleLike(ctx, fan.ID, sn.ID, base)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 1, count)

	got, err := s.GetSunset(ctx, sn.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikeCount)

	empty, err := s.ListLikes(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testComments(t *testing.T, s storage.Store) {
	ctx := context.Background()
	owner := NewUser(t, s)
	a := NewSunset(t, s, owner.ID, base, sunset.VisibilityPublic)
	b := NewSunset(t, s, owner.ID, base.Add(time.Hour), sunset.VisibilityPublic)

	for i := 0; i < 4; i++ {
		require.NoError(t, s.InsertComment(ctx, &sunset.Comment{
			ID:        uuid.New(),
			SunsetID:  a.ID,
			UserID:    owner.ID,
			Body:      gofakeit.Sentence(4),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, s.InsertComment(ctx, &sunset.Comment{
		ID: uuid.New(), SunsetID: b.ID, UserID: owner.ID, Body: "nice", CreatedAt: base,
	}))

	all, err := s.ListComments(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.True(t, all[0].CreatedAt.Before(all[3].CreatedAt))

	recent, err := s.ListRecentComments(ctx, []uuid.UUID{a.ID, b.ID}, 3)
	require.NoError(t, err)
	perSunset := map[uuid.UUID][]sunset.Comment{}
	for _, c := range recent {
		perSunset[c.SunsetID] = append(perSunset[c.SunsetID], c)
	}
	require.Len(t, perSunset[a.ID], 3)
	assert.True(t, base.Add(3*time.Minute).Equal(perSunset[a.ID][0].CreatedAt))
	assert.Len(t, perSunset[b.ID], 1)

	got, err := s.GetSunset(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.CommentCount)
}

func testDelete(t *testing.T, s storage.Store) {
	ctx := context.Background()
	owner := NewUser(t, s)
	sn := NewSunset(t, s, owner.ID, base, sunset.VisibilityPublic)
	_, _, err := s.ToggleLike(ctx, owner.ID, sn.ID, base)
	require.NoError(t, err)
	require.NoError(t, s.InsertComment(ctx, &sunset.Comment{
		ID: uuid.New(), SunsetID: sn.ID, UserID: owner.ID, Body: "bye", CreatedAt: base,
	}))

	require.NoError(t, s.DeleteSunset(ctx, sn.ID))

	_, err = s.GetSunset(ctx, sn.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	comments, err := s.ListComments(ctx, sn.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
	likes, err := s.ListLikes(ctx, []uuid.UUID{sn.ID})
	require.NoError(t, err)
	assert.Empty(t, likes)

	assert.ErrorIs(t, s.DeleteSunset(ctx, sn.ID), storage.ErrNotFound)
}

func testDeviceTokens(t *testing.T, s storage.Store) {
	ctx := context.Background()
	first := NewUser(t, s)
	second := NewUser(t, s)

	token := &notification.DeviceToken{Token: "tok-1", UserID: first.ID, Platform: "ios", CreatedAt: base, UpdatedAt: base}
	require.NoError(t, s.UpsertDeviceToken(ctx, token))

	tokens, err := s.ListDeviceTokens(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "ios", tokens[0].Platform)

	moved := *token
	moved.UserID = second.ID
	moved.Platform = "android"
	moved.UpdatedAt = base.Add(time.Hour)
	require.NoError(t, s.UpsertDeviceToken(ctx, &moved))

	tokens, err = s.ListDeviceTokens(ctx, first.ID)
	require.NoError(t, err)
	assert.Empty(t, tokens)

	tokens, err = s.ListDeviceTokens(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "android", tokens[0].Platform)
}
