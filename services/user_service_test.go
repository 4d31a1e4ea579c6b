package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sunsetCompanionAPI/internal/user"
	"sunsetCompanionAPI/utils"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	u, err := svc.users.Register(ctx, &user.RegisterRequest{
		Email: "  Dusk@Example.com ", Password: "p",
	}, day(10, 12))
	require.NoError(t, err)
	assert.Equal(t, "dusk@example.com", u.Email)
	assert.Equal(t, "dusk", u.Name, "name falls back to the email local part")
	assert.NotEqual(t, "p", u.PasswordHash)

	_, err = svc.users.Register(ctx, &user.RegisterRequest{Email: "dusk@example.com", Password: "other"}, day(10, 12))
	assert.True(t, utils.IsErrorCode(err, utils.ErrEmailTaken))

	got, err := svc.users.Authenticate(ctx, &user.LoginRequest{Email: "DUSK@example.com", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.users.Authenticate(ctx, &user.LoginRequest{Email: "dusk@example.com", Password: "wrong"})
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidCredentials))

	_, err = svc.users.Authenticate(ctx, &user.LoginRequest{Email: "nobody@example.com", Password: "p"})
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidCredentials))
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestServices(t)
	for _, req := range []*user.RegisterRequest{
		{Email: "", Password: "p"},
		{Email: "a@b.c", Password: ""},
		{Email: "not-an-email", Password: "p"},
		{Email: "long@b.c", Password: strings.Repeat("a", 100)},
	} {
		_, err := svc.users.Register(context.Background(), req, time.Now())
		assert.True(t, utils.IsErrorCode(err, utils.ErrValidation), req)
	}
}

func TestClerkUserLifecycle(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	clerkID := "user_" + gofakeit.LetterN(10)

	req := &user.ClerkUserRequest{
		ClerkID:   clerkID,
		Email:     gofakeit.Email(),
		Name:      "Golden Hour",
		AvatarURL: "https://img.example.com/me.png",
	}
	created, err := svc.users.CreateClerkUser(ctx, req, day(10, 12))
	require.NoError(t, err)
	require.NotNil(t, created.ClerkID)
	assert.Equal(t, clerkID, *created.ClerkID)

	again, err := svc.users.CreateClerkUser(ctx, req, day(10, 13))
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID, "replayed webhooks are idempotent")

	id, err := svc.users.UserIDByClerkID(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, id)

	_, err = svc.users.Authenticate(ctx, &user.LoginRequest{Email: req.Email, Password: ""})
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidCredentials))

	updated, err := svc.users.UpdateClerkUser(ctx, &user.ClerkUserRequest{ClerkID: clerkID, Name: "Blue Hour"})
	require.NoError(t, err)
	assert.Equal(t, "Blue Hour", updated.Name)
	assert.Nil(t, updated.AvatarURL)

	require.NoError(t, svc.users.DeleteClerkUser(ctx, clerkID))

	_, err = svc.users.UserIDByClerkID(ctx, clerkID)
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))
	err = svc.users.DeleteClerkUser(ctx, clerkID)
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))

	_, err = svc.users.GetUserByID(ctx, uuid.New())
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))
}

func TestGetProfile(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	u, err := svc.users.Register(ctx, &user.RegisterRequest{Email: gofakeit.Email(), Password: "p", Name: "Sky"}, day(1, 9))
	require.NoError(t, err)

	for d := 10; d <= 11; d++ {
		_, err := post(t, svc, u.ID, day(d, 19))
		require.NoError(t, err)
	}

	profile, err := svc.profiles.GetProfile(ctx, u.ID, day(11, 20))
	require.NoError(t, err)
	assert.Equal(t, "Sky", profile.Name)
	assert.Equal(t, 2, profile.TotalSunsets)
	assert.Equal(t, 2, profile.Streak)
	assert.Equal(t, 2, profile.LongestStreak)
	assert.True(t, day(1, 9).Equal(profile.JoinedAt))

	profile, err = svc.profiles.GetProfile(ctx, u.ID, day(20, 20))
	require.NoError(t, err)
	assert.Equal(t, 0, profile.Streak)
	assert.Equal(t, 2, profile.LongestStreak)

	_, err = svc.profiles.GetProfile(ctx, uuid.New(), day(11, 20))
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))
}
