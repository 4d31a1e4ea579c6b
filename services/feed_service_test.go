package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sunsetCompanionAPI/internal/storage/storagetest"
	"sunsetCompanionAPI/internal/sunset"
	"sunsetCompanionAPI/utils"
)

func TestListOwnPagination(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	u := storagetest.NewUser(t, svc.store)

	var ids []uuid.UUID
	for d := 1; d <= 12; d++ {
		res, err := post(t, svc, u.ID, day(d, 19))
		require.NoError(t, err)
		ids = append(ids, res.Sunset.ID)
	}

	page, err := svc.feed.ListOwn(ctx, u.ID, 1, DefaultPageLimit)
	require.NoError(t, err)
	require.Len(t, page.Sunsets, 10)
	assert.Equal(t, ids[11], page.Sunsets[0].ID, "newest first")
	assert.Equal(t, sunset.Pagination{Total: 12, Page: 1, Limit: 10, HasMore: true}, page.Pagination)

	page, err = svc.feed.ListOwn(ctx, u.ID, 2, DefaultPageLimit)
	require.NoError(t, err)
	require.Len(t, page.Sunsets, 2)
	assert.Equal(t, ids[0], page.Sunsets[1].ID)
	assert.False(t, page.Pagination.HasMore)

	page, err = svc.feed.ListOwn(ctx, u.ID, 5, DefaultPageLimit)
	require.NoError(t, err)
	assert.Empty(t, page.Sunsets)
	assert.NotNil(t, page.Sunsets)
	assert.False(t, page.Pagination.HasMore)
}

func TestListOwnClampsPaging(t *testing.T) {
	svc := newTestServices(t)
	u := storagetest.NewUser(t, svc.store)
	for i := 0; i < 3; i++ {
		storagetest.NewSunset(t, svc.store, u.ID, day(10+i, 19), sunset.VisibilityPublic)
	}

	for _, tc := range []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 10, 1, 10},
		{-1, 10, 1, 10},
		{1, 0, 1, DefaultPageLimit},
		{1, -3, 1, DefaultPageLimit},
		{1, 100, 1, MaxPageLimit},
		{2, 51, 2, MaxPageLimit},
	} {
		resp, err := svc.feed.ListOwn(context.Background(), u.ID, tc.page, tc.limit)
		require.NoError(t, err, tc)
		assert.Equal(t, tc.wantPage, resp.Pagination.Page, tc)
		assert.Equal(t, tc.wantLimit, resp.Pagination.Limit, tc)
		assert.Equal(t, 3, resp.Pagination.Total, tc)
		if tc.wantPage == 1 {
			assert.Len(t, resp.Sunsets, 3, tc)
		} else {
			assert.Empty(t, resp.Sunsets, tc)
		}
	}

	_, err := svc.feed.ListOwn(context.Background(), uuid.Nil, 1, 10)
	assert.True(t, utils.IsErrorCode(err, utils.ErrUnauthorized))
}

func TestListOwnAttachesActivity(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	owner := storagetest.NewUser(t, svc.store)
	fan := storagetest.NewUser(t, svc.store)

	res, err := post(t, svc, owner.ID, day(10, 19))
	require.NoError(t, err)
	id := res.Sunset.ID

	_, err = svc.sunsets.ToggleLike(ctx, fan.ID, id, day(10, 20))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := svc.sunsets.AddComment(ctx, fan.ID, id, "nice", day(10, 20).Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}

	page, err := svc.feed.ListOwn(ctx, owner.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Sunsets, 1)

	s := page.Sunsets[0]
	assert.Equal(t, 1, s.LikeCount)
	assert.Equal(t, 5, s.CommentCount)
	require.Len(t, s.Likes, 1)
	assert.Equal(t, fan.ID, s.Likes[0].UserID)
	require.Len(t, s.Comments, 3)
	assert.True(t, day(10, 20).Add(4*time.Minute).Equal(s.Comments[0].CreatedAt))

	detail, err := svc.feed.GetByID(ctx, owner.ID, id)
	require.NoError(t, err)
	assert.Len(t, detail.Comments, 5)
	assert.True(t, detail.Comments[0].CreatedAt.Before(detail.Comments[4].CreatedAt))

	comments, err := svc.feed.ListComments(ctx, fan.ID, id)
	require.NoError(t, err)
	assert.Len(t, comments, 5)
}

func TestListPublic(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	a := storagetest.NewUser(t, svc.store)
	b := storagetest.NewUser(t, svc.store)

	_, err := post(t, svc, a.ID, day(10, 18))
	require.NoError(t, err)
	_, err = svc.sunsets.CreateSunset(ctx, b.ID, &sunset.CreateSunsetRequest{
		ImageURL: "https://x", Visibility: "private",
	}, day(10, 19))
	require.NoError(t, err)
	_, err = post(t, svc, b.ID, day(11, 19))
	require.NoError(t, err)

	recent, err := svc.feed.ListPublic(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, b.ID, recent[0].UserID)
	assert.Equal(t, a.ID, recent[1].UserID)
	for _, s := range recent {
		assert.Equal(t, sunset.VisibilityPublic, s.Visibility)
		require.NotNil(t, s.User)
		assert.Empty(t, s.User.Email)
		assert.NotEmpty(t, s.User.Name)
	}

	one, err := svc.feed.ListPublic(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestGetByIDMissing(t *testing.T) {
	svc := newTestServices(t)
	u := storagetest.NewUser(t, svc.store)

	_, err := svc.feed.GetByID(context.Background(), u.ID, uuid.New())
	appErr, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, utils.ErrNotFound, appErr.Code)
	assert.Equal(t, "Sunset not found", appErr.Message)
}
