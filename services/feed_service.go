package services

import (
	"context"

	"github.com/google/uuid"

	"sunsetCompanionAPI/internal/storage"
	"sunsetCompanionAPI/internal/sunset"
	"sunsetCompanionAPI/utils"
)

const (
	DefaultPageLimit  = 10
	MaxPageLimit      = 50
	recentCommentsPer = 3
)

type FeedService struct {
	store storage.Store
}

func NewFeedService(store storage.Store) *FeedService {
	return &FeedService{store: store}
}

// clampPaging pulls out-of-range paging values back into range.
func clampPaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

// ListOwn returns one page of the user's sunsets, newest first, each with
// its likes and most recent comments.
func (s *FeedService) ListOwn(ctx context.Context, userID uuid.UUID, page, limit int) (*sunset.ListResponse, error) {
	if userID == uuid.Nil {
		return nil, utils.NewNotAuthenticatedError()
	}
	page, limit = clampPaging(page, limit)

	total, err := s.store.CountSunsetsByUser(ctx, userID)
	if err != nil {
		return nil, utils.NewStorageError("Failed to count sunsets", err)
	}

	offset := (page - 1) * limit
	sunsets := []*sunset.Sunset{}
	if offset < total {
		sunsets, err = s.store.ListSunsetsByUser(ctx, userID, offset, limit)
		if err != nil {
			return nil, utils.NewStorageError("Failed to list sunsets", err)
		}
		if err := s.attachActivity(ctx, sunsets); err != nil {
			return nil, err
		}
	}

	return &sunset.ListResponse{
		Sunsets: sunsets,
		Pagination: sunset.Pagination{
			Total:   total,
			Page:    page,
			Limit:   limit,
			HasMore: offset+len(sunsets) < total,
		},
	}, nil
}

func (s *FeedService) attachActivity(ctx context.Context, sunsets []*sunset.Sunset) error {
	if len(sunsets) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(sunsets))
	byID := make(map[uuid.UUID]*sunset.Sunset, len(sunsets))
	for i, sn := range sunsets {
		ids[i] = sn.ID
		byID[sn.ID] = sn
		sn.Likes = []sunset.Like{}
		sn.Comments = []sunset.Comment{}
	}

	likes, err := s.store.ListLikes(ctx, ids)
	if err != nil {
		return utils.NewStorageError("Failed to load likes", err)
	}
	for _, l := range likes {
		if sn, ok := byID[l.SunsetID]; ok {
			sn.Likes = append(sn.Likes, l)
		}
	}

	comments, err := s.store.ListRecentComments(ctx, ids, recentCommentsPer)
	if err != nil {
		return utils.NewStorageError("Failed to load comments", err)
	}
	for _, c := range comments {
		if sn, ok := byID[c.SunsetID]; ok {
			sn.Comments = append(sn.Comments, c)
		}
	}
	return nil
}

// ListPublic returns the newest public sunsets with author name and avatar.
func (s *FeedService) ListPublic(ctx context.Context, limit int) ([]*sunset.Sunset, error) {
	if limit < 1 || limit > MaxPageLimit {
		limit = DefaultPageLimit
	}

	sunsets, err := s.store.ListPublicSunsets(ctx, limit)
	if err != nil {
		return nil, utils.NewStorageError("Failed to list recent sunsets", err)
	}
	for _, sn := range sunsets {
		if sn.User != nil {
			sn.User.Email = ""
		}
	}
	return sunsets, nil
}

func (s *FeedService) GetByID(ctx context.Context, viewerID, id uuid.UUID) (*sunset.Sunset, error) {
	if viewerID == uuid.Nil {
		return nil, utils.NewNotAuthenticatedError()
	}

	out, err := visibleSunset(ctx, s.store, viewerID, id)
	if err != nil {
		return nil, err
	}

	likes, err := s.store.ListLikes(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, utils.NewStorageError("Failed to load likes", err)
	}
	comments, err := s.store.ListComments(ctx, id)
	if err != nil {
		return nil, utils.NewStorageError("Failed to load comments", err)
	}

	out.Likes = likes
	out.Comments = comments
	return out, nil
}

func (s *FeedService) ListComments(ctx context.Context, viewerID, id uuid.UUID) ([]sunset.Comment, error) {
	if viewerID == uuid.Nil {
		return nil, utils.NewNotAuthenticatedError()
	}
	if _, err := visibleSunset(ctx, s.store, viewerID, id); err != nil {
		return nil, err
	}

	comments, err := s.store.ListComments(ctx, id)
	if err != nil {
		return nil, utils.NewStorageError("Failed to load comments", err)
	}
	return comments, nil
}
