package sunset

import (
	"time"

	"github.com/google/uuid"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ParseVisibility normalizes client input. Empty means public and
// "unlisted" is stored as private.
func ParseVisibility(raw string) (Visibility, bool) {
	switch raw {
	case "", string(VisibilityPublic):
		return VisibilityPublic, true
	case string(VisibilityPrivate), "unlisted":
		return VisibilityPrivate, true
	default:
		return "", false
	}
}

type Sunset struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"userId"`
	ImageURL     string     `json:"imageUrl"`
	Caption      *string    `json:"caption"`
	Location     *string    `json:"location"`
	Rating       *int       `json:"rating"`
	Visibility   Visibility `json:"visibility"`
	CreatedAt    time.Time  `json:"createdAt"`
	LikeCount    int        `json:"likeCount"`
	CommentCount int        `json:"commentCount"`
	User         *Author    `json:"user,omitempty"`
	Likes        []Like     `json:"likes,omitempty"`
	Comments     []Comment  `json:"comments,omitempty"`
}

// VisibleTo reports whether viewerID may see the sunset.
func (s *Sunset) VisibleTo(viewerID uuid.UUID) bool {
	return s.Visibility == VisibilityPublic || s.UserID == viewerID
}

// Author is the public summary of a user shown next to content.
type Author struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email,omitempty"`
	Avatar *string   `json:"avatar"`
}

type Like struct {
	SunsetID  uuid.UUID `json:"sunsetId"`
	UserID    uuid.UUID `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	User      *Author   `json:"user,omitempty"`
}

type Comment struct {
	ID        uuid.UUID `json:"id"`
	SunsetID  uuid.UUID `json:"sunsetId"`
	UserID    uuid.UUID `json:"userId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	User      *Author   `json:"user,omitempty"`
}
