package sunset

import "sunsetCompanionAPI/internal/streak"

type CreateSunsetRequest struct {
	ImageURL   string  `json:"imageUrl"`
	Caption    *string `json:"caption,omitempty"`
	Location   *string `json:"location,omitempty"`
	Rating     *int    `json:"rating,omitempty"`
	Visibility string  `json:"visibility,omitempty"`
}

type CreateSunsetResponse struct {
	Sunset *Sunset         `json:"sunset"`
	Streak *streak.Summary `json:"streak"`
}

type SunsetResponse struct {
	Sunset *Sunset `json:"sunset"`
}

type Pagination struct {
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}

type ListResponse struct {
	Sunsets    []*Sunset  `json:"sunsets"`
	Pagination Pagination `json:"pagination"`
}

type LikeState struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

type CreateCommentRequest struct {
	Body string `json:"body"`
}

type CommentResponse struct {
	Comment *Comment `json:"comment"`
}

type CommentsResponse struct {
	Comments []Comment `json:"comments"`
}
