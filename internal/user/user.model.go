package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	ClerkID      *string   `json:"clerkId,omitempty"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	AvatarURL    *string   `json:"avatar"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Profile struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Avatar        *string   `json:"avatar"`
	JoinedAt      time.Time `json:"joinedAt"`
	TotalSunsets  int       `json:"totalSunsets"`
	Streak        int       `json:"streak"`
	LongestStreak int       `json:"longestStreak"`
}
