package notification

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	TypeStreakMilestone NotificationType = "streak_milestone"
)

type DeviceToken struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"userId"`
	Platform  string    `json:"platform"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Notification is a push addressed to every device of one user.
type Notification struct {
	UserID uuid.UUID         `json:"userId"`
	Type   NotificationType  `json:"type"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
}
