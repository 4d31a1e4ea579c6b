package utils

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/google/uuid"

	"sunsetCompanionAPI/internal/notification"
)

// NotificationCreator is the part of the notification service the triggers need.
type NotificationCreator interface {
	Notify(ctx context.Context, n *notification.Notification) error
}

// StreakMilestones are the streak lengths, in days, that earn a push.
var StreakMilestones = []int{3, 7, 14, 30, 50, 100, 200, 365}

func IsStreakMilestone(count int) bool {
	for _, m := range StreakMilestones {
		if m == count {
			return true
		}
	}
	return false
}

// StreakMilestoneReached queues a congratulation push when count is a
// milestone. Failures are logged only.
func StreakMilestoneReached(ctx context.Context, notifier NotificationCreator, userID uuid.UUID, count int) bool {
	if notifier == nil || !IsStreakMilestone(count) {
		return false
	}

	n := &notification.Notification{
		UserID: userID,
		Type:   notification.TypeStreakMilestone,
		Title:  fmt.Sprintf("%d day streak!", count),
		Body:   fmt.Sprintf("You have caught the sunset %d days in a row. Keep it going tomorrow.", count),
		Data: map[string]string{
			"streak": strconv.Itoa(count),
		},
	}

	if err := notifier.Notify(ctx, n); err != nil {
		log.Printf("Failed to queue streak milestone for user %s: %v", userID, err)
		return false
	}
	return true
}
