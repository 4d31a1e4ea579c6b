package notification

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
)

type FCMService struct {
	client *messaging.Client
}

func NewFCMService(ctx context.Context, app *firebase.App) (*FCMService, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	return &FCMService{client: client}, nil
}

// SendPush delivers one message per token. The batch endpoint is not used,
// so a bad token only fails its own send.
func (s *FCMService) SendPush(ctx context.Context, tokens []DeviceToken, n *Notification) error {
	if len(tokens) == 0 {
		return nil
	}

	successCount := 0
	failureCount := 0

	for _, token := range tokens {
		message := &messaging.Message{
			Token: token.Token,
			Notification: &messaging.Notification{
				Title: n.Title,
				Body:  n.Body,
			},
			Data: n.Data,
		}

		switch token.Platform {
		case "ios":
			message.APNS = &messaging.APNSConfig{
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{Sound: "default"},
				},
			}
		case "web":
			message.Webpush = &messaging.WebpushConfig{
				Notification: &messaging.WebpushNotification{
					Title: n.Title,
					Body:  n.Body,
				},
			}
		default:
			message.Android = &messaging.AndroidConfig{
				Priority: "high",
				Notification: &messaging.AndroidNotification{
					Sound: "default",
				},
			}
		}

		if _, err := s.client.Send(ctx, message); err != nil {
			if messaging.IsUnregistered(err) {
				log.Printf("FCM: token for user %s is no longer registered", token.UserID)
			} else {
				log.Printf("FCM: Failed to send to user %s: %v", token.UserID, err)
			}
			failureCount++
			continue
		}
		successCount++
	}

	log.Printf("FCM: Sent %d messages, %d failed", successCount, failureCount)

	if successCount == 0 && failureCount > 0 {
		return fmt.Errorf("all push notifications failed")
	}

	return nil
}
