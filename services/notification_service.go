package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"sunsetCompanionAPI/internal/notification"
	"sunsetCompanionAPI/internal/storage"
	"sunsetCompanionAPI/utils"
)

type NotificationService struct {
	devices    storage.DeviceStore
	dispatcher *NotificationDispatcher
}

func NewNotificationService(devices storage.DeviceStore) *NotificationService {
	return &NotificationService{
		devices:    devices,
		dispatcher: NewNotificationDispatcher(devices, 5, 100),
	}
}

func (s *NotificationService) SetPushProvider(provider PushNotificationProvider) {
	s.dispatcher.SetPushProvider(provider)
}

func (s *NotificationService) RegisterDevice(ctx context.Context, userID uuid.UUID, req *notification.RegisterDeviceRequest, now time.Time) error {
	if userID == uuid.Nil {
		return utils.NewNotAuthenticatedError()
	}

	token := strings.TrimSpace(req.Token)
	if token == "" {
		return utils.NewValidationError("Device token is required")
	}
	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	if !notification.Platforms[platform] {
		return utils.NewValidationError("Platform must be one of android, ios or web")
	}

	err := s.devices.UpsertDeviceToken(ctx, &notification.DeviceToken{
		Token:     token,
		UserID:    userID,
		Platform:  platform,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return utils.NewStorageError("Failed to register device", err)
	}
	return nil
}

// Notify queues n for delivery to every device of n.UserID.
func (s *NotificationService) Notify(ctx context.Context, n *notification.Notification) error {
	if !s.dispatcher.Dispatch(n) {
		return errors.New("notification queue unavailable")
	}
	return nil
}

func (s *NotificationService) Stop() {
	s.dispatcher.Stop()
}
