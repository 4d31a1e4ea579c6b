package handlers

import (
	"context"
	"net/http"
	"time"

	"sunsetCompanionAPI/internal/notification"
	"sunsetCompanionAPI/services"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
	now                 func() time.Time
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		now:                 time.Now,
	}
}

// POST /api/notifications/register-device
func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req notification.RegisterDeviceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.notificationService.RegisterDevice(ctx, userID, &req, h.now()); err != nil {
		respondWithAppError(w, "RegisterDevice", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
