package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"sunsetCompanionAPI/internal/clerk"
	"sunsetCompanionAPI/internal/user"
	"sunsetCompanionAPI/services"
	"sunsetCompanionAPI/utils"
)

const maxWebhookBody = 64 << 10

type WebhookHandler struct {
	userService   *services.UserService
	webhookSecret string
	now           func() time.Time
}

// NewWebhookHandler skips signature checks when webhookSecret is empty.
func NewWebhookHandler(userService *services.UserService, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{
		userService:   userService,
		webhookSecret: webhookSecret,
		now:           time.Now,
	}
}

// POST /webhooks/clerk
func (h *WebhookHandler) HandleClerkWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		log.Printf("Webhook: error reading body: %v", err)
		respondWithError(w, http.StatusBadRequest, "Error reading body")
		return
	}

	if h.webhookSecret == "" {
		log.Println("Webhook: CLERK_WEBHOOK_SECRET not set, skipping signature verification")
	} else if err := clerk.VerifyWebhook(h.webhookSecret, r.Header, body, h.now()); err != nil {
		log.Printf("Webhook: invalid signature: %v", err)
		respondWithError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	var event clerk.ClerkWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("Webhook: error parsing event: %v", err)
		respondWithError(w, http.StatusBadRequest, "Error parsing webhook")
		return
	}

	log.Printf("Webhook: received event %s", event.Type)

	switch event.Type {
	case "user.created":
		err = h.handleUserCreated(ctx, event.Data)
	case "user.updated":
		err = h.handleUserUpdated(ctx, event.Data)
	case "user.deleted":
		err = h.handleUserDeleted(ctx, event.Data)
	default:
		log.Printf("Webhook: unhandled event type %s", event.Type)
	}
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrValidation) || utils.IsErrorCode(err, utils.ErrEmailTaken) {
			log.Printf("Webhook: rejected %s: %v", event.Type, err)
			respondWithError(w, http.StatusBadRequest, "Invalid user data")
			return
		}
		log.Printf("Webhook: error handling %s: %v", event.Type, err)
		respondWithError(w, http.StatusInternalServerError, "Error processing webhook")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func clerkUserRequest(data json.RawMessage) (*user.ClerkUserRequest, error) {
	var userData clerk.ClerkUserData
	if err := json.Unmarshal(data, &userData); err != nil {
		return nil, utils.NewValidationError(fmt.Sprintf("failed to unmarshal user data: %v", err))
	}
	return &user.ClerkUserRequest{
		ClerkID:   userData.ID,
		Email:     userData.PrimaryEmail(),
		Name:      userData.DisplayName(),
		AvatarURL: userData.Avatar(),
	}, nil
}

func (h *WebhookHandler) handleUserCreated(ctx context.Context, data json.RawMessage) error {
	req, err := clerkUserRequest(data)
	if err != nil {
		return err
	}

	u, err := h.userService.CreateClerkUser(ctx, req, h.now())
	if err != nil {
		return err
	}

	log.Printf("Webhook: user %s ready for clerk id %s", u.ID, req.ClerkID)
	return nil
}

// user.updated for an account we never saw provisions it instead.
func (h *WebhookHandler) handleUserUpdated(ctx context.Context, data json.RawMessage) error {
	req, err := clerkUserRequest(data)
	if err != nil {
		return err
	}

	_, err = h.userService.UpdateClerkUser(ctx, req)
	if utils.IsErrorCode(err, utils.ErrNotFound) {
		_, err = h.userService.CreateClerkUser(ctx, req, h.now())
	}
	return err
}

func (h *WebhookHandler) handleUserDeleted(ctx context.Context, data json.RawMessage) error {
	var userData struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &userData); err != nil {
		return utils.NewValidationError(fmt.Sprintf("failed to unmarshal user data: %v", err))
	}

	err := h.userService.DeleteClerkUser(ctx, userData.ID)
	if utils.IsErrorCode(err, utils.ErrNotFound) {
		log.Printf("Webhook: clerk id %s already gone", userData.ID)
		return nil
	}
	return err
}
