package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"sunsetCompanionAPI/internal/user"
	"sunsetCompanionAPI/middleware"
	"sunsetCompanionAPI/services"
)

type UserHandler struct {
	userService    *services.UserService
	profileService *services.ProfileService
	sessions       *middleware.SessionManager
	now            func() time.Time
}

func NewUserHandler(userService *services.UserService, profileService *services.ProfileService, sessions *middleware.SessionManager) *UserHandler {
	return &UserHandler{
		userService:    userService,
		profileService: profileService,
		sessions:       sessions,
		now:            time.Now,
	}
}

// POST /api/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req user.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.userService.Register(ctx, &req, h.now())
	if err != nil {
		respondWithAppError(w, "Register", err)
		return
	}

	if err := h.sessions.Issue(w, u.ID); err != nil {
		log.Printf("Register: failed to issue session for %s: %v", u.ID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	log.Printf("Register: created user %s", u.ID)
	respondWithJSON(w, http.StatusCreated, user.UserResponse{User: u})
}

// POST /api/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req user.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.userService.Authenticate(ctx, &req)
	if err != nil {
		respondWithAppError(w, "Login", err)
		return
	}

	if err := h.sessions.Issue(w, u.ID); err != nil {
		log.Printf("Login: failed to issue session for %s: %v", u.ID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	respondWithJSON(w, http.StatusOK, user.UserResponse{User: u})
}

// POST /api/logout
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/me
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	profile, err := h.profileService.GetProfile(ctx, userID, h.now())
	if err != nil {
		respondWithAppError(w, "GetProfile", err)
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}
