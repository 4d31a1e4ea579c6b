package handlers

import (
	"context"
	"net/http"
	"time"

	"sunsetCompanionAPI/services"
)

type StreakHandler struct {
	streakService *services.StreakService
	now           func() time.Time
}

func NewStreakHandler(streakService *services.StreakService) *StreakHandler {
	return &StreakHandler{streakService: streakService, now: time.Now}
}

// GET /api/streak
func (h *StreakHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	summary, err := h.streakService.GetStreak(ctx, userID, h.now())
	if err != nil {
		respondWithAppError(w, "GetStreak", err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// GET /api/streak/status
func (h *StreakHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	status, err := h.streakService.GetStatus(ctx, userID, h.now())
	if err != nil {
		respondWithAppError(w, "GetStreakStatus", err)
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}

// POST /api/streak/increment
func (h *StreakHandler) Increment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	resp, err := h.streakService.Increment(ctx, userID, h.now())
	if err != nil {
		respondWithAppError(w, "IncrementStreak", err)
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}
