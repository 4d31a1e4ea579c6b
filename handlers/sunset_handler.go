package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"sunsetCompanionAPI/internal/sunset"
	"sunsetCompanionAPI/services"
)

type SunsetHandler struct {
	sunsetService *services.SunsetService
	feedService   *services.FeedService
	now           func() time.Time
}

func NewSunsetHandler(sunsetService *services.SunsetService, feedService *services.FeedService) *SunsetHandler {
	return &SunsetHandler{
		sunsetService: sunsetService,
		feedService:   feedService,
		now:           time.Now,
	}
}

// queryInt reads an integer query value, falling back to def when the
// parameter is absent or not a number.
func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

// GET /api/sunsets?page=&limit=
func (h *SunsetHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", services.DefaultPageLimit)

	resp, err := h.feedService.ListOwn(ctx, userID, page, limit)
	if err != nil {
		respondWithAppError(w, "ListSunsets", err)
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// POST /api/sunsets
func (h *SunsetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req sunset.CreateSunsetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.sunsetService.CreateSunset(ctx, userID, &req, h.now())
	if err != nil {
		respondWithAppError(w, "CreateSunset", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, resp)
}

// GET /api/sunsets/recent
func (h *SunsetHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, ok := requireUserID(w, r); !ok {
		return
	}

	sunsets, err := h.feedService.ListPublic(ctx, services.DefaultPageLimit)
	if err != nil {
		respondWithAppError(w, "ListRecentSunsets", err)
		return
	}

	respondWithJSON(w, http.StatusOK, sunsets)
}

// GET /api/sunsets/{id}
func (h *SunsetHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := sunsetIDFromPath(w, r)
	if !ok {
		return
	}

	sn, err := h.feedService.GetByID(ctx, userID, id)
	if err != nil {
		respondWithAppError(w, "GetSunset", err)
		return
	}

	respondWithJSON(w, http.StatusOK, sunset.SunsetResponse{Sunset: sn})
}

// DELETE /api/sunsets/{id}
func (h *SunsetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := sunsetIDFromPath(w, r)
	if !ok {
		return
	}

	if err := h.sunsetService.DeleteSunset(ctx, userID, id); err != nil {
		respondWithAppError(w, "DeleteSunset", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST /api/sunsets/{id}/like
func (h *SunsetHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := sunsetIDFromPath(w, r)
	if !ok {
		return
	}

	state, err := h.sunsetService.ToggleLike(ctx, userID, id, h.now())
	if err != nil {
		respondWithAppError(w, "ToggleLike", err)
		return
	}

	respondWithJSON(w, http.StatusOK, state)
}

// GET /api/sunsets/{id}/comments
func (h *SunsetHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := sunsetIDFromPath(w, r)
	if !ok {
		return
	}

	comments, err := h.feedService.ListComments(ctx, userID, id)
	if err != nil {
		respondWithAppError(w, "ListComments", err)
		return
	}

	respondWithJSON(w, http.StatusOK, sunset.CommentsResponse{Comments: comments})
}

// POST /api/sunsets/{id}/comments
func (h *SunsetHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := sunsetIDFromPath(w, r)
	if !ok {
		return
	}

	var req sunset.CreateCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	comment, err := h.sunsetService.AddComment(ctx, userID, id, req.Body, h.now())
	if err != nil {
		respondWithAppError(w, "AddComment", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, sunset.CommentResponse{Comment: comment})
}
