package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"sunsetCompanionAPI/middleware"
	"sunsetCompanionAPI/utils"
)

const maxJSONBody = 1 << 20

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithAppError maps service errors to a status and a client safe
// message. Anything that is not an AppError is a 500.
func respondWithAppError(w http.ResponseWriter, component string, err error) {
	appErr, ok := utils.AsAppError(err)
	if !ok {
		log.Printf("%s: unexpected error: %v", component, err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	status := utils.AppErrorToHTTPStatus(appErr.Code)
	if status >= http.StatusInternalServerError {
		log.Printf("%s: %v", component, appErr)
	}
	respondWithError(w, status, appErr.Message)
}

func requireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return uuid.Nil, false
	}
	return userID, true
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(dst)
}

// sunsetIDFromPath answers 404 for ids that cannot name a sunset.
func sunsetIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Sunset not found")
		return uuid.Nil, false
	}
	return id, true
}
