package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"sunsetCompanionAPI/services"
)

// multipart overhead allowed on top of the file limit
const multipartSlack = 1 << 20

type UploadHandler struct {
	uploadService *services.UploadService
	now           func() time.Time
}

func NewUploadHandler(uploadService *services.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, now: time.Now}
}

// POST /api/upload, multipart field "file"
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.uploadService.MaxBytes()+multipartSlack)
	if err := r.ParseMultipartForm(multipartSlack); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusBadRequest, "File is too large")
			return
		}
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	url, err := h.uploadService.Upload(ctx, userID, header.Filename, file, h.now())
	if err != nil {
		respondWithAppError(w, "Upload", err)
		return
	}

	log.Printf("Upload: stored %s for user %s", url, userID)
	respondWithJSON(w, http.StatusOK, map[string]string{"url": url})
}
