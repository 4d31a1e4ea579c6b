package services

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"sunsetCompanionAPI/internal/upload"
	"sunsetCompanionAPI/utils"
)

const sniffLen = 512

type UploadService struct {
	uploader upload.Uploader
	maxBytes int64
}

func NewUploadService(uploader upload.Uploader, maxBytes int64) *UploadService {
	return &UploadService{uploader: uploader, maxBytes: maxBytes}
}

func (s *UploadService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload checks that r holds an image no larger than the configured limit
// and stores it, returning its public URL.
func (s *UploadService) Upload(ctx context.Context, userID uuid.UUID, filename string, r io.Reader, now time.Time) (string, error) {
	if userID == uuid.Nil {
		return "", utils.NewNotAuthenticatedError()
	}
	if r == nil {
		return "", utils.NewValidationError("No file uploaded")
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", utils.NewUploadError(err)
	}
	if len(data) == 0 {
		return "", utils.NewValidationError("No file uploaded")
	}
	if int64(len(data)) > s.maxBytes {
		return "", utils.NewValidationError("File is too large")
	}

	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return "", utils.NewValidationError("Only image uploads are allowed")
	}

	url, err := s.uploader.Upload(ctx, upload.ObjectName(filename, now), bytes.NewReader(data), contentType)
	if err != nil {
		return "", utils.NewUploadError(err)
	}
	return url, nil
}
