package upload

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
)

// FirebaseUploader writes public objects into a Firebase Storage bucket.
type FirebaseUploader struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

func NewFirebaseUploader(ctx context.Context, app *firebase.App, bucketName string) (*FirebaseUploader, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Storage client: %w", err)
	}

	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("error opening bucket %s: %w", bucketName, err)
	}

	return &FirebaseUploader{bucket: bucket, bucketName: bucketName}, nil
}

func (u *FirebaseUploader) Upload(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	w := u.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000"
	w.ACL = []gcs.ACLRule{{Entity: gcs.AllUsers, Role: gcs.RoleReader}}

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write object %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %s: %w", name, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucketName, name), nil
}
