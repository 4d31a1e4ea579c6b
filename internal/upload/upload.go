// Package upload stores user images and hands back a public URL.
package upload

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
}

const maxNameLen = 80

// ObjectName builds the stored name "sunset-<unix-ms>-<name>" where name is
// the client filename reduced to [a-z0-9._-].
func ObjectName(original string, now time.Time) string {
	return fmt.Sprintf("sunset-%d-%s", now.UnixMilli(), sanitize(original))
}

func sanitize(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	var b strings.Builder
	dash := false
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	clean := strings.Trim(b.String(), "-")
	if clean == "" || clean == "." {
		clean = "image"
	}
	if len(clean) > maxNameLen {
		clean = clean[:maxNameLen]
	}

	ext = strings.Map(func(r rune) rune {
		if r == '.' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, ext)
	if len(ext) > 8 || ext == "." {
		ext = ""
	}
	return clean + ext
}
