package clerk

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Clerk delivers webhooks through Svix.
const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"

	secretPrefix     = "whsec_"
	webhookTolerance = 5 * time.Minute
)

var (
	ErrMissingHeaders   = errors.New("missing webhook signature headers")
	ErrInvalidTimestamp = errors.New("webhook timestamp outside tolerance")
	ErrInvalidSignature = errors.New("no matching webhook signature")
)

func decodeSecret(secret string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, secretPrefix))
	if err != nil {
		return nil, fmt.Errorf("invalid webhook secret: %w", err)
	}
	return key, nil
}

func sign(key []byte, id, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id + "." + timestamp + "."))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// SignWebhook produces the signature header value for body, in the
// "v1,<base64>" form Svix sends.
func SignWebhook(secret, id string, ts time.Time, body []byte) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	return "v1," + sign(key, id, strconv.FormatInt(ts.Unix(), 10), body), nil
}

// VerifyWebhook checks the Svix headers against body.
func VerifyWebhook(secret string, header http.Header, body []byte, now time.Time) error {
	id := header.Get(HeaderID)
	timestamp := header.Get(HeaderTimestamp)
	signatures := header.Get(HeaderSignature)
	if id == "" || timestamp == "" || signatures == "" {
		return ErrMissingHeaders
	}

	secs, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidTimestamp
	}
	sent := time.Unix(secs, 0)
	if now.Sub(sent) > webhookTolerance || sent.Sub(now) > webhookTolerance {
		return ErrInvalidTimestamp
	}

	key, err := decodeSecret(secret)
	if err != nil {
		return err
	}
	expected := []byte(sign(key, id, timestamp, body))

	// several space separated signatures during secret rotation
	for _, candidate := range strings.Fields(signatures) {
		version, sig, ok := strings.Cut(candidate, ",")
		if !ok || version != "v1" {
			continue
		}
		if hmac.Equal([]byte(sig), expected) {
			return nil
		}
	}
	return ErrInvalidSignature
}
