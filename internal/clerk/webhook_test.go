package clerk

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

func signedHeader(t *testing.T, secret, id string, ts time.Time, body []byte) http.Header {
	t.Helper()
	sig, err := SignWebhook(secret, id, ts, body)
	require.NoError(t, err)
	h := http.Header{}
	h.Set(HeaderID, id)
	h.Set(HeaderTimestamp, strconv.FormatInt(ts.Unix(), 10))
	h.Set(HeaderSignature, sig)
	return h
}

func TestVerifyWebhook(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	body := []byte(`{"type":"user.created"}`)

	h := signedHeader(t, testSecret, "msg_1", now, body)
	assert.NoError(t, VerifyWebhook(testSecret, h, body, now))
	assert.NoError(t, VerifyWebhook(testSecret, h, body, now.Add(4*time.Minute)))

	assert.ErrorIs(t, VerifyWebhook(testSecret, h, []byte(`{"type":"user.deleted"}`), now), ErrInvalidSignature)
	assert.ErrorIs(t, VerifyWebhook(testSecret, h, body, now.Add(6*time.Minute)), ErrInvalidTimestamp)
	assert.ErrorIs(t, VerifyWebhook(testSecret, h, body, now.Add(-6*time.Minute)), ErrInvalidTimestamp)
	assert.ErrorIs(t, VerifyWebhook(testSecret, http.Header{}, body, now), ErrMissingHeaders)
}

func TestVerifyWebhookRotatedSignatures(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	body := []byte(`{}`)

	h := signedHeader(t, testSecret, "msg_2", now, body)
	h.Set(HeaderSignature, "v1,AAAA v2,ignored "+h.Get(HeaderSignature))
	assert.NoError(t, VerifyWebhook(testSecret, h, body, now))
}

func TestVerifyWebhookBadSecret(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	h := signedHeader(t, testSecret, "msg_3", now, nil)
	assert.Error(t, VerifyWebhook("whsec_***", h, nil, now))
}

func TestClerkUserDataHelpers(t *testing.T) {
	d := &ClerkUserData{
		Username:        "sunny",
		ProfileImageURL: "https://img/p.png",
		EmailAddresses: []ClerkEmailAddress{
			{ID: "a", EmailAddress: "first@example.com"},
			{ID: "b", EmailAddress: "primary@example.com"},
		},
		PrimaryEmailAddressID: "b",
	}
	assert.Equal(t, "primary@example.com", d.PrimaryEmail())
	assert.Equal(t, "sunny", d.DisplayName())
	assert.Equal(t, "https://img/p.png", d.Avatar())

	d.FirstName, d.LastName = "Sol", "Rise"
	d.PrimaryEmailAddressID = "missing"
	assert.Equal(t, "Sol Rise", d.DisplayName())
	assert.Equal(t, "first@example.com", d.PrimaryEmail())
}
