package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"sunsetCompanionAPI/handlers"
	"sunsetCompanionAPI/internal/clerk"
	"sunsetCompanionAPI/internal/storage/sqlite"
	"sunsetCompanionAPI/internal/streak"
	"sunsetCompanionAPI/internal/upload"
	"sunsetCompanionAPI/middleware"
	"sunsetCompanionAPI/services"
)

const (
	// base64 of "sunset-webhook-test-secret"
	TestWebhookSecret = "whsec_c3Vuc2V0LXdlYmhvb2stdGVzdC1zZWNyZXQ="
	testClerkKey      = "test-secret-key-for-testing-only"
)

// SetupTestStore opens a migrated in-memory database.
func SetupTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(store.Close)
	return store
}

// Clock is a settable time source shared by every handler of a TestServer.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(t time.Time) *Clock {
	return &Clock{now: t}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type TestServer struct {
	*httptest.Server
	Store *sqlite.Store
	Clock *Clock
	Users *services.UserService
}

// NewTestServer wires the full HTTP surface against an in-memory store.
// Clerk bearer tokens are accepted when signed by GenerateMockClerkJWT.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	store := SetupTestStore(t)
	zone := time.FixedZone("UTC-5", -5*60*60)
	clock := NewClock(time.Date(2025, time.June, 2, 19, 30, 0, 0, zone))

	notifications := services.NewNotificationService(store)
	t.Cleanup(notifications.Stop)

	streaks := services.NewStreakService(store, streak.NewCalendar(zone), notifications)
	users := services.NewUserService(store)
	profiles := services.NewProfileService(store, streaks)
	sunsets := services.NewSunsetService(store, streaks)
	feed := services.NewFeedService(store)

	uploadDir := t.TempDir()
	uploader, err := upload.NewLocalUploader(uploadDir+"/uploads", "http://assets.test")
	require.NoError(t, err)
	uploads := services.NewUploadService(uploader, 1<<20)

	sessions := middleware.NewSessionManager("integration-session-secret", time.Hour, false)

	rt := &handlers.Router{
		Users:         handlers.NewUserHandler(users, profiles, sessions),
		Sunsets:       handlers.NewSunsetHandler(sunsets, feed),
		Streaks:       handlers.NewStreakHandler(streaks),
		Uploads:       handlers.NewUploadHandler(uploads),
		Notifications: handlers.NewNotificationHandler(notifications),
		Webhooks:      handlers.NewWebhookHandler(users, TestWebhookSecret),
		Auth:          middleware.NewAuthenticator(sessions, users, VerifyMockClerkJWT),
		DB:            store,
		AssetsDir:     uploadDir,
		Now:           clock.Now,
	}

	srv := httptest.NewServer(rt.Handler())
	t.Cleanup(srv.Close)

	return &TestServer{Server: srv, Store: store, Clock: clock, Users: users}
}

// NewClient returns a client that keeps session cookies.
func NewClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

// DoJSON sends body as JSON and decodes the response into out when out is
// non-nil. It returns the status code.
func DoJSON(t *testing.T, c *http.Client, method, url string, body, out interface{}, headers ...string) int {
	t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// GenerateMockClerkJWT generates a mock JWT token for testing
func GenerateMockClerkJWT(clerkID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": clerkID,
		"iss": "https://clerk.test",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour * 24).Unix(),
		"azp": "test-app-id",
		"sid": "sess_test123",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(testClerkKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// VerifyMockClerkJWT stands in for Clerk's JWKS verification.
func VerifyMockClerkJWT(ctx context.Context, token string) (string, error) {
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testClerkKey), nil
	})
	if err != nil {
		return "", err
	}
	return parsed.Claims.GetSubject()
}

// MockClerkWebhookPayload creates a mock webhook payload
func MockClerkWebhookPayload(eventType, clerkID, email string) []byte {
	var data map[string]interface{}

	switch eventType {
	case "user.created", "user.updated":
		first := "Test"
		if eventType == "user.updated" {
			first = "Updated"
		}
		data = map[string]interface{}{
			"id":         clerkID,
			"first_name": first,
			"last_name":  "User",
			"email_addresses": []map[string]interface{}{{
				"id":            "email_123",
				"email_address": email,
				"verification":  map[string]string{"status": "verified"},
			}},
			"primary_email_address_id": "email_123",
			"username":                 "testuser",
			"image_url":                "https://example.com/" + first + ".jpg",
		}
	case "user.deleted":
		data = map[string]interface{}{"id": clerkID, "deleted": true}
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"data":   data,
		"object": "event",
		"type":   eventType,
	})
	return payload
}

// PostWebhook delivers body signed with secret at ts. An empty secret sends
// no signature headers.
func PostWebhook(t *testing.T, url, secret string, body []byte, ts time.Time) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, url+"/webhooks/clerk", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	if secret != "" {
		id := "msg_" + strconv.FormatInt(ts.UnixNano(), 36)
		sig, err := clerk.SignWebhook(secret, id, ts, body)
		require.NoError(t, err)
		req.Header.Set(clerk.HeaderID, id)
		req.Header.Set(clerk.HeaderTimestamp, strconv.FormatInt(ts.Unix(), 10))
		req.Header.Set(clerk.HeaderSignature, sig)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
