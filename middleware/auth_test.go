package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticResolver map[string]uuid.UUID

func (s staticResolver) UserIDByClerkID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	if id, ok := s[clerkID]; ok {
		return id, nil
	}
	return uuid.Nil, errors.New("not found")
}

func fakeVerifier(ctx context.Context, token string) (string, error) {
	if token == "good-token" {
		return "user_clerk", nil
	}
	if token == "orphan-token" {
		return "user_orphan", nil
	}
	return "", errors.New("bad token")
}

func echoUser(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetUserID(r.Context())
		require.True(t, ok)
		w.Write([]byte(id.String()))
	})
}

func TestRequireUser(t *testing.T) {
	sessions := NewSessionManager("secret", time.Hour, false)
	clerkUser := uuid.New()
	auth := NewAuthenticator(sessions, staticResolver{"user_clerk": clerkUser}, fakeVerifier)
	h := auth.RequireUser(echoUser(t))

	t.Run("no credentials", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"error":"User not authenticated"}`, rr.Body.String())
	})

	t.Run("session cookie", func(t *testing.T) {
		userID := uuid.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(issuedCookie(t, sessions, userID))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, userID.String(), rr.Body.String())
	})

	t.Run("clerk bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, clerkUser.String(), rr.Body.String())
	})

	for name, header := range map[string]string{
		"missing bearer prefix": "good-token",
		"invalid token":         "Bearer nope",
		"unknown clerk user":    "Bearer orphan-token",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", header)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestRequireUserWithoutClerk(t *testing.T) {
	auth := NewAuthenticator(NewSessionManager("secret", time.Hour, false), nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rr := httptest.NewRecorder()
	auth.RequireUser(echoUser(t)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGetUserID(t *testing.T) {
	_, ok := GetUserID(context.Background())
	assert.False(t, ok)

	_, ok = GetUserID(WithUserID(context.Background(), uuid.Nil))
	assert.False(t, ok)

	id := uuid.New()
	got, ok := GetUserID(WithUserID(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)
}
