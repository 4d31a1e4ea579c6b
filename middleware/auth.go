package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	clerkjwt "github.com/clerk/clerk-sdk-go/v2/jwt"
	"github.com/google/uuid"
)

type contextKey string

const UserIDKey contextKey = "userID"

// ClerkUserResolver maps a verified Clerk subject to a local user id.
type ClerkUserResolver interface {
	UserIDByClerkID(ctx context.Context, clerkID string) (uuid.UUID, error)
}

// ClerkVerifier checks a Clerk session token and returns its subject.
type ClerkVerifier func(ctx context.Context, token string) (string, error)

// VerifyClerkToken verifies token with the key set through clerk.SetKey.
func VerifyClerkToken(ctx context.Context, token string) (string, error) {
	claims, err := clerkjwt.Verify(ctx, &clerkjwt.VerifyParams{
		Token: token,
	})
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

type Authenticator struct {
	sessions *SessionManager
	users    ClerkUserResolver
	verify   ClerkVerifier
}

// NewAuthenticator accepts session cookies, and Clerk bearer tokens when
// verify is non-nil.
func NewAuthenticator(sessions *SessionManager, users ClerkUserResolver, verify ClerkVerifier) *Authenticator {
	return &Authenticator{sessions: sessions, users: users, verify: verify}
}

// RequireUser rejects requests without a valid session and stores the
// user id in the request context.
func (a *Authenticator) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, err := a.sessions.UserID(r); err == nil {
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
			return
		} else if err != ErrNoSession {
			log.Printf("Auth: rejected session cookie: %v", err)
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || a.verify == nil || a.users == nil {
			respondWithError(w, http.StatusUnauthorized, "User not authenticated")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			respondWithError(w, http.StatusUnauthorized, "Invalid authorization format. Use 'Bearer <token>'")
			return
		}

		clerkID, err := a.verify(r.Context(), token)
		if err != nil {
			log.Printf("Auth: token verification failed: %v", err)
			respondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		userID, err := a.users.UserIDByClerkID(r.Context(), clerkID)
		if err != nil {
			log.Printf("Auth: no local user for clerk id %s: %v", clerkID, err)
			respondWithError(w, http.StatusUnauthorized, "User not authenticated")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID extracts the authenticated user id from context
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok && userID != uuid.Nil
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
