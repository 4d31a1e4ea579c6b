package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SessionCookieName = "sunset_session"
	sessionIssuer     = "sunset-companion-api"
)

var ErrNoSession = errors.New("no session")

type sessionClaims struct {
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}

// SessionManager issues and reads the signed session cookie.
type SessionManager struct {
	secret []byte
	maxAge time.Duration
	secure bool
}

func NewSessionManager(secret string, maxAge time.Duration, secure bool) *SessionManager {
	return &SessionManager{secret: []byte(secret), maxAge: maxAge, secure: secure}
}

func (m *SessionManager) token(userID uuid.UUID, now time.Time) (string, error) {
	claims := &sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    sessionIssuer,
			Subject:   userID.String(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Issue signs a session for userID and sets it as a cookie on w.
func (m *SessionManager) Issue(w http.ResponseWriter, userID uuid.UUID) error {
	now := time.Now()
	token, err := m.token(userID, now)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  now.Add(m.maxAge),
		MaxAge:   int(m.maxAge.Seconds()),
	})
	return nil
}

func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// UserID returns the user carried by the request's session cookie.
func (m *SessionManager) UserID(r *http.Request) (uuid.UUID, error) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return uuid.Nil, ErrNoSession
	}
	return m.Validate(c.Value)
}

func (m *SessionManager) Validate(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&sessionClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.UserID == uuid.Nil {
		return uuid.Nil, errors.New("invalid session")
	}
	return claims.UserID, nil
}
