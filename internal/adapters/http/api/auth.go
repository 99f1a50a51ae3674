package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const userIDKey contextKey = "userID"

// UserHeader carries the acting user when no token secret is configured.
const UserHeader = "X-User-ID"

// Authenticator resolves the acting user of a request. With a secret it
// requires an HS256 bearer token and takes the user from the sub claim.
// Without one it trusts the X-User-ID header.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator creates an authenticator for secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Middleware rejects unauthenticated requests with 401 and stores the
// acting user in the request context.
func (a *Authenticator) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.resolve(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", err)
			return
		}
		if rw, ok := w.(*responseWriter); ok {
			rw.userID = userID
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	}
}

func (a *Authenticator) resolve(r *http.Request) (string, error) {
	if len(a.secret) == 0 {
		userID := strings.TrimSpace(r.Header.Get(UserHeader))
		if userID == "" {
			return "", ErrMissingUser
		}
		return userID, nil
	}

	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMissingToken
	}
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(parts[1], claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || tok == nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrMissingUser
	}
	return claims.Subject, nil
}

// UserID returns the acting user stored by Middleware.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
