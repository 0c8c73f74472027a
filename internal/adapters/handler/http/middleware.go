package http

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gatherly/api/internal/core/domain"
)

type contextKey string

const (
	CallerKey contextKey = "caller"
	UserIDKey contextKey = "userID"
)

// CallerContext resolves the request identity and stores it as a
// domain.Caller. A valid access_token cookie yields a registered caller;
// otherwise the guest_id cookie or X-Guest-ID header yields a guest one.
// Requests with neither carry an empty caller, so handlers decide whether
// identity is required.
func CallerContext(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := domain.Caller{}

			if cookie, err := r.Cookie("access_token"); err == nil && cookie.Value != "" {
				if userID, ok := parseAccessToken(cookie.Value, jwtSecret); ok {
					caller.UserID = &userID
				}
			}

			if caller.UserID == nil {
				caller.GuestID = guestID(r)
			}

			ctx := context.WithValue(r.Context(), CallerKey, caller)
			if caller.UserID != nil {
				ctx = context.WithValue(ctx, UserIDKey, *caller.UserID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests whose caller is not a registered user.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Context().Value(UserIDKey).(uuid.UUID); !ok {
			http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAPISecret guards internal endpoints behind a bearer secret.
func RequireAPISecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || secret == "" ||
				subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseAccessToken(tokenString, secret string) (uuid.UUID, bool) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, false
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

func guestID(r *http.Request) string {
	if cookie, err := r.Cookie("guest_id"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return r.Header.Get("X-Guest-ID")
}

func callerFromRequest(r *http.Request) domain.Caller {
	caller, _ := r.Context().Value(CallerKey).(domain.Caller)
	return caller
}

func adminTokenFromRequest(r *http.Request) string {
	return r.Header.Get("X-Admin-Token")
}
