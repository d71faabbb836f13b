package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"hevruta/hevruta/config"
	"hevruta/hevruta/sources/psql/models"
	"hevruta/hevruta/utils/apperrors"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	UserEmailKey contextKey = "user_email"
	UserRoleKey  contextKey = "user_role"
)

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apperrors.Envelope{
		Error: apperrors.ErrorBody{Kind: "unauthorized", Message: message},
	})
}

// AuthMiddleware verifies the Bearer token and stashes the caller's
// email and role in the request context.
func AuthMiddleware(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeAuthError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}
			parts := strings.Split(auth, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeAuthError(w, http.StatusUnauthorized, "malformed authorization header")
				return
			}
			claims, err := ParseToken(parts[1], cfg.JWTSecret)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), UserEmailKey, claims.Email)
			ctx = context.WithValue(ctx, UserRoleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin must sit behind AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, _ := r.Context().Value(UserRoleKey).(string)
		if role != models.RoleAdmin {
			writeAuthError(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type Claims struct {
	Email string
	Role  string
}

// ParseToken validates an HS256 token and extracts the identity claims.
// Shared with the websocket route, which carries the token in-band.
func ParseToken(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	email, ok := mapClaims["email"].(string)
	if !ok || email == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	role, _ := mapClaims["role"].(string)
	return &Claims{Email: email, Role: role}, nil
}
