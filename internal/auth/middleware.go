package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/study-cards/internal/apperror"
	"github.com/sakif/study-cards/internal/model"
)

// contextKey is unexported so no other package can read or shadow our values.
type contextKey string

const userIDKey contextKey = "userID"

// UserLookup is the part of the user repository RequireAuth needs.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It reads "Authorization: Bearer <token>", validates the JWT and checks the
// user still exists (a token outlives a deleted account otherwise). On
// success the user ID is stored in the request context; on failure the chain
// stops with 401 and one of:
//
//	"Not authorized, no token"
//	"Not authorized, token failed"
//	"Not authorized, user not found"
//
// A lookup failure other than apperror.ErrNotFound is logged and answered
// with 500.
func RequireAuth(tokens *TokenService, users UserLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "Not authorized, no token")
				return
			}

			userID, err := tokens.Validate(raw)
			if err != nil {
				logger.Debug("rejected bearer token",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				unauthorized(w, "Not authorized, token failed")
				return
			}

			if _, err := users.GetUserByID(r.Context(), userID); err != nil {
				if !errors.Is(err, apperror.ErrNotFound) {
					logger.Error("user lookup failed",
						slog.String("userID", userID),
						slog.String("error", err.Error()),
					)
					writeFailure(w, http.StatusInternalServerError, "Internal server error")
					return
				}
				logger.Info("token for unknown user", slog.String("userID", userID))
				unauthorized(w, "Not authorized, user not found")
				return
			}

			ctx := WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context. It returns ("", false) outside RequireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// bearerToken extracts the token from the Authorization header. The scheme
// is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	writeFailure(w, http.StatusUnauthorized, msg)
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "msg": msg})
}
