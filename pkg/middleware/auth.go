package middleware

import (
	"context"
	"net/http"
	"strings"

	"evcharge/pkg/auth"
	apperrors "evcharge/pkg/errors"
	httputil "evcharge/pkg/http"
	"evcharge/pkg/logger"
)

const UserIDKey contextKey = "user_id"

type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// Authenticate requires a valid bearer token and stores its subject as the user id.
func Authenticate(tokens TokenValidator, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				_ = httputil.WriteError(w, apperrors.Unauthorized("Missing or malformed authorization header"))
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				log.Debug("Rejected token",
					"request_id", RequestIDFromContext(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				_ = httputil.WriteError(w, apperrors.Unauthorized("Invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.Subject)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}
