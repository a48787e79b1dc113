package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kmatsui/go-todo-service/internal/auth"
	"github.com/kmatsui/go-todo-service/internal/model"
)

type contextKey string

const subjectKey contextKey = "auth.subject"

// RequireAuth validates the bearer token on incoming requests and stores the
// token subject in the request context. Expired and otherwise invalid tokens
// are logged distinctly but both answer with the same 401 body.
func RequireAuth(codec *auth.TokenCodec, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) {
				respondError(w, http.StatusUnauthorized, "missing or malformed authorization header")
				return
			}

			claims, err := codec.Decode(strings.TrimPrefix(header, prefix))
			if err != nil {
				reason := "invalid"
				if errors.Is(err, model.ErrTokenExpired) {
					reason = "expired"
				}
				logger.WarnContext(r.Context(), "token rejected", slog.String("reason", reason))
				respondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			subject, ok := auth.Subject(claims)
			if !ok {
				respondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SubjectFromContext returns the authenticated subject set by RequireAuth.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectKey).(string)
	return subject, ok
}
