package middleware

import (
	"assignmentgateway/internal/ctxdata"
	"assignmentgateway/internal/domain"
	"assignmentgateway/internal/errdefs"
	"assignmentgateway/internal/logging"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

type UserResolver interface {
	CurrentUser(ctx context.Context) (*domain.User, error)
}

// NewAuthMiddleware resolves the caller from the Authorization header and
// only lets instructors through. The header is kept in the context so every
// outbound boundary call forwards it.
func NewAuthMiddleware(users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			header := r.Header.Get("Authorization")
			if header == "" {
				if logger, ok := logging.GetFromContext(ctx); ok {
					logger.Info(ctx, "no authorization header", zap.String("path", r.URL.Path))
				}
				writeError(w, http.StatusUnauthorized, "authorization required")
				return
			}

			ctx = ctxdata.WithAuthHeader(ctx, header)
			user, err := users.CurrentUser(ctx)
			if err != nil {
				if errors.Is(err, errdefs.ErrPermissionDenied) {
					if logger, ok := logging.GetFromContext(ctx); ok {
						logger.Info(ctx, "permission denied", zap.String("path", r.URL.Path))
					}
					writeError(w, http.StatusUnauthorized, "authorization required")
					return
				}
				if logger, ok := logging.GetFromContext(ctx); ok {
					logger.Error(
						ctx, "error while resolving current user",
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
						zap.Error(err),
					)
				}
				writeError(w, http.StatusBadGateway, "failed to verify user")
				return
			}

			if user.Role != domain.UserRoleTeacher {
				if logger, ok := logging.GetFromContext(ctx); ok {
					logger.Info(ctx, "instructor role required", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
				}
				writeError(w, http.StatusForbidden, "instructor role required")
				return
			}

			ctx = ctxdata.WithUserID(ctx, user.ID)
			ctx = ctxdata.WithUserRole(ctx, string(user.Role))
			r.Header.Set("X-User-Id", strconv.FormatInt(user.ID, 10))
			r.Header.Set("X-User-Role", string(user.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	resp, _ := json.Marshal(map[string]string{"error": message})
	w.Write(resp)
}
