package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Pranav-7262/mern-recipe-app/internal/app/service"
	"github.com/Pranav-7262/mern-recipe-app/internal/common"
	"github.com/Pranav-7262/mern-recipe-app/internal/common/security"
	"github.com/Pranav-7262/mern-recipe-app/internal/domain/model"
	"github.com/Pranav-7262/mern-recipe-app/internal/platform/logging"
	"github.com/Pranav-7262/mern-recipe-app/internal/platform/metrics"
)

type contextKey string

const UserCtxKey contextKey = "user"

// Identifier resolves a bearer token to the user it was issued for.
type Identifier interface {
	Identify(ctx context.Context, token string) (*model.User, error)
}

const (
	msgNoToken     = "Not authorized, no token"
	msgTokenFailed = "Not authorized, token failed"
)

// Authenticator rejects requests without a valid bearer token for an existing
// user and stores that user in the request context. Token failure details are
// logged, never returned.
func Authenticator(ids Identifier, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := security.TokenFromHeader(r)
			if token == "" {
				m.RejectAuth(metrics.ReasonMissingToken)
				common.RespondWithError(w, http.StatusUnauthorized, msgNoToken)
				return
			}

			user, err := ids.Identify(r.Context(), token)
			if err != nil {
				lg := logging.From(r.Context())
				switch {
				case errors.Is(err, service.ErrUnknownSubject):
					m.RejectAuth(metrics.ReasonUnknownUser)
					lg.Info("auth_rejected", slog.String("reason", metrics.ReasonUnknownUser), slog.String("err", err.Error()))
					common.RespondWithError(w, http.StatusUnauthorized, msgTokenFailed)
				case errors.Is(err, common.ErrUnauthorized):
					m.RejectAuth(metrics.ReasonInvalidToken)
					lg.Info("auth_rejected", slog.String("reason", metrics.ReasonInvalidToken), slog.String("err", err.Error()))
					common.RespondWithError(w, http.StatusUnauthorized, msgTokenFailed)
				default:
					lg.Error("auth_lookup_failed", slog.String("err", err.Error()))
					common.RespondWithError(w, http.StatusInternalServerError, "Server error")
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, UserCtxKey, user)
}

// Helper to get the authenticated user from context
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(UserCtxKey).(*model.User)
	return user, ok && user != nil
}
