package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/BanSimplified567/isladelcafe2025-sub000/api/responses"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/auth"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/config"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"
	pkgerrors "github.com/BanSimplified567/isladelcafe2025-sub000/pkg/errors"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/logger"
)

// Auth requires a valid bearer token.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return tokenGate(cfg, logg, false)
}

// OptionalAuth admits guests but still rejects a token that fails to parse.
func OptionalAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return tokenGate(cfg, logg, true)
}

func tokenGate(cfg config.JWTConfig, logg *logger.Logger, guestsAllowed bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearer(r.Header.Get("Authorization"))
			if raw == "" {
				if guestsAllowed {
					next.ServeHTTP(w, r)
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := auth.ParseAccessToken(cfg, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			userID := claims.UserID.String()
			ctx := WithActor(r.Context(), userID, claims.Role)
			if logg != nil {
				ctx = logg.WithFields(logg.WithUserID(ctx, userID), map[string]any{"actor_role": claims.Role})
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearer(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if ok && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(token)
	}
	return strings.TrimSpace(header)
}

// RequireRole admits only the listed roles. It runs after Auth.
func RequireRole(logg *logger.Logger, roles ...enums.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(roles, RoleFromContext(r.Context())) {
				next.ServeHTTP(w, r)
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required").
				WithDetails(map[string]any{"required": roles}))
		})
	}
}
