package middleware

import (
	"net/http"

	"agrishop-be/internal/apperror"
	"agrishop-be/internal/auth"
	"agrishop-be/internal/logger"

	"go.uber.org/zap"
)

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// RequireAdmin rejects requests without a valid ADMIN token and stores the
// claims in the request context.
func RequireAdmin(tokens TokenParser, onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.FromCtx(r.Context())

			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				onError(w, r, apperror.Unauthorized("missing access token"))
				return
			}

			claims, err := tokens.Parse(tokenStr)
			if err != nil {
				log.Warn("rejected admin token", zap.Error(err))
				onError(w, r, err)
				return
			}
			if !claims.IsAdmin() {
				log.Warn("token without admin role", zap.String("username", claims.Username))
				onError(w, r, apperror.Unauthorized("admin role required"))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}
