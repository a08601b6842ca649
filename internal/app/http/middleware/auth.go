package middleware

import (
	"context"
	"net/http"
	"strings"

	"valour-interiors/quotes_backend/internal/app/http/responses"
	"valour-interiors/quotes_backend/internal/domain/auth"
	apperrors "valour-interiors/quotes_backend/internal/pkg/errors"
	"valour-interiors/quotes_backend/internal/pkg/logger"
)

type TokenVerifier interface {
	Authenticate(token string) (auth.Identity, error)
}

type ctxKey string

const ctxIdentity ctxKey = "identity"

// Authenticate requires a bearer token and stores the caller identity in the
// request context.
func Authenticate(verifier TokenVerifier, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get("Authorization"))
			if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
				token = strings.TrimSpace(token[7:])
			} else {
				token = ""
			}
			if token == "" {
				responses.WriteError(r.Context(), log, w, apperrors.New(apperrors.CodeUnauthorized, "Missing bearer token."))
				return
			}

			id, err := verifier.Authenticate(token)
			if err != nil {
				responses.WriteError(r.Context(), log, w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxIdentity, id)
			if log != nil {
				ctx = log.WithUserID(ctx, id.ID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(ctxIdentity).(auth.Identity)
	return id, ok
}
