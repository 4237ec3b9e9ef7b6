package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"itrust/pkg/domain"
)

// TokenValidator validates access tokens minted by the external identity
// collaborator. The core never authenticates callers itself; it only
// verifies and extracts the account behind a request.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims represents the claims we expect from the token validator.
type TokenClaims struct {
	AccountID domain.AccountID
	SessionID string
}

type contextKeyAccountID struct{}
type contextKeySessionID struct{}

// Context keys are exported for handlers and tests.
var (
	ContextKeyAccountID = contextKeyAccountID{}
	ContextKeySessionID = contextKeySessionID{}
)

// GetAccountID retrieves the authenticated account id from the context.
func GetAccountID(ctx context.Context) domain.AccountID {
	accountID, ok := ctx.Value(ContextKeyAccountID).(domain.AccountID)
	if !ok {
		return domain.NilAccountID
	}
	return accountID
}

// GetSessionID retrieves the session id from the context.
func GetSessionID(ctx context.Context) string {
	sessionID, ok := ctx.Value(ContextKeySessionID).(string)
	if !ok {
		return ""
	}
	return sessionID
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's account id in the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, ContextKeyAccountID, claims.AccountID)
			ctx = context.WithValue(ctx, ContextKeySessionID, claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Invalid or expired token"}`))
}
