package testutil

import (
	"context"
	"net/http"

	"itrust/internal/platform/middleware"
	"itrust/pkg/domain"
)

// WithAccount adds an account id to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithAccount(req *http.Request, accountID domain.AccountID) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeyAccountID, accountID)
	return req.WithContext(ctx)
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
