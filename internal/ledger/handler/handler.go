package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"itrust/internal/ledger"
	"itrust/internal/platform/metrics"
	"itrust/internal/platform/middleware"
	"itrust/internal/transport/http/shared"
	"itrust/pkg/domain"
	dErrors "itrust/pkg/domain-errors"
)

// Service defines the interface for vouch operations.
type Service interface {
	Vouch(ctx context.Context, voucherID, voucheeID domain.AccountID, idempotencyKey string) (*ledger.VouchResult, error)
	Cost() domain.TrustAmount
}

// Handler handles vouch-related endpoints.
type Handler struct {
	logger    *slog.Logger
	vouches   Service
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

// New creates a new vouch Handler.
func New(vouches Service, logger *slog.Logger, metrics *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		vouches:   vouches,
		metrics:   metrics,
		validator: validator,
	}
}

// Register registers the vouch routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(g chi.Router) {
		g.Use(middleware.Recovery(h.logger))
		g.Use(middleware.RequestID)
		g.Use(middleware.Logger(h.logger))
		g.Use(middleware.Timeout(30 * time.Second))
		g.Use(middleware.ContentTypeJSON)
		g.Use(middleware.LatencyMiddleware(h.metrics))

		g.Get("/api/vouch/cost", h.handleCost)

		g.Group(func(auth chi.Router) {
			auth.Use(middleware.RequireAuth(h.validator, h.logger))
			auth.Post("/api/vouch", h.handleVouch)
		})
	})
}

type vouchRequest struct {
	VoucheeID string `json:"voucheeId"`
}

// handleVouch spends the fixed cost from the authenticated account to
// vouch for the requested account.
func (h *Handler) handleVouch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	voucherID := middleware.GetAccountID(ctx)
	if voucherID.IsNil() {
		// This should never happen if RequireAuth middleware is configured correctly
		h.logger.ErrorContext(ctx, "account id missing from context despite auth middleware",
			"request_id", requestID,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req vouchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid vouch request body",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	voucheeID, err := domain.ParseAccountID(req.VoucheeID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.vouches.Vouch(ctx, voucherID, voucheeID, r.Header.Get("Idempotency-Key"))
	if err != nil {
		switch dErrors.CodeOf(err) {
		case dErrors.CodeInternal:
			h.logger.ErrorContext(ctx, "vouch failed",
				"request_id", requestID,
				"error", err.Error(),
			)
			shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "vouch failed"))
		default:
			h.logger.WarnContext(ctx, "vouch rejected",
				"request_id", requestID,
				"error", err.Error(),
			)
			shared.WriteError(w, err)
		}
		return
	}

	shared.WriteJSON(w, http.StatusOK, result)
}

// handleCost exposes the fixed per-vouch cost for pre-submit display.
func (h *Handler) handleCost(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"cost": h.vouches.Cost(),
	})
}
