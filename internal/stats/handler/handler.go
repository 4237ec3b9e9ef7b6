package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"itrust/internal/platform/metrics"
	"itrust/internal/platform/middleware"
	"itrust/internal/stats"
	"itrust/internal/transport/http/shared"
	"itrust/pkg/domain"
	dErrors "itrust/pkg/domain-errors"
)

// Service defines the interface for account stats queries.
type Service interface {
	For(ctx context.Context, id domain.AccountID) (*stats.Stats, error)
}

// Handler serves dashboard stats for the caller and for arbitrary accounts.
type Handler struct {
	logger    *slog.Logger
	stats     Service
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

// New creates a new stats Handler.
func New(stats Service, logger *slog.Logger, metrics *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		stats:     stats,
		metrics:   metrics,
		validator: validator,
	}
}

// Register registers the stats routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(g chi.Router) {
		g.Use(middleware.Recovery(h.logger))
		g.Use(middleware.RequestID)
		g.Use(middleware.Logger(h.logger))
		g.Use(middleware.Timeout(10 * time.Second))
		g.Use(middleware.ContentTypeJSON)
		g.Use(middleware.LatencyMiddleware(h.metrics))

		g.Get("/api/users/{accountID}/stats", h.handleAccountStats)

		g.Group(func(auth chi.Router) {
			auth.Use(middleware.RequireAuth(h.validator, h.logger))
			auth.Get("/api/user/stats", h.handleOwnStats)
		})
	})
}

// handleOwnStats serves the authenticated account's dashboard figures.
func (h *Handler) handleOwnStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := middleware.GetAccountID(ctx)
	if accountID.IsNil() {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	h.serveStats(w, r, accountID)
}

// handleAccountStats serves any account's public figures by id.
func (h *Handler) handleAccountStats(w http.ResponseWriter, r *http.Request) {
	accountID, err := domain.ParseAccountID(chi.URLParam(r, "accountID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.serveStats(w, r, accountID)
}

func (h *Handler) serveStats(w http.ResponseWriter, r *http.Request, accountID domain.AccountID) {
	ctx := r.Context()
	result, err := h.stats.For(ctx, accountID)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeNotFound) {
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "stats query failed",
			"request_id", middleware.GetRequestID(ctx),
			"account_id", accountID.String(),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "stats unavailable"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, result)
}
