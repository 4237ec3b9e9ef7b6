package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"itrust/internal/activity"
	"itrust/internal/platform/metrics"
	"itrust/internal/platform/middleware"
	"itrust/internal/transport/http/shared"
	"itrust/pkg/domain"
	dErrors "itrust/pkg/domain-errors"
)

// Service defines the interface for activity feed queries.
type Service interface {
	Recent(ctx context.Context, accountID domain.AccountID, limit int) ([]activity.Entry, error)
}

// Handler serves the authenticated account's activity feed.
type Handler struct {
	logger     *slog.Logger
	activities Service
	metrics    *metrics.Metrics
	validator  middleware.TokenValidator
}

// New creates a new activity Handler.
func New(activities Service, logger *slog.Logger, metrics *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:     logger,
		activities: activities,
		metrics:    metrics,
		validator:  validator,
	}
}

// Register registers the activity routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(g chi.Router) {
		g.Use(middleware.Recovery(h.logger))
		g.Use(middleware.RequestID)
		g.Use(middleware.Logger(h.logger))
		g.Use(middleware.Timeout(10 * time.Second))
		g.Use(middleware.ContentTypeJSON)
		g.Use(middleware.LatencyMiddleware(h.metrics))
		g.Use(middleware.RequireAuth(h.validator, h.logger))
		g.Get("/api/user/activities", h.handleActivities)
	})
}

func (h *Handler) handleActivities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID := middleware.GetAccountID(ctx)
	if accountID.IsNil() {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	entries, err := h.activities.Recent(ctx, accountID, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "activity feed query failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "activity feed unavailable"))
		return
	}
	if entries == nil {
		entries = []activity.Entry{}
	}
	shared.WriteJSON(w, http.StatusOK, entries)
}
