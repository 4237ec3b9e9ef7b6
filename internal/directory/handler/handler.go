package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"itrust/internal/account"
	"itrust/internal/platform/metrics"
	"itrust/internal/platform/middleware"
	"itrust/internal/transport/http/shared"
	dErrors "itrust/pkg/domain-errors"
)

// Service defines the interface for directory search.
type Service interface {
	Search(ctx context.Context, query string, limit int) ([]*account.Account, error)
}

// Handler serves public directory search.
type Handler struct {
	logger    *slog.Logger
	directory Service
	metrics   *metrics.Metrics
}

// New creates a new directory Handler.
func New(directory Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{logger: logger, directory: directory, metrics: metrics}
}

// Register registers the search routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(g chi.Router) {
		g.Use(middleware.Recovery(h.logger))
		g.Use(middleware.RequestID)
		g.Use(middleware.Logger(h.logger))
		g.Use(middleware.Timeout(10 * time.Second))
		g.Use(middleware.ContentTypeJSON)
		g.Use(middleware.LatencyMiddleware(h.metrics))
		g.Get("/api/search", h.handleSearch)
	})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	matches, err := h.directory.Search(ctx, r.URL.Query().Get("q"), limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "directory search failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "search unavailable"))
		return
	}

	views := make([]account.View, 0, len(matches))
	for _, a := range matches {
		views = append(views, account.NewView(a))
	}
	shared.WriteJSON(w, http.StatusOK, views)
}
