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
	"itrust/internal/ranking"
	"itrust/internal/transport/http/shared"
	dErrors "itrust/pkg/domain-errors"
)

// Service defines the interface for leaderboard queries.
type Service interface {
	TopN(ctx context.Context, limit int) ([]ranking.Entry, error)
}

// Handler serves the public leaderboard.
type Handler struct {
	logger   *slog.Logger
	rankings Service
	metrics  *metrics.Metrics
}

// New creates a new leaderboard Handler.
func New(rankings Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{logger: logger, rankings: rankings, metrics: metrics}
}

// Register registers the leaderboard routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(g chi.Router) {
		g.Use(middleware.Recovery(h.logger))
		g.Use(middleware.RequestID)
		g.Use(middleware.Logger(h.logger))
		g.Use(middleware.Timeout(10 * time.Second))
		g.Use(middleware.ContentTypeJSON)
		g.Use(middleware.LatencyMiddleware(h.metrics))
		g.Get("/api/leaderboard", h.handleLeaderboard)
	})
}

type leaderboardRow struct {
	Account account.View `json:"account"`
	Rank    int          `json:"rank"`
}

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := ranking.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	entries, err := h.rankings.TopN(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "leaderboard query failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "leaderboard unavailable"))
		return
	}

	rows := make([]leaderboardRow, 0, len(entries))
	for _, e := range entries {
		a := e.Account
		rows = append(rows, leaderboardRow{Account: account.NewView(&a), Rank: e.Rank})
	}
	shared.WriteJSON(w, http.StatusOK, rows)
}
