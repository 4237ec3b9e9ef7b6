package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itrust/internal/stats"
	"itrust/pkg/domain"
	dErrors "itrust/pkg/domain-errors"
	"itrust/pkg/testutil"
)

type stubService struct {
	stats *stats.Stats
	err   error
}

func (s stubService) For(_ context.Context, id domain.AccountID) (*stats.Stats, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := *s.stats
	out.AccountID = id
	return &out, nil
}

func newStatsRouter(t *testing.T, svc Service) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(svc, logger, nil, nil)
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func TestAccountStatsEndpoint(t *testing.T) {
	svc := stubService{stats: &stats.Stats{
		DisplayName:     "Alice",
		Reputation:      3,
		TrustBalance:    domain.TrustFromMilli(800),
		Rank:            2,
		VouchesGiven:    1,
		VouchesReceived: 3,
	}}
	router := newStatsRouter(t, svc)
	accountID := domain.NewAccountID()

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+accountID.String()+"/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		AccountID    string `json:"accountId"`
		DisplayName  string `json:"displayName"`
		TrustBalance string `json:"trustBalance"`
		Rank         int    `json:"rank"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, accountID.String(), resp.AccountID)
	assert.Equal(t, "Alice", resp.DisplayName)
	assert.Equal(t, "0.8", resp.TrustBalance)
	assert.Equal(t, 2, resp.Rank)
}

func TestAccountStatsInvalidID(t *testing.T) {
	router := newStatsRouter(t, stubService{stats: &stats.Stats{}})

	req := httptest.NewRequest(http.MethodGet, "/api/users/not-a-uuid/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccountStatsNotFound(t *testing.T) {
	svc := stubService{err: dErrors.New(dErrors.CodeNotFound, "account not found")}
	router := newStatsRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+domain.NewAccountID().String()+"/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOwnStats(t *testing.T) {
	svc := stubService{stats: &stats.Stats{DisplayName: "Alice"}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(svc, logger, nil, nil)
	accountID := domain.NewAccountID()

	req := httptest.NewRequest(http.MethodGet, "/api/user/stats", nil)
	req = testutil.WithAccount(req, accountID)
	rec := httptest.NewRecorder()
	h.handleOwnStats(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		AccountID string `json:"accountId"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, accountID.String(), resp.AccountID)
}

func TestOwnStatsMissingAuthContext(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(stubService{stats: &stats.Stats{}}, logger, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/user/stats", nil)
	rec := httptest.NewRecorder()
	h.handleOwnStats(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
