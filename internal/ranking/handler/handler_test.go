package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itrust/internal/account"
	"itrust/internal/ranking"
	"itrust/pkg/domain"
)

func newLeaderboardRouter(t *testing.T) (http.Handler, *account.MemoryStore) {
	t.Helper()
	store := account.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := ranking.NewService(store, logger)

	h := New(svc, logger, nil)
	r := chi.NewRouter()
	h.Register(r)
	return r, store
}

func seedAccount(t *testing.T, store *account.MemoryStore, name string, reputation, joinOrder int64) {
	t.Helper()
	err := store.Create(context.Background(), &account.Account{
		ID:          domain.NewAccountID(),
		DisplayName: name,
		Reputation:  reputation,
		JoinOrder:   joinOrder,
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)
}

func TestLeaderboardEndpoint(t *testing.T) {
	router, store := newLeaderboardRouter(t)
	seedAccount(t, store, "Alice", 5, 2)
	seedAccount(t, store, "Bob", 5, 1)
	seedAccount(t, store, "Carol", 1, 3)

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var rows []struct {
		Account struct {
			DisplayName string `json:"displayName"`
			Reputation  int64  `json:"reputation"`
		} `json:"account"`
		Rank int `json:"rank"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
	require.Len(t, rows, 3)

	assert.Equal(t, "Bob", rows[0].Account.DisplayName)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, "Alice", rows[1].Account.DisplayName)
	assert.Equal(t, 2, rows[1].Rank)
	assert.Equal(t, "Carol", rows[2].Account.DisplayName)
	assert.Equal(t, 3, rows[2].Rank)
}

func TestLeaderboardLimitParam(t *testing.T) {
	router, store := newLeaderboardRouter(t)
	for i := int64(0); i < 5; i++ {
		seedAccount(t, store, "member", i, i+1)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard?limit=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var rows []json.RawMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
	assert.Len(t, rows, 2)
}

func TestLeaderboardRejectsBadLimit(t *testing.T) {
	router, _ := newLeaderboardRouter(t)

	for _, raw := range []string{"abc", "0", "-5"} {
		req := httptest.NewRequest(http.MethodGet, "/api/leaderboard?limit="+raw, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", raw)
	}
}

func TestLeaderboardEmpty(t *testing.T) {
	router, _ := newLeaderboardRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var rows []json.RawMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
	assert.Empty(t, rows)
}
