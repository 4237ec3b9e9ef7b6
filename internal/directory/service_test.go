package directory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itrust/internal/account"
	"itrust/pkg/domain"
)

func seedNamed(t *testing.T, store *account.MemoryStore, name string, reputation, joinOrder int64) {
	t.Helper()
	a := &account.Account{
		ID:          domain.NewAccountID(),
		DisplayName: name,
		Reputation:  reputation,
		JoinOrder:   joinOrder,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, store.Create(context.Background(), a))
}

func TestSearchShortQueryIsNoop(t *testing.T) {
	store := account.NewMemoryStore()
	seedNamed(t, store, "Alice", 1, 1)
	svc := NewService(store)
	ctx := context.Background()

	for _, q := range []string{"", "a", " a ", "\t"} {
		results, err := svc.Search(ctx, q, 10)
		require.NoError(t, err)
		assert.Empty(t, results, "query %q", q)
	}
}

func TestSearchCaseInsensitiveSubstring(t *testing.T) {
	store := account.NewMemoryStore()
	seedNamed(t, store, "Alice", 2, 2)
	seedNamed(t, store, "Alan", 7, 3)
	seedNamed(t, store, "Bob", 9, 1)
	svc := NewService(store)

	results, err := svc.Search(context.Background(), "AL", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Substring matches rank by reputation, not name.
	assert.Equal(t, "Alan", results[0].DisplayName)
	assert.Equal(t, "Alice", results[1].DisplayName)
}

func TestSearchExactMatchFirst(t *testing.T) {
	store := account.NewMemoryStore()
	seedNamed(t, store, "Sam", 0, 2)
	seedNamed(t, store, "Samantha", 50, 1)
	svc := NewService(store)

	results, err := svc.Search(context.Background(), "sam", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// The exact name wins even against a higher reputation.
	assert.Equal(t, "Sam", results[0].DisplayName)
	assert.Equal(t, "Samantha", results[1].DisplayName)
}

func TestSearchTieBreakByJoinOrder(t *testing.T) {
	store := account.NewMemoryStore()
	seedNamed(t, store, "Riley A", 5, 2)
	seedNamed(t, store, "Riley B", 5, 1)
	svc := NewService(store)

	results, err := svc.Search(context.Background(), "riley", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Riley B", results[0].DisplayName)
	assert.Equal(t, "Riley A", results[1].DisplayName)
}

func TestSearchLimit(t *testing.T) {
	store := account.NewMemoryStore()
	for i := int64(0); i < 30; i++ {
		seedNamed(t, store, "member", i, i+1)
	}
	svc := NewService(store)
	ctx := context.Background()

	results, err := svc.Search(ctx, "member", 5)
	require.NoError(t, err)
	assert.Len(t, results, 5)

	// Out-of-range limits clamp to the store's cap.
	results, err = svc.Search(ctx, "member", 0)
	require.NoError(t, err)
	assert.Len(t, results, account.SearchLimit)
}
