package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itrust/pkg/domain"
	dErrors "itrust/pkg/domain-errors"
)

func newTestAccount(name string, balanceMilli int64, reputation int64) *Account {
	return &Account{
		ID:           domain.NewAccountID(),
		DisplayName:  name,
		TrustBalance: domain.TrustFromMilli(balanceMilli),
		Reputation:   reputation,
		CreatedAt:    time.Now(),
	}
}

func TestMemoryStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	a := newTestAccount("Alice", 1000, 0)
	require.NoError(t, store.Create(ctx, a))

	got, err := store.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.DisplayName)
	assert.Equal(t, int64(1000), got.TrustBalance.Milli())
	assert.Equal(t, int64(1), got.JoinOrder, "join order assigned on create")

	// Duplicate ids are rejected.
	err = store.Create(ctx, a)
	assert.True(t, dErrors.Is(err, dErrors.CodeConflict))

	_, err = store.Get(ctx, domain.NewAccountID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreGetReturnsSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	a := newTestAccount("Alice", 1000, 0)
	require.NoError(t, store.Create(ctx, a))

	got, err := store.Get(ctx, a.ID)
	require.NoError(t, err)
	got.TrustBalance = domain.TrustFromMilli(0)

	again, err := store.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), again.TrustBalance.Milli(), "callers must not mutate stored state")
}

func TestMemoryStoreValidation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	err := store.Create(ctx, newTestAccount("", 0, 0))
	assert.True(t, dErrors.Is(err, dErrors.CodeInvalidInput))

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	err = store.Create(ctx, newTestAccount(string(long), 0, 0))
	assert.True(t, dErrors.Is(err, dErrors.CodeInvalidInput))
}

func TestMemoryStoreSearch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Create(ctx, newTestAccount("Alice", 0, 5)))
	require.NoError(t, store.Create(ctx, newTestAccount("Alan", 0, 7)))
	require.NoError(t, store.Create(ctx, newTestAccount("Bob", 0, 9)))

	matches, err := store.Search(ctx, "al", 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Alan", matches[0].DisplayName, "higher reputation first")
	assert.Equal(t, "Alice", matches[1].DisplayName)

	matches, err = store.Search(ctx, "ALICE", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1, "matching is case-insensitive")

	matches, err = store.Search(ctx, "", 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMemoryStoreListRanked(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	second := newTestAccount("Second Joiner", 0, 5)
	first := newTestAccount("First Joiner", 0, 5)
	third := newTestAccount("Third Joiner", 0, 3)
	second.JoinOrder = 2
	first.JoinOrder = 1
	third.JoinOrder = 3
	for _, a := range []*Account{second, first, third} {
		require.NoError(t, store.Create(ctx, a))
	}

	ranked, err := store.ListRanked(ctx)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, int64(1), ranked[0].JoinOrder, "earlier joiner wins reputation tie")
	assert.Equal(t, int64(2), ranked[1].JoinOrder)
	assert.Equal(t, int64(3), ranked[2].JoinOrder)
}

func TestMemoryStoreApplyDelta(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a := newTestAccount("Alice", 200, 0)
	require.NoError(t, store.Create(ctx, a))

	updated, err := store.ApplyDelta(ctx, a.ID, -domain.VouchCost, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.TrustBalance.Milli())

	// Balance can never go negative.
	_, err = store.ApplyDelta(ctx, a.ID, -domain.VouchCost, 0)
	assert.True(t, dErrors.Is(err, dErrors.CodeInsufficientBalance))

	got, err := store.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.TrustBalance.Milli(), "failed delta leaves no partial state")

	_, err = store.ApplyDelta(ctx, domain.NewAccountID(), 0, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreAcquirePairTimesOut(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a := newTestAccount("Alice", 1000, 0)
	b := newTestAccount("Bob", 1000, 0)
	require.NoError(t, store.Create(ctx, a))
	require.NoError(t, store.Create(ctx, b))

	release, err := store.AcquirePair(ctx, a.ID, b.ID)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = store.AcquirePair(waitCtx, b.ID, a.ID)
	assert.True(t, dErrors.Is(err, dErrors.CodeTimeout))

	release()

	release2, err := store.AcquirePair(ctx, b.ID, a.ID)
	require.NoError(t, err)
	release2()
}
