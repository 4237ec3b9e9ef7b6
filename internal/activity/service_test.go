package activity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itrust/pkg/domain"
)

func appendEntries(t *testing.T, store *MemoryStore, accountID domain.AccountID, n int) {
	t.Helper()
	base := time.Now()
	for i := 0; i < n; i++ {
		err := store.Append(context.Background(), Entry{
			ID:               domain.NewEventID(),
			AccountID:        accountID,
			Direction:        DirectionGave,
			CounterpartyID:   domain.NewAccountID(),
			CounterpartyName: fmt.Sprintf("counterparty-%d", i),
			EventID:          domain.NewEventID(),
			Amount:           domain.VouchCost,
			CreatedAt:        base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}
}

func TestRecentNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	me := domain.NewAccountID()
	appendEntries(t, store, me, 3)

	feed, err := svc.Recent(context.Background(), me, 10)
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, "counterparty-2", feed[0].CounterpartyName)
	assert.Equal(t, "counterparty-0", feed[2].CounterpartyName)
}

func TestRecentScopedToAccount(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	me := domain.NewAccountID()
	other := domain.NewAccountID()
	appendEntries(t, store, me, 2)
	appendEntries(t, store, other, 4)

	feed, err := svc.Recent(context.Background(), me, 10)
	require.NoError(t, err)
	assert.Len(t, feed, 2)
	for _, e := range feed {
		assert.Equal(t, me, e.AccountID)
	}
}

func TestRecentLimits(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	me := domain.NewAccountID()
	appendEntries(t, store, me, 150)
	ctx := context.Background()

	feed, err := svc.Recent(ctx, me, 0)
	require.NoError(t, err)
	assert.Len(t, feed, defaultFeedLimit)

	feed, err = svc.Recent(ctx, me, 5)
	require.NoError(t, err)
	assert.Len(t, feed, 5)

	feed, err = svc.Recent(ctx, me, 10_000)
	require.NoError(t, err)
	assert.Len(t, feed, maxFeedLimit)
}

func TestRecentEmptyFeed(t *testing.T) {
	svc := NewService(NewMemoryStore())

	feed, err := svc.Recent(context.Background(), domain.NewAccountID(), 10)
	require.NoError(t, err)
	assert.Empty(t, feed)
}
