package account

import (
	"context"

	"itrust/pkg/domain"
	dErrors "itrust/pkg/domain-errors"
)

// ErrNotFound keeps account-level 404s consistent across the Postgres and
// in-memory implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "account not found")

// SearchLimit caps directory lookups regardless of the caller's limit.
const SearchLimit = 20

// Store is the account read/write surface. ApplyDelta exists for the vouch
// ledger's atomic unit only; nothing else may move balance or reputation.
type Store interface {
	// Get returns a point-in-time snapshot of one account or ErrNotFound.
	Get(ctx context.Context, id domain.AccountID) (*Account, error)

	// Search returns accounts whose display name contains the query,
	// case-insensitively, capped at limit. Relevance ordering is the
	// directory service's concern; the store only matches.
	Search(ctx context.Context, query string, limit int) ([]*Account, error)

	// ListRanked returns all accounts ordered by reputation descending,
	// join order ascending. The ranking engine's snapshot is derived from
	// this and nothing else.
	ListRanked(ctx context.Context) ([]*Account, error)

	// Create inserts a new account. Registration itself lives outside the
	// core; this exists for seeding and tests.
	Create(ctx context.Context, a *Account) error
}
