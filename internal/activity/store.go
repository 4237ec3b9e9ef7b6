package activity

import (
	"context"

	"itrust/pkg/domain"
)

// Store is the activity log surface. Entries are append-only; no update or
// delete exists anywhere. In Postgres deployments the ledger writes entries
// inside its commit transaction, so Append there serves seeding and tests;
// the in-memory ledger appends through this interface directly.
type Store interface {
	Append(ctx context.Context, entries ...Entry) error

	// RecentFor returns the account's entries, most recent first, capped
	// at limit.
	RecentFor(ctx context.Context, accountID domain.AccountID, limit int) ([]Entry, error)
}
