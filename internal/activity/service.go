package activity

import (
	"context"

	"itrust/pkg/domain"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

// Service serves the per-account activity feed.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Recent returns the account's feed, most recent first. A non-positive
// limit falls back to the default; anything above the cap is clamped.
func (s *Service) Recent(ctx context.Context, accountID domain.AccountID, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}
	return s.store.RecentFor(ctx, accountID, limit)
}
