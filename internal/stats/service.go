// Package stats aggregates the per-account dashboard figures from the
// account store, the ranking engine and the ledger.
package stats

import (
	"context"

	"golang.org/x/sync/errgroup"

	"itrust/internal/account"
	"itrust/pkg/domain"
	dErrors "itrust/pkg/domain-errors"
)

// Stats is the dashboard projection for one account.
type Stats struct {
	AccountID       domain.AccountID   `json:"accountId"`
	DisplayName     string             `json:"displayName"`
	Reputation      int64              `json:"reputation"`
	TrustBalance    domain.TrustAmount `json:"trustBalance"`
	Rank            int                `json:"rank"`
	VouchesGiven    int64              `json:"vouchesGiven"`
	VouchesReceived int64              `json:"vouchesReceived"`
}

// Ranker is the slice of the ranking engine this package needs.
type Ranker interface {
	RankOf(ctx context.Context, id domain.AccountID) (int, error)
}

// Ledger is the slice of the vouch ledger this package needs.
type Ledger interface {
	CountGiven(ctx context.Context, id domain.AccountID) (int64, error)
	CountReceived(ctx context.Context, id domain.AccountID) (int64, error)
}

// Service composes account stats.
type Service struct {
	accounts account.Store
	ranker   Ranker
	ledger   Ledger
}

func NewService(accounts account.Store, ranker Ranker, ledger Ledger) *Service {
	return &Service{accounts: accounts, ranker: ranker, ledger: ledger}
}

// For gathers the independent reads in parallel with shared cancellation.
func (s *Service) For(ctx context.Context, id domain.AccountID) (*Stats, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "account id is required")
	}

	stats := &Stats{AccountID: id}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a, err := s.accounts.Get(ctx, id)
		if err != nil {
			return err
		}
		stats.DisplayName = a.DisplayName
		stats.Reputation = a.Reputation
		stats.TrustBalance = a.TrustBalance
		return nil
	})
	g.Go(func() error {
		rank, err := s.ranker.RankOf(ctx, id)
		if err != nil {
			// An unranked account is a missing account; surface that from
			// the store read instead of racing on which error wins.
			if dErrors.Is(err, dErrors.CodeNotFound) {
				return nil
			}
			return err
		}
		stats.Rank = rank
		return nil
	})
	g.Go(func() error {
		given, err := s.ledger.CountGiven(ctx, id)
		if err != nil {
			return err
		}
		stats.VouchesGiven = given
		return nil
	})
	g.Go(func() error {
		received, err := s.ledger.CountReceived(ctx, id)
		if err != nil {
			return err
		}
		stats.VouchesReceived = received
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
