package account

import (
	"context"
	"sort"
	"strings"
	"sync"

	"itrust/pkg/domain"
	dErrors "itrust/pkg/domain-errors"
)

// MemoryStore is the in-process Store used in tests and single-node
// development. Beyond the Store interface it exposes the per-account
// exclusion and delta primitives the in-memory ledger builds its atomic
// unit from; Postgres deployments get the equivalent from row locks.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[domain.AccountID]*Account
	locks    map[domain.AccountID]chan struct{}

	nextJoinOrder int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[domain.AccountID]*Account),
		locks:    make(map[domain.AccountID]chan struct{}),
	}
}

func (s *MemoryStore) Create(_ context.Context, a *Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[a.ID]; exists {
		return dErrors.New(dErrors.CodeConflict, "account already exists")
	}
	cp := *a
	if cp.JoinOrder == 0 {
		s.nextJoinOrder++
		cp.JoinOrder = s.nextJoinOrder
	} else if cp.JoinOrder > s.nextJoinOrder {
		s.nextJoinOrder = cp.JoinOrder
	}
	s.accounts[a.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id domain.AccountID) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) Search(_ context.Context, query string, limit int) ([]*Account, error) {
	if limit <= 0 || limit > SearchLimit {
		limit = SearchLimit
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var matches []*Account
	for _, a := range s.accounts {
		if strings.Contains(strings.ToLower(a.DisplayName), needle) {
			cp := *a
			matches = append(matches, &cp)
		}
	}
	// Deterministic pre-order so the cap below never depends on map order.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Reputation != matches[j].Reputation {
			return matches[i].Reputation > matches[j].Reputation
		}
		return matches[i].JoinOrder < matches[j].JoinOrder
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *MemoryStore) ListRanked(_ context.Context) ([]*Account, error) {
	s.mu.RLock()
	all := make([]*Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		cp := *a
		all = append(all, &cp)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Reputation != all[j].Reputation {
			return all[i].Reputation > all[j].Reputation
		}
		return all[i].JoinOrder < all[j].JoinOrder
	})
	return all, nil
}

// AcquirePair takes exclusive access to both accounts in the global id
// order, waiting no longer than the context allows. On success the caller
// must invoke the returned release exactly once.
func (s *MemoryStore) AcquirePair(ctx context.Context, a, b domain.AccountID) (release func(), err error) {
	first, second := a, b
	if second.Less(first) {
		first, second = second, first
	}

	if err := s.acquire(ctx, first); err != nil {
		return nil, err
	}
	if err := s.acquire(ctx, second); err != nil {
		s.release(first)
		return nil, err
	}
	return func() {
		s.release(second)
		s.release(first)
	}, nil
}

func (s *MemoryStore) acquire(ctx context.Context, id domain.AccountID) error {
	s.mu.Lock()
	sem, ok := s.locks[id]
	if !ok {
		sem = make(chan struct{}, 1)
		s.locks[id] = sem
	}
	s.mu.Unlock()

	select {
	case sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return dErrors.Wrap(dErrors.CodeTimeout, "could not acquire account lock", ctx.Err())
	}
}

func (s *MemoryStore) release(id domain.AccountID) {
	s.mu.RLock()
	sem := s.locks[id]
	s.mu.RUnlock()
	<-sem
}

// ApplyDelta adjusts one account's balance and reputation. It exists for
// the ledger's atomic unit and must only run while the caller holds the
// account's lock via AcquirePair.
func (s *MemoryStore) ApplyDelta(_ context.Context, id domain.AccountID, balanceDelta domain.TrustAmount, reputationDelta int64) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	newBalance := a.TrustBalance.Add(balanceDelta)
	if newBalance.IsNegative() {
		return nil, dErrors.New(dErrors.CodeInsufficientBalance, "insufficient trust balance")
	}
	a.TrustBalance = newBalance
	a.Reputation += reputationDelta
	cp := *a
	return &cp, nil
}
