package ledger

import (
	"context"
	"sync"
	"time"

	"itrust/internal/account"
	"itrust/internal/activity"
	"itrust/pkg/domain"
	dErrors "itrust/pkg/domain-errors"
)

// MemoryStore runs the vouch atomic unit against the in-memory account and
// activity stores. Account locks are acquired in the global id order, and
// the debit is rolled back if any later step fails, so no interleaved
// observer ever sees one side updated without the other.
type MemoryStore struct {
	accounts   *account.MemoryStore
	activities *activity.MemoryStore
	clock      Clock

	mu     sync.RWMutex
	events []VouchEvent
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryClock sets the commit timestamp source.
func WithMemoryClock(clock Clock) MemoryOption {
	return func(s *MemoryStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewMemory constructs an in-memory ledger over the given stores.
func NewMemory(accounts *account.MemoryStore, activities *activity.MemoryStore, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		accounts:   accounts,
		activities: activities,
		clock:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *MemoryStore) ApplyVouch(ctx context.Context, voucherID, voucheeID domain.AccountID, amount domain.TrustAmount) (*VouchResult, error) {
	release, err := s.accounts.AcquirePair(ctx, voucherID, voucheeID)
	if err != nil {
		return nil, err
	}
	defer release()

	voucher, err := s.accounts.Get(ctx, voucherID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "voucher account not found")
	}
	vouchee, err := s.accounts.Get(ctx, voucheeID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "vouchee account not found")
	}

	debited, err := s.accounts.ApplyDelta(ctx, voucherID, -amount, 0)
	if err != nil {
		return nil, err
	}
	credited, err := s.accounts.ApplyDelta(ctx, voucheeID, 0, 1)
	if err != nil {
		// Undo the debit; the pair lock guarantees nobody observed it.
		_, _ = s.accounts.ApplyDelta(ctx, voucherID, amount, 0)
		return nil, err
	}

	now := s.clock().UTC()
	event := VouchEvent{
		ID:        domain.NewEventID(),
		VoucherID: voucherID,
		VoucheeID: voucheeID,
		Amount:    amount,
		CreatedAt: now,
	}

	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()

	_ = s.activities.Append(ctx,
		activity.Entry{
			ID:               domain.NewEventID(),
			AccountID:        voucherID,
			Direction:        activity.DirectionGave,
			CounterpartyID:   voucheeID,
			CounterpartyName: vouchee.DisplayName,
			EventID:          event.ID,
			Amount:           amount,
			CreatedAt:        now,
		},
		activity.Entry{
			ID:               domain.NewEventID(),
			AccountID:        voucheeID,
			Direction:        activity.DirectionReceived,
			CounterpartyID:   voucherID,
			CounterpartyName: voucher.DisplayName,
			EventID:          event.ID,
			Amount:           amount,
			CreatedAt:        now,
		},
	)

	return &VouchResult{
		Event: event,
		Voucher: ParticipantState{
			AccountID:    voucherID,
			DisplayName:  voucher.DisplayName,
			TrustBalance: debited.TrustBalance,
			Reputation:   debited.Reputation,
		},
		Vouchee: ParticipantState{
			AccountID:    voucheeID,
			DisplayName:  vouchee.DisplayName,
			TrustBalance: credited.TrustBalance,
			Reputation:   credited.Reputation,
		},
	}, nil
}

func (s *MemoryStore) CountGiven(_ context.Context, id domain.AccountID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, e := range s.events {
		if e.VoucherID == id {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountReceived(_ context.Context, id domain.AccountID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, e := range s.events {
		if e.VoucheeID == id {
			n++
		}
	}
	return n, nil
}
