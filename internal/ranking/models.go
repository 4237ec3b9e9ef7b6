package ranking

import (
	"time"

	"itrust/internal/account"
	"itrust/pkg/domain"
)

// Entry is one leaderboard row: an account projection plus its 1-based
// rank under the reputation-descending, join-order-ascending order.
type Entry struct {
	Account account.Account `json:"account"`
	Rank    int             `json:"rank"`
}

// Snapshot is a derived, immutable projection of the account store. It is
// never a source of truth: it can always be rebuilt from ListRanked alone.
type Snapshot struct {
	Entries    []Entry
	ComputedAt time.Time

	byID map[domain.AccountID]int
}

func newSnapshot(accounts []*account.Account, at time.Time) *Snapshot {
	snap := &Snapshot{
		Entries:    make([]Entry, 0, len(accounts)),
		ComputedAt: at,
		byID:       make(map[domain.AccountID]int, len(accounts)),
	}
	for i, a := range accounts {
		rank := i + 1
		snap.Entries = append(snap.Entries, Entry{Account: *a, Rank: rank})
		snap.byID[a.ID] = rank
	}
	return snap
}

// RankOf returns the account's rank, or 0 when absent.
func (s *Snapshot) RankOf(id domain.AccountID) int {
	return s.byID[id]
}
