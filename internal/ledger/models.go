package ledger

import (
	"time"

	"itrust/pkg/domain"
)

// VouchEvent is one completed TRUST transfer. Append-only: events are
// created exactly once at commit time and never mutated.
type VouchEvent struct {
	ID        domain.EventID     `json:"id"`
	VoucherID domain.AccountID   `json:"voucherId"`
	VoucheeID domain.AccountID   `json:"voucheeId"`
	Amount    domain.TrustAmount `json:"amount"`
	CreatedAt time.Time          `json:"createdAt"`
}

// ParticipantState is one side's post-commit figures, returned so callers
// can display updated numbers without a second read.
type ParticipantState struct {
	AccountID    domain.AccountID   `json:"accountId"`
	DisplayName  string             `json:"displayName"`
	TrustBalance domain.TrustAmount `json:"trustBalance"`
	Reputation   int64              `json:"reputation"`
}

// VouchResult is the committed event plus both participants' state after
// the atomic unit.
type VouchResult struct {
	Event   VouchEvent       `json:"event"`
	Voucher ParticipantState `json:"voucher"`
	Vouchee ParticipantState `json:"vouchee"`
}
