package ledger

import (
	"context"

	"itrust/pkg/domain"
)

// Store owns the vouch atomic unit: debit, credit, event row and both
// activity entries commit together or not at all. Implementations must
// serialize concurrent vouches touching a shared account and must never
// let a balance go negative.
type Store interface {
	// ApplyVouch runs the whole transfer as one indivisible unit and
	// returns the committed event with both sides' post-commit state.
	// Precondition failures (missing account, insufficient balance) are
	// reported via domain error codes with no partial state observable.
	ApplyVouch(ctx context.Context, voucherID, voucheeID domain.AccountID, amount domain.TrustAmount) (*VouchResult, error)

	// CountGiven returns how many vouches the account has committed.
	CountGiven(ctx context.Context, id domain.AccountID) (int64, error)

	// CountReceived returns how many vouches the account has received.
	CountReceived(ctx context.Context, id domain.AccountID) (int64, error)
}
