package account

import (
	"strings"
	"time"

	"itrust/pkg/domain"
	dErrors "itrust/pkg/domain-errors"
)

// Account is one platform participant. Balance and reputation are mutated
// only by the vouch ledger; everything else is owned by the external
// profile collaborator and read-only here.
type Account struct {
	ID           domain.AccountID
	DisplayName  string
	AvatarRef    string
	TrustBalance domain.TrustAmount
	Reputation   int64
	JoinOrder    int64
	CreatedAt    time.Time
}

const maxDisplayNameLength = 100

// Validate enforces the account invariants the core relies on.
func (a *Account) Validate() error {
	if a.ID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "account id is required")
	}
	name := strings.TrimSpace(a.DisplayName)
	if name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "display name cannot be empty")
	}
	if len(name) > maxDisplayNameLength {
		return dErrors.New(dErrors.CodeInvalidInput, "display name must be 100 characters or less")
	}
	if a.TrustBalance.IsNegative() {
		return dErrors.New(dErrors.CodeInvalidInput, "trust balance cannot be negative")
	}
	if a.Reputation < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "reputation cannot be negative")
	}
	return nil
}
