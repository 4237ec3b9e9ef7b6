package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"itrust/internal/account"
	"itrust/pkg/domain"
	dErrors "itrust/pkg/domain-errors"
)

// PostgresStore commits vouches in a single database transaction. Row locks
// taken in account-id order are the serialization point the concurrency
// contract relies on: two vouches sharing an account queue on the same row
// and can never deadlock against each other.
type PostgresStore struct {
	db    *sql.DB
	clock Clock
}

// Clock is injected for tests that pin commit timestamps.
type Clock func() time.Time

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithClock sets the commit timestamp source.
func WithClock(clock Clock) PostgresOption {
	return func(s *PostgresStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewPostgres constructs a PostgreSQL-backed ledger store.
func NewPostgres(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{db: db, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type lockedAccount struct {
	displayName  string
	balanceMilli int64
	reputation   int64
}

func (s *PostgresStore) ApplyVouch(ctx context.Context, voucherID, voucheeID domain.AccountID, amount domain.TrustAmount) (*VouchResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, translatePgErr("begin vouch tx", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	// Lock both rows in global id order to rule out deadlock between two
	// vouches referencing the same pair in opposite roles.
	first, second := voucherID, voucheeID
	if second.Less(first) {
		first, second = second, first
	}
	locked := make(map[domain.AccountID]*lockedAccount, 2)
	for _, id := range []domain.AccountID{first, second} {
		la, err := lockAccount(ctx, tx, id)
		if err != nil {
			if dErrors.Is(err, dErrors.CodeNotFound) {
				return nil, dErrors.New(dErrors.CodeNotFound, missingSide(id, voucherID))
			}
			return nil, err
		}
		locked[id] = la
	}

	voucher := locked[voucherID]
	vouchee := locked[voucheeID]
	if voucher.balanceMilli < amount.Milli() {
		return nil, dErrors.New(dErrors.CodeInsufficientBalance, "insufficient trust balance")
	}

	now := s.clock().UTC()
	event := VouchEvent{
		ID:        domain.NewEventID(),
		VoucherID: voucherID,
		VoucheeID: voucheeID,
		Amount:    amount,
		CreatedAt: now,
	}

	var newBalance int64
	err = tx.QueryRowContext(ctx, `
		UPDATE accounts
		SET trust_balance_milli = trust_balance_milli - $2
		WHERE id = $1 AND trust_balance_milli >= $2
		RETURNING trust_balance_milli
	`, voucherID.String(), amount.Milli()).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Raced past the read above; the guard keeps the invariant.
			return nil, dErrors.New(dErrors.CodeInsufficientBalance, "insufficient trust balance")
		}
		return nil, translatePgErr("debit voucher", err)
	}

	var newReputation int64
	err = tx.QueryRowContext(ctx, `
		UPDATE accounts
		SET reputation = reputation + 1
		WHERE id = $1
		RETURNING reputation
	`, voucheeID.String()).Scan(&newReputation)
	if err != nil {
		return nil, translatePgErr("credit vouchee reputation", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO vouch_events (id, voucher_id, vouchee_id, amount_milli, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, event.ID.String(), voucherID.String(), voucheeID.String(), amount.Milli(), now)
	if err != nil {
		return nil, translatePgErr("insert vouch event", err)
	}

	// One activity row per side, batched with unnest.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO activities (id, account_id, direction, counterparty_id, counterparty_name, event_id, amount_milli, created_at)
		SELECT unnest($1::uuid[]), unnest($2::uuid[]), unnest($3::text[]), unnest($4::uuid[]), unnest($5::text[]), $6, $7, $8
	`,
		pq.Array([]string{domain.NewEventID().String(), domain.NewEventID().String()}),
		pq.Array([]string{voucherID.String(), voucheeID.String()}),
		pq.Array([]string{"gave", "received"}),
		pq.Array([]string{voucheeID.String(), voucherID.String()}),
		pq.Array([]string{vouchee.displayName, voucher.displayName}),
		event.ID.String(), amount.Milli(), now,
	)
	if err != nil {
		return nil, translatePgErr("insert activities", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, translatePgErr("commit vouch", err)
	}

	return &VouchResult{
		Event: event,
		Voucher: ParticipantState{
			AccountID:    voucherID,
			DisplayName:  voucher.displayName,
			TrustBalance: domain.TrustFromMilli(newBalance),
			Reputation:   voucher.reputation,
		},
		Vouchee: ParticipantState{
			AccountID:    voucheeID,
			DisplayName:  vouchee.displayName,
			TrustBalance: domain.TrustFromMilli(vouchee.balanceMilli),
			Reputation:   newReputation,
		},
	}, nil
}

func lockAccount(ctx context.Context, tx *sql.Tx, id domain.AccountID) (*lockedAccount, error) {
	var la lockedAccount
	err := tx.QueryRowContext(ctx, `
		SELECT display_name, trust_balance_milli, reputation
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, id.String()).Scan(&la.displayName, &la.balanceMilli, &la.reputation)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrNotFound
		}
		return nil, translatePgErr("lock account", err)
	}
	return &la, nil
}

func (s *PostgresStore) CountGiven(ctx context.Context, id domain.AccountID) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM vouch_events WHERE voucher_id = $1`, id)
}

func (s *PostgresStore) CountReceived(ctx context.Context, id domain.AccountID) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM vouch_events WHERE vouchee_id = $1`, id)
}

func (s *PostgresStore) count(ctx context.Context, query string, id domain.AccountID) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, query, id.String()).Scan(&n); err != nil {
		return 0, translatePgErr("count vouch events", err)
	}
	return n, nil
}

func missingSide(missing, voucherID domain.AccountID) string {
	if missing == voucherID {
		return "voucher account not found"
	}
	return "vouchee account not found"
}

// translatePgErr maps driver-level failures onto the domain taxonomy:
// cancelled lock waits become timeouts callers may retry, serialization
// failures become conflicts, everything else stays internal.
func translatePgErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(dErrors.CodeTimeout, op, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return dErrors.Wrap(dErrors.CodeConflict, op, err)
		case "57014": // query_canceled (statement timeout / ctx cancel)
			return dErrors.Wrap(dErrors.CodeTimeout, op, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
