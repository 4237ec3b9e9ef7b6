package activity

import (
	"context"
	"database/sql"
	"fmt"

	"itrust/pkg/domain"
)

// PostgresStore reads the activity log from PostgreSQL. Writes normally
// happen inside the ledger's commit transaction; Append here is the
// standalone path used by seeding and tests.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed activity store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entries ...Entry) error {
	for _, e := range entries {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO activities (id, account_id, direction, counterparty_id, counterparty_name, event_id, amount_milli, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, e.ID.String(), e.AccountID.String(), string(e.Direction), e.CounterpartyID.String(), e.CounterpartyName, e.EventID.String(), e.Amount.Milli(), e.CreatedAt)
		if err != nil {
			return fmt.Errorf("append activity: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) RecentFor(ctx context.Context, accountID domain.AccountID, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, direction, counterparty_id, counterparty_name, event_id, amount_milli, created_at
		FROM activities
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, accountID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                    Entry
			rawID, rawAcct       string
			rawCounter, rawEvent string
			direction            string
			amountMilli          int64
		)
		if err := rows.Scan(&rawID, &rawAcct, &direction, &rawCounter, &e.CounterpartyName, &rawEvent, &amountMilli, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		if e.ID, err = domain.ParseEventID(rawID); err != nil {
			return nil, err
		}
		if e.AccountID, err = domain.ParseAccountID(rawAcct); err != nil {
			return nil, err
		}
		if e.CounterpartyID, err = domain.ParseAccountID(rawCounter); err != nil {
			return nil, err
		}
		if e.EventID, err = domain.ParseEventID(rawEvent); err != nil {
			return nil, err
		}
		e.Direction = Direction(direction)
		e.Amount = domain.TrustFromMilli(amountMilli)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return entries, nil
}
