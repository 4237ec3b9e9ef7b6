package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"itrust/pkg/domain"
	dErrors "itrust/pkg/domain-errors"
)

const uniqueViolation = "23505"

// PostgresStore persists accounts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed account store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const accountColumns = `id, display_name, avatar_ref, trust_balance_milli, reputation, join_order, created_at`

func (s *PostgresStore) Create(ctx context.Context, a *Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	query := `
		INSERT INTO accounts (id, display_name, avatar_ref, trust_balance_milli, reputation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING join_order
	`
	err := s.db.QueryRowContext(ctx, query,
		a.ID.String(), a.DisplayName, a.AvatarRef, a.TrustBalance.Milli(), a.Reputation, a.CreatedAt,
	).Scan(&a.JoinOrder)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return dErrors.New(dErrors.CodeConflict, "account already exists")
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.AccountID) (*Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id.String())
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) Search(ctx context.Context, query string, limit int) ([]*Account, error) {
	if limit <= 0 || limit > SearchLimit {
		limit = SearchLimit
	}
	needle := strings.TrimSpace(query)
	if needle == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE display_name ILIKE '%' || $1 || '%'
		ORDER BY reputation DESC, join_order ASC
		LIMIT $2
	`, escapeLike(needle), limit)
	if err != nil {
		return nil, fmt.Errorf("search accounts: %w", err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func (s *PostgresStore) ListRanked(ctx context.Context) ([]*Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		ORDER BY reputation DESC, join_order ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list ranked accounts: %w", err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// escapeLike neutralizes LIKE wildcards in user input so "%" matches a
// literal percent sign instead of everything.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*Account, error) {
	var (
		a            Account
		rawID        string
		balanceMilli int64
	)
	if err := row.Scan(&rawID, &a.DisplayName, &a.AvatarRef, &balanceMilli, &a.Reputation, &a.JoinOrder, &a.CreatedAt); err != nil {
		return nil, err
	}
	id, err := domain.ParseAccountID(rawID)
	if err != nil {
		return nil, fmt.Errorf("corrupt account id %q: %w", rawID, err)
	}
	a.ID = id
	a.TrustBalance = domain.TrustFromMilli(balanceMilli)
	return &a, nil
}

func collectAccounts(rows *sql.Rows) ([]*Account, error) {
	var accounts []*Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}
