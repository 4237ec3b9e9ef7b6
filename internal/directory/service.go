// Package directory implements display-name lookup over accounts. The
// store matches; relevance ordering lives here so both backends behave
// identically.
package directory

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"itrust/internal/account"
)

// MinQueryLength below which Search is a deliberate no-op, not a failure:
// the UI fires on every keystroke and one-letter queries are noise.
const MinQueryLength = 2

// Service answers directory searches.
type Service struct {
	accounts account.Store
}

func NewService(accounts account.Store) *Service {
	return &Service{accounts: accounts}
}

// Search returns accounts whose display name matches the query,
// case-insensitively. Exact name matches sort first, then substring
// matches; ties break by reputation descending, then join order.
// Queries shorter than MinQueryLength return an empty result.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*account.Account, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil, nil
	}
	if limit <= 0 || limit > account.SearchLimit {
		limit = account.SearchLimit
	}

	matches, err := s.accounts.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	sort.SliceStable(matches, func(i, j int) bool {
		iExact := strings.ToLower(matches[i].DisplayName) == needle
		jExact := strings.ToLower(matches[j].DisplayName) == needle
		if iExact != jExact {
			return iExact
		}
		if matches[i].Reputation != matches[j].Reputation {
			return matches[i].Reputation > matches[j].Reputation
		}
		return matches[i].JoinOrder < matches[j].JoinOrder
	})
	return matches, nil
}
