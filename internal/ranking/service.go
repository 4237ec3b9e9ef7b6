package ranking

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"itrust/internal/account"
	"itrust/internal/ranking/metrics"
	"itrust/pkg/domain"
	dErrors "itrust/pkg/domain-errors"
)

// DefaultLimit matches the leaderboard page the UI requests.
const DefaultLimit = 100

// Service derives the leaderboard from the account store. It is a pure
// function of the store's current state, memoized for at most the TTL and
// explicitly invalidated by the ledger on every commit, so reads are
// bounded-stale but never authoritative.
type Service struct {
	accounts account.Store
	cache    SnapshotCache
	ttl      time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger
	clock    func() time.Time

	group singleflight.Group

	mu   sync.RWMutex
	snap *Snapshot
}

// Option configures a Service.
type Option func(*Service)

// WithSnapshotCache adds the cross-instance Redis layer.
func WithSnapshotCache(cache SnapshotCache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithTTL overrides the staleness bound.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMetrics wires Prometheus counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock sets the time source for staleness checks (tests only).
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewService(accounts account.Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		accounts: accounts,
		ttl:      15 * time.Second,
		logger:   logger,
		clock:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// TopN returns the first limit leaderboard entries. The order is
// deterministic: reputation descending, join order ascending on ties.
func (s *Service) TopN(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if limit > len(snap.Entries) {
		limit = len(snap.Entries)
	}
	return snap.Entries[:limit], nil
}

// RankOf returns the 1-based rank for the account.
func (s *Service) RankOf(ctx context.Context, id domain.AccountID) (int, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return 0, err
	}
	rank := snap.RankOf(id)
	if rank == 0 {
		return 0, dErrors.New(dErrors.CodeNotFound, "account not ranked")
	}
	return rank, nil
}

// Invalidate drops the memoized snapshot. The ledger calls this on every
// committed vouch; the next read recomputes.
func (s *Service) Invalidate(ctx context.Context) {
	s.mu.Lock()
	s.snap = nil
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.WarnContext(ctx, "ranking cache invalidation failed", "error", err)
		}
	}
	if s.metrics != nil {
		s.metrics.IncrementInvalidations()
	}
}

func (s *Service) snapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	if snap != nil && s.clock().Sub(snap.ComputedAt) < s.ttl {
		if s.metrics != nil {
			s.metrics.IncrementCacheHit("local")
		}
		return snap, nil
	}

	// Collapse the thundering herd after an invalidation into one rebuild.
	v, err, _ := s.group.Do("snapshot", func() (any, error) {
		return s.rebuild(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

func (s *Service) rebuild(ctx context.Context) (*Snapshot, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "ranking cache read failed", "error", err)
		}
		if cached != nil && s.clock().Sub(cached.ComputedAt) < s.ttl {
			s.store(cached)
			if s.metrics != nil {
				s.metrics.IncrementCacheHit("redis")
			}
			return cached, nil
		}
	}

	start := s.clock()
	ranked, err := s.accounts.ListRanked(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "rebuild ranking snapshot", err)
	}
	snap := newSnapshot(ranked, s.clock())
	s.store(snap)

	if s.metrics != nil {
		s.metrics.ObserveRecompute(s.clock().Sub(start))
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, snap, s.ttl); err != nil {
			s.logger.WarnContext(ctx, "ranking cache write failed", "error", err)
		}
	}
	return snap, nil
}

func (s *Service) store(snap *Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}
