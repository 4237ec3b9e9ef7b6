package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"itrust/internal/ledger"
	"itrust/internal/ledger/metrics"
	"itrust/pkg/domain"
	dErrors "itrust/pkg/domain-errors"
)

// RankingInvalidator is fired on every commit so the leaderboard never
// serves reputations older than the configured staleness bound.
type RankingInvalidator interface {
	Invalidate(ctx context.Context)
}

// EventPublisher streams committed events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event ledger.VouchEvent)
}

// Service is the vouch transaction engine. It owns precondition ordering
// and idempotency; atomicity itself lives in the Store.
type Service struct {
	store     ledger.Store
	idem      ledger.IdempotencyCache
	ranking   RankingInvalidator
	publisher EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer

	lockWait time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithIdempotencyCache enables idempotency-key replay.
func WithIdempotencyCache(cache ledger.IdempotencyCache) Option {
	return func(s *Service) { s.idem = cache }
}

// WithRankingInvalidator wires the commit signal to the ranking engine.
func WithRankingInvalidator(r RankingInvalidator) Option {
	return func(s *Service) { s.ranking = r }
}

// WithPublisher wires the post-commit event stream.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithMetrics wires Prometheus counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLockWait bounds how long a vouch may wait on account locks.
func WithLockWait(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.lockWait = d
		}
	}
}

func NewService(store ledger.Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		logger:   logger,
		tracer:   otel.Tracer("itrust/ledger"),
		lockWait: 3 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Cost exposes the fixed per-vouch spend so callers can render "this will
// leave you with X remaining" before submitting.
func (s *Service) Cost() domain.TrustAmount {
	return domain.VouchCost
}

// Vouch transfers the fixed cost from voucher to vouchee exactly once.
// Preconditions are checked in order before any mutation: no self-vouch,
// both accounts exist, sufficient balance. On any failure balances and
// reputations are exactly as before the call.
//
// idempotencyKey is optional; when set, a repeat within the retention
// window returns the originally committed result without re-applying.
func (s *Service) Vouch(ctx context.Context, voucherID, voucheeID domain.AccountID, idempotencyKey string) (*ledger.VouchResult, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.Vouch",
		trace.WithAttributes(
			attribute.String("voucher_id", voucherID.String()),
			attribute.String("vouchee_id", voucheeID.String()),
		),
	)
	defer span.End()

	if voucherID.IsNil() || voucheeID.IsNil() {
		return nil, s.fail(dErrors.New(dErrors.CodeInvalidInput, "voucher and vouchee ids are required"))
	}
	if voucherID == voucheeID {
		return nil, s.fail(dErrors.New(dErrors.CodeSelfVouch, "cannot vouch for yourself"))
	}

	if s.idem != nil && idempotencyKey != "" {
		cached, err := s.idem.Find(ctx, voucherID, idempotencyKey)
		if err != nil {
			// Cache trouble must not block spending; fall through to the
			// ledger, which remains the source of truth.
			s.logger.WarnContext(ctx, "idempotency lookup failed", "error", err)
		}
		if cached != nil {
			if s.metrics != nil {
				s.metrics.IncrementIdempotentReplay()
			}
			span.SetAttributes(attribute.Bool("idempotent_replay", true))
			return cached, nil
		}
	}

	start := time.Now()
	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()

	result, err := s.store.ApplyVouch(lockCtx, voucherID, voucheeID, domain.VouchCost)
	if err != nil {
		return nil, s.fail(err)
	}

	if s.metrics != nil {
		s.metrics.ObserveCommit(time.Since(start))
	}
	if s.idem != nil && idempotencyKey != "" {
		if err := s.idem.Save(ctx, voucherID, idempotencyKey, result); err != nil {
			s.logger.WarnContext(ctx, "idempotency save failed", "error", err)
		}
	}
	if s.ranking != nil {
		s.ranking.Invalidate(ctx)
	}
	if s.publisher != nil {
		s.publisher.Publish(ctx, result.Event)
	}

	s.logger.InfoContext(ctx, "vouch committed",
		"event_id", result.Event.ID.String(),
		"voucher_id", voucherID.String(),
		"vouchee_id", voucheeID.String(),
		"amount", result.Event.Amount.String(),
	)
	return result, nil
}

// CountGiven reports how many vouches the account has committed.
func (s *Service) CountGiven(ctx context.Context, id domain.AccountID) (int64, error) {
	return s.store.CountGiven(ctx, id)
}

// CountReceived reports how many vouches the account has received.
func (s *Service) CountReceived(ctx context.Context, id domain.AccountID) (int64, error) {
	return s.store.CountReceived(ctx, id)
}

func (s *Service) fail(err error) error {
	if s.metrics != nil {
		s.metrics.IncrementFailure(string(dErrors.CodeOf(err)))
	}
	return err
}
