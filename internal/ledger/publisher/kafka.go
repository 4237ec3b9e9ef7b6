// Package publisher streams committed vouch events to Kafka for downstream
// consumers (analytics, notification fan-out). Publishing happens strictly
// after commit and is best-effort: a broker outage never fails or delays a
// vouch.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"itrust/internal/ledger"
)

// Topic carries one record per committed vouch, keyed by vouchee so a
// consumer sees one account's reputation changes in order.
const Topic = "trust.vouches"

const (
	inboxSize    = 256
	flushTimeout = 5 * time.Second
)

// Kafka buffers events on a channel and drains them from a background
// worker so the commit path never blocks on the broker.
type Kafka struct {
	client *kgo.Client
	logger *slog.Logger
	inbox  chan ledger.VouchEvent
}

// NewKafka connects to the given brokers. Callers must run Run in a
// goroutine and Close on shutdown.
func NewKafka(brokers []string, logger *slog.Logger) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(Topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Kafka{
		client: client,
		logger: logger,
		inbox:  make(chan ledger.VouchEvent, inboxSize),
	}, nil
}

// Publish enqueues an event without blocking. When the inbox is full the
// event is dropped and logged; the ledger row remains the source of truth.
func (k *Kafka) Publish(ctx context.Context, event ledger.VouchEvent) {
	select {
	case k.inbox <- event:
	default:
		k.logger.WarnContext(ctx, "vouch event inbox full, dropping",
			"event_id", event.ID.String(),
		)
	}
}

// Run drains the inbox until the context is cancelled.
func (k *Kafka) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-k.inbox:
			k.produce(ctx, event)
		}
	}
}

func (k *Kafka) produce(ctx context.Context, event ledger.VouchEvent) {
	value, err := json.Marshal(event)
	if err != nil {
		k.logger.ErrorContext(ctx, "encode vouch event", "error", err)
		return
	}
	record := &kgo.Record{
		Key:   []byte(event.VoucheeID.String()),
		Value: value,
	}
	k.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			k.logger.ErrorContext(ctx, "produce vouch event",
				"event_id", event.ID.String(),
				"error", err,
			)
		}
	})
}

// Close flushes buffered records and releases the client.
func (k *Kafka) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := k.client.Flush(ctx); err != nil {
		k.logger.Error("flush kafka producer", "error", err)
	}
	k.client.Close()
}
