package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/campusevents/calendar/internal/metrics"
	"github.com/campusevents/calendar/internal/repository"
)

// Publisher sends one message to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// OutboxPoller drains the event_outbox table to the change feed.
type OutboxPoller struct {
	db        repository.DBTX
	outbox    repository.OutboxRepository
	producer  Publisher
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// NewOutboxPoller creates a new outbox poller.
func NewOutboxPoller(db repository.DBTX, outbox repository.OutboxRepository, producer Publisher, interval time.Duration, batchSize int, logger *slog.Logger) *OutboxPoller {
	return &OutboxPoller{
		db:        db,
		outbox:    outbox,
		producer:  producer,
		logger:    logger,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run polls until ctx is cancelled.
func (p *OutboxPoller) Run(ctx context.Context) error {
	p.logger.Info("outbox poller started", "interval", p.interval, "batch_size", p.batchSize)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox poller stopped")
			return nil
		case <-ticker.C:
			if _, err := p.PollOnce(ctx); err != nil {
				metrics.OutboxPollErrors.Inc()
				p.logger.Error("outbox poll error", "error", err)
			}
		}
	}
}

// PollOnce publishes one batch in order and returns how many rows were published.
// Publishing stops at the first failure so a later change never overtakes an earlier one.
func (p *OutboxPoller) PollOnce(ctx context.Context) (int, error) {
	drafts, err := p.outbox.FetchUnpublished(ctx, p.db, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	if len(drafts) == 0 {
		return 0, nil
	}

	published := make([]int64, 0, len(drafts))
	var publishErr error
	for _, d := range drafts {
		msg, err := json.Marshal(d)
		if err != nil {
			publishErr = fmt.Errorf("encode %s: %w", d.MessageID, err)
			break
		}
		if err := p.producer.Publish(ctx, d.Topic(), []byte(d.AggregateID), msg); err != nil {
			publishErr = fmt.Errorf("publish %s: %w", d.MessageID, err)
			break
		}
		published = append(published, d.SeqID)
		metrics.OutboxPublished.WithLabelValues(string(d.ChangeType)).Inc()
	}

	if err := p.outbox.MarkPublished(ctx, p.db, published); err != nil {
		return 0, fmt.Errorf("mark published: %w", err)
	}

	p.logger.Debug("outbox poll complete", "published", len(published))
	return len(published), publishErr
}
