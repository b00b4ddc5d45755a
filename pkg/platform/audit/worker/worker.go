package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"custos/pkg/platform/audit/store/postgres"
)

// Producer publishes a single outbox payload to the downstream sink.
type Producer interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// Outbox exposes the pending/sent halves of the outbox store.
type Outbox interface {
	PendingBatch(ctx context.Context, limit int) ([]postgres.OutboxRow, error)
	MarkSent(ctx context.Context, ids []uuid.UUID) error
}

// Worker drains the audit outbox to Kafka on an interval. A row is marked
// sent only after the broker acks it; failed rows stay pending and are
// retried on the next pass.
type Worker struct {
	outbox    Outbox
	producer  Producer
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

func New(outbox Outbox, producer Producer, logger *slog.Logger) *Worker {
	return &Worker{
		outbox:    outbox,
		producer:  producer,
		logger:    logger,
		interval:  5 * time.Second,
		batchSize: 100,
	}
}

// Run drains the outbox until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.DrainOnce(ctx); err != nil {
				w.logger.Error("audit outbox drain failed", "error", err)
			}
		}
	}
}

// DrainOnce publishes one batch of pending rows. Exported for testability;
// Run calls it on every tick.
func (w *Worker) DrainOnce(ctx context.Context) error {
	batch, err := w.outbox.PendingBatch(ctx, w.batchSize)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	sent := make([]uuid.UUID, 0, len(batch))
	for _, row := range batch {
		if err := w.producer.Publish(ctx, row.Key, row.Payload); err != nil {
			// Leave the row pending; publishing is at-least-once.
			w.logger.Warn("audit publish failed, will retry",
				"outbox_id", row.ID,
				"error", err,
			)
			continue
		}
		sent = append(sent, row.ID)
	}

	return w.outbox.MarkSent(ctx, sent)
}
