package producer

import (
	"context"
	"time"

	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/messaging/kafka"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	defaultPollInterval = 3 * time.Second
	drainBatchSize      = 50
)

// DrainOutbox polls the leave decision outbox and publishes due events until
// ctx is cancelled. A failed publish pushes the row back with a retry delay;
// the next pass picks it up again once the delay passes.
func DrainOutbox(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer *kafkago.Writer,
	logger *zap.Logger,
	pollInterval time.Duration,
) {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	log := logger.Named("kafka.producer.worker")
	log.Info("outbox drain started", zap.Duration("poll_interval", pollInterval))

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("outbox drain stopped")
			return
		case <-ticker.C:
			if err := drainOnce(ctx, repo, writer, log); err != nil {
				log.Error("outbox drain pass failed", zap.Error(err))
			}
		}
	}
}

func drainOnce(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer *kafkago.Writer,
	log *zap.Logger,
) error {
	due, err := repo.ListDue(ctx, drainBatchSize)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	log.Info("publishing due decision events", zap.Int("count", len(due)))

	for _, event := range due {
		if err := publishDecision(ctx, writer, event); err != nil {
			log.Error("publish decision event failed",
				zap.String("outbox_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.Error(err),
			)
			_ = repo.MarkFailed(ctx, event.ID, err.Error())
			continue
		}

		if err := repo.MarkSent(ctx, event.ID); err != nil {
			log.Error("mark decision event sent failed",
				zap.String("outbox_id", event.ID),
				zap.Error(err),
			)
			continue
		}

		log.Info("decision event published",
			zap.String("outbox_id", event.ID),
			zap.String("leave_id", event.LeaveID),
			zap.String("event_type", event.EventType),
		)
	}

	return nil
}
