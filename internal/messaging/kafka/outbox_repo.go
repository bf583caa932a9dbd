package kafka

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// The leave service stages decision events in leave_outbox inside the same
// transaction that flips the request status; the producer worker drains the
// table afterwards. A row therefore exists exactly when the decision
// committed.

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
)

// Retry pacing for failed publishes. The delay grows linearly with the
// attempt count and stops growing after maxRetrySteps attempts.
const (
	retryStepSeconds = 15
	maxRetrySteps    = 10
	maxErrorMessage  = 500
)

// OutboxEvent is one staged leave decision. LeaveID doubles as the Kafka
// partition key so decisions about the same request keep their order.
type OutboxEvent struct {
	ID          string
	RequestID   string
	LeaveID     string
	EventType   string
	Payload     []byte
	Status      string
	RetryCount  int
	NextRetryAt time.Time
}

func (e OutboxEvent) validate() error {
	switch {
	case e.ID == "":
		return errors.New("outbox event id is required")
	case e.LeaveID == "":
		return errors.New("outbox event leave id is required")
	case e.EventType == "":
		return errors.New("outbox event type is required")
	case len(e.Payload) == 0:
		return errors.New("outbox event payload is required")
	}

	if e.Status != OutboxStatusPending && e.Status != OutboxStatusSent && e.Status != OutboxStatusFailed {
		return fmt.Errorf("invalid outbox status: %s", e.Status)
	}
	return nil
}

//go:generate mockgen -source=outbox_repo.go -destination=mock/outbox_repo_mock.go -package=mock

type OutboxRepository interface {
	WithTx(tx *sql.Tx) OutboxRepository
	Create(ctx context.Context, event OutboxEvent) error
	ListDue(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

type outboxRepository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewOutboxRepository(db *sql.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) WithTx(tx *sql.Tx) OutboxRepository {
	return &outboxRepository{db: r.db, tx: tx}
}

// Create enlists in the caller's transaction when one was attached via
// WithTx. That is what ties the event row to the leave decision commit.
func (r *outboxRepository) Create(ctx context.Context, event OutboxEvent) error {
	if err := event.validate(); err != nil {
		return err
	}

	const query = `
INSERT INTO leave_outbox (id, request_id, leave_id, event_type, payload, status)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.runner().ExecContext(ctx, query,
		event.ID, event.RequestID, event.LeaveID,
		event.EventType, event.Payload, event.Status,
	)
	return err
}

// ListDue returns unsent events ready to publish, oldest first. Failed
// events reappear once their retry deadline passes.
func (r *outboxRepository) ListDue(ctx context.Context, limit int) ([]OutboxEvent, error) {
	const query = `
SELECT id::text, request_id, leave_id::text, event_type, payload, status,
       retry_count, COALESCE(next_retry_at, created_at)
FROM leave_outbox
WHERE status <> $1
  AND (next_retry_at IS NULL OR next_retry_at <= NOW())
ORDER BY created_at
LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, OutboxStatusSent, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		err := rows.Scan(
			&e.ID, &e.RequestID, &e.LeaveID, &e.EventType,
			&e.Payload, &e.Status, &e.RetryCount, &e.NextRetryAt,
		)
		if err != nil {
			return nil, err
		}
		due = append(due, e)
	}
	return due, rows.Err()
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	const query = `
UPDATE leave_outbox
SET status = $2, processed_at = NOW(), error_message = NULL, updated_at = NOW()
WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id, OutboxStatusSent)
	return err
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	const query = `
UPDATE leave_outbox
SET status = $2,
    retry_count = retry_count + 1,
    error_message = LEFT($3, $4),
    next_retry_at = NOW() + make_interval(secs => LEAST(retry_count + 1, $5) * $6),
    updated_at = NOW()
WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query,
		id, OutboxStatusFailed, reason,
		maxErrorMessage, maxRetrySteps, retryStepSeconds,
	)
	return err
}

func (r *outboxRepository) runner() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}
