package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/EricGoj/Middleware/internal/domain"
	"github.com/EricGoj/Middleware/internal/repository/outbox_repo"
)

// RetryPolicy bounds how often a failing event is retried. Backoff grows
// linearly with the retry count.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

type pgOutboxRepository struct {
	db     *sql.DB
	policy RetryPolicy
	logger *zap.Logger
}

func NewOutboxRepository(db *sql.DB, policy RetryPolicy, l *zap.Logger) outbox_repo.OutboxRepository {
	return &pgOutboxRepository{db: db, policy: policy, logger: l}
}

func (r *pgOutboxRepository) CreateEvent(ctx context.Context, event *domain.SyncEvent) error {
	query := `INSERT INTO sync_events (id, event_type, entity_id, payload, status, retry_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.EventType, event.EntityID, event.Payload, event.Status, event.RetryCount, event.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create sync event", zap.String("event_id", event.ID), zap.Error(err))
		return fmt.Errorf("failed to create sync event: %w", err)
	}
	r.logger.Debug("Sync event created", zap.String("event_id", event.ID), zap.String("entity_id", event.EntityID))
	return nil
}

func (r *pgOutboxRepository) GetPendingEvents(ctx context.Context, limit int) ([]*domain.SyncEvent, error) {
	var events []*domain.SyncEvent
	query := `SELECT id, event_type, entity_id, payload, status, retry_count, last_error, created_at, attempted_at, processed_at
		FROM sync_events
		WHERE status = $1
		  AND retry_count < $2
		  AND (attempted_at IS NULL OR attempted_at + make_interval(secs => $3 * retry_count) <= now())
		ORDER BY created_at ASC
		LIMIT $4`
	rows, err := r.db.QueryContext(ctx, query,
		domain.SyncEventPending, r.policy.MaxRetries, r.policy.Backoff.Seconds(), limit)
	if err != nil {
		r.logger.Error("Failed to get pending sync events", zap.Error(err))
		return nil, fmt.Errorf("failed to get pending sync events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		event := &domain.SyncEvent{}
		var lastError sql.NullString
		var attemptedAt, processedAt sql.NullTime
		if err := rows.Scan(&event.ID, &event.EventType, &event.EntityID, &event.Payload,
			&event.Status, &event.RetryCount, &lastError, &event.CreatedAt, &attemptedAt, &processedAt); err != nil {
			r.logger.Error("Failed to scan sync event row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan sync event row: %w", err)
		}
		if lastError.Valid {
			event.LastError = lastError.String
		}
		if attemptedAt.Valid {
			event.AttemptedAt = &attemptedAt.Time
		}
		if processedAt.Valid {
			event.ProcessedAt = &processedAt.Time
		}
		events = append(events, event)
	}
	if err = rows.Err(); err != nil {
		r.logger.Error("Rows error while getting pending sync events", zap.Error(err))
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return events, nil
}

func (r *pgOutboxRepository) MarkEventFailed(ctx context.Context, id string, lastError string) error {
	query := `UPDATE sync_events
		SET retry_count = retry_count + 1,
		    last_error = $2,
		    attempted_at = now(),
		    status = CASE WHEN retry_count + 1 >= $3 THEN $4 ELSE status END
		WHERE id = $1 AND status = $5`
	_, err := r.db.ExecContext(ctx, query,
		id, lastError, r.policy.MaxRetries, domain.SyncEventFailed, domain.SyncEventPending)
	if err != nil {
		r.logger.Error("Failed to record sync event failure", zap.String("event_id", id), zap.Error(err))
		return fmt.Errorf("failed to record sync event %s failure: %w", id, err)
	}
	r.logger.Debug("Sync event failure recorded", zap.String("event_id", id), zap.String("last_error", lastError))
	return nil
}
