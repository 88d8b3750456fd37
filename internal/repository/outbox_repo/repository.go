package outbox_repo

import (
	"context"

	"github.com/EricGoj/Middleware/internal/domain"
)

type OutboxRepository interface {
	CreateEvent(ctx context.Context, event *domain.SyncEvent) error
	// GetPendingEvents returns PENDING rows only, oldest first, skipping rows
	// whose retry backoff has not elapsed yet.
	GetPendingEvents(ctx context.Context, limit int) ([]*domain.SyncEvent, error)
	// MarkEventFailed increments the retry counter and records the error text;
	// the row stays PENDING until retries are exhausted, then flips to FAILED.
	MarkEventFailed(ctx context.Context, id string, lastError string) error
}
