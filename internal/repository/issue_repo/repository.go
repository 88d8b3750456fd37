package issue_repo

import (
	"context"

	"github.com/EricGoj/Middleware/internal/domain"
)

type IssueRepository interface {
	CreateIssue(ctx context.Context, issue *domain.Issue) error
	// CreateIssueAndSyncEvent inserts the aggregate and its outbox row in a
	// single transaction so a crash can never leave one without the other.
	CreateIssueAndSyncEvent(ctx context.Context, issue *domain.Issue, event *domain.SyncEvent) error
	// LinkIssueAndCompleteSyncEvent persists the business-key link and flips
	// the sync event to DONE in a single transaction, so a crash can never
	// leave a linked issue behind a still-pending event.
	LinkIssueAndCompleteSyncEvent(ctx context.Context, issue *domain.Issue, eventID string) error
	GetIssueByID(ctx context.Context, id string) (*domain.Issue, error)
	GetAllIssues(ctx context.Context) ([]*domain.Issue, error)
	UpdateIssue(ctx context.Context, issue *domain.Issue) error
	DeleteIssue(ctx context.Context, id string) error
}
