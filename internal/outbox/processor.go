package outbox

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/EricGoj/Middleware/internal/domain"
	"github.com/EricGoj/Middleware/internal/infrastructure/jira"
	"github.com/EricGoj/Middleware/internal/repository/issue_repo"
	"github.com/EricGoj/Middleware/internal/repository/outbox_repo"
)

// Processor drains the sync-event outbox: for every pending event it
// creates the remote issue, links the returned key onto the aggregate and
// flips the event to DONE. Delivery is at least once — a crash between the
// remote create and the local bookkeeping means the next tick creates a
// duplicate remote issue (traceable through the external-reference label).
type Processor struct {
	outboxRepo   outbox_repo.OutboxRepository
	issueRepo    issue_repo.IssueRepository
	tracker      jira.Port
	issueType    string
	pollInterval time.Duration
	pollTimeout  time.Duration
	batchSize    int
	logger       *zap.Logger

	now func() time.Time
}

func NewProcessor(
	outboxRepo outbox_repo.OutboxRepository,
	issueRepo issue_repo.IssueRepository,
	tracker jira.Port,
	issueType string,
	pollInterval time.Duration,
	pollTimeout time.Duration,
	batchSize int,
	logger *zap.Logger,
) *Processor {
	if issueType == "" {
		issueType = "Task"
	}
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Processor{
		outboxRepo:   outboxRepo,
		issueRepo:    issueRepo,
		tracker:      tracker,
		issueType:    issueType,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		batchSize:    batchSize,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Run blocks until ctx is cancelled. Ticks execute sequentially in this
// goroutine, so a slow scan delays the next one instead of overlapping it.
func (p *Processor) Run(ctx context.Context) {
	p.logger.Info("Starting sync event processor", zap.Duration("poll_interval", p.pollInterval))
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Sync event processor stopped")
			return
		case <-ticker.C:
			tickCtx, cancel := context.WithTimeout(ctx, p.pollTimeout)
			if err := p.ProcessPendingEvents(tickCtx); err != nil {
				p.logger.Error("Error processing sync events", zap.Error(err))
			}
			cancel()
		}
	}
}

// ProcessPendingEvents runs a single scan. One event failing is recorded on
// that event and does not stop the rest of the batch.
func (p *Processor) ProcessPendingEvents(ctx context.Context) error {
	events, err := p.outboxRepo.GetPendingEvents(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending sync events: %w", err)
	}

	if len(events) == 0 {
		p.logger.Debug("No pending sync events found.")
		return nil
	}

	p.logger.Info("Processing pending sync events", zap.Int("count", len(events)))

	for _, event := range events {
		if err := p.processEvent(ctx, event); err != nil {
			p.logger.Error("Failed to process sync event",
				zap.String("event_id", event.ID),
				zap.String("entity_id", event.EntityID),
				zap.Int("retry_count", event.RetryCount),
				zap.Error(err))
			p.markFailed(ctx, event.ID, err)
		}
	}
	return nil
}

func (p *Processor) processEvent(ctx context.Context, event *domain.SyncEvent) error {
	issue, err := p.issueRepo.GetIssueByID(ctx, event.EntityID)
	if err != nil {
		return fmt.Errorf("referenced issue %s not found: %w", event.EntityID, err)
	}

	key, err := p.tracker.CreateIssue(ctx, jira.CreateIssueRequest{
		Summary:     issue.Title,
		Description: issue.Description,
		IssueType:   p.issueType,
		DueDate:     issue.DueDate,
		Priority:    issue.Priority,
		ExternalRef: event.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to create remote issue: %w", err)
	}

	issue.LinkBusinessKey(key, p.now())
	issue.UpdateSyncStatus(domain.SyncDone, p.now())
	// Link and completion commit together. The remote call stays outside the
	// transaction, so the only remaining duplicate window is a crash between
	// the remote create and this commit.
	if err := p.issueRepo.LinkIssueAndCompleteSyncEvent(ctx, issue, event.ID); err != nil {
		return fmt.Errorf("failed to persist business key %s: %w", key, err)
	}

	p.logger.Info("Sync event processed",
		zap.String("event_id", event.ID),
		zap.String("issue_id", issue.ID),
		zap.String("business_key", key))
	return nil
}

func (p *Processor) markFailed(ctx context.Context, eventID string, cause error) {
	if err := p.outboxRepo.MarkEventFailed(ctx, eventID, cause.Error()); err != nil {
		p.logger.Error("Failed to record sync event failure", zap.String("event_id", eventID), zap.Error(err))
	}
}
