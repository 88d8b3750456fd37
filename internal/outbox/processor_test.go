package outbox

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/EricGoj/Middleware/internal/domain"
	"github.com/EricGoj/Middleware/internal/infrastructure/jira"
)

type fakeOutboxRepo struct {
	events     map[string]*domain.SyncEvent
	maxRetries int
}

func newFakeOutboxRepo() *fakeOutboxRepo {
	return &fakeOutboxRepo{events: make(map[string]*domain.SyncEvent), maxRetries: 5}
}

func (r *fakeOutboxRepo) CreateEvent(_ context.Context, event *domain.SyncEvent) error {
	copied := *event
	r.events[event.ID] = &copied
	return nil
}

func (r *fakeOutboxRepo) GetPendingEvents(_ context.Context, limit int) ([]*domain.SyncEvent, error) {
	var pending []*domain.SyncEvent
	for _, event := range r.events {
		if event.Status == domain.SyncEventPending && len(pending) < limit {
			copied := *event
			pending = append(pending, &copied)
		}
	}
	return pending, nil
}

func (r *fakeOutboxRepo) completeEvent(id string) {
	event, ok := r.events[id]
	if !ok || event.Status != domain.SyncEventPending {
		return
	}
	event.Status = domain.SyncEventDone
	now := time.Now().UTC()
	event.ProcessedAt = &now
	event.LastError = ""
}

func (r *fakeOutboxRepo) MarkEventFailed(_ context.Context, id string, lastError string) error {
	event, ok := r.events[id]
	if !ok || event.Status != domain.SyncEventPending {
		return nil
	}
	event.RetryCount++
	event.LastError = lastError
	now := time.Now().UTC()
	event.AttemptedAt = &now
	if event.RetryCount >= r.maxRetries {
		event.Status = domain.SyncEventFailed
	}
	return nil
}

type fakeIssueRepo struct {
	issues  map[string]*domain.Issue
	outbox  *fakeOutboxRepo
	linkErr error
}

func newFakeIssueRepo() *fakeIssueRepo {
	return &fakeIssueRepo{issues: make(map[string]*domain.Issue)}
}

func (r *fakeIssueRepo) CreateIssue(_ context.Context, issue *domain.Issue) error {
	copied := *issue
	r.issues[issue.ID] = &copied
	return nil
}

func (r *fakeIssueRepo) CreateIssueAndSyncEvent(_ context.Context, issue *domain.Issue, _ *domain.SyncEvent) error {
	copied := *issue
	r.issues[issue.ID] = &copied
	return nil
}

// LinkIssueAndCompleteSyncEvent applies both writes or neither, like the
// real transaction.
func (r *fakeIssueRepo) LinkIssueAndCompleteSyncEvent(_ context.Context, issue *domain.Issue, eventID string) error {
	if r.linkErr != nil {
		return r.linkErr
	}
	if _, ok := r.issues[issue.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *issue
	r.issues[issue.ID] = &copied
	r.outbox.completeEvent(eventID)
	return nil
}

func (r *fakeIssueRepo) GetIssueByID(_ context.Context, id string) (*domain.Issue, error) {
	issue, ok := r.issues[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *issue
	return &copied, nil
}

func (r *fakeIssueRepo) GetAllIssues(_ context.Context) ([]*domain.Issue, error) {
	return nil, nil
}

func (r *fakeIssueRepo) UpdateIssue(_ context.Context, issue *domain.Issue) error {
	if _, ok := r.issues[issue.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *issue
	r.issues[issue.ID] = &copied
	return nil
}

func (r *fakeIssueRepo) DeleteIssue(_ context.Context, id string) error {
	delete(r.issues, id)
	return nil
}

type fakeTracker struct {
	createKey  string
	createErr  error
	createSeen []jira.CreateIssueRequest
}

func (f *fakeTracker) CreateIssue(_ context.Context, req jira.CreateIssueRequest) (string, error) {
	f.createSeen = append(f.createSeen, req)
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.createKey, nil
}

func (f *fakeTracker) UpdateIssue(_ context.Context, _ string, _ map[string]any) error {
	return nil
}

func (f *fakeTracker) DeleteIssue(_ context.Context, _ string) error {
	return nil
}

func seedPendingEvent(t *testing.T, outboxRepo *fakeOutboxRepo, issueRepo *fakeIssueRepo) (*domain.Issue, *domain.SyncEvent) {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	issue, err := domain.NewIssue("issue-1", "Broken search", "Search returns no hits", nil, "high", now)
	require.NoError(t, err)
	require.NoError(t, issueRepo.CreateIssue(context.Background(), issue))

	payload, err := domain.IssueSnapshot(issue)
	require.NoError(t, err)
	event := domain.NewSyncEvent("event-1", domain.EventTypeIssueCreated, issue.ID, payload, now)
	require.NoError(t, outboxRepo.CreateEvent(context.Background(), event))

	return issue, event
}

func newTestProcessor(outboxRepo *fakeOutboxRepo, issueRepo *fakeIssueRepo, tracker *fakeTracker) *Processor {
	issueRepo.outbox = outboxRepo
	return NewProcessor(outboxRepo, issueRepo, tracker, "Task", time.Second, time.Second, 10, zap.NewNop())
}

func TestProcessPendingEventsLinksBusinessKey(t *testing.T) {
	outboxRepo := newFakeOutboxRepo()
	issueRepo := newFakeIssueRepo()
	tracker := &fakeTracker{createKey: "DEMO-1"}
	seedPendingEvent(t, outboxRepo, issueRepo)

	p := newTestProcessor(outboxRepo, issueRepo, tracker)
	require.NoError(t, p.ProcessPendingEvents(context.Background()))

	issue, err := issueRepo.GetIssueByID(context.Background(), "issue-1")
	require.NoError(t, err)
	assert.Equal(t, "DEMO-1", issue.BusinessKey)
	assert.Equal(t, domain.SyncDone, issue.SyncStatus)

	event := outboxRepo.events["event-1"]
	assert.Equal(t, domain.SyncEventDone, event.Status)
	assert.NotNil(t, event.ProcessedAt)

	require.Len(t, tracker.createSeen, 1)
	assert.Equal(t, "Broken search", tracker.createSeen[0].Summary)
	assert.Equal(t, "event-1", tracker.createSeen[0].ExternalRef)
}

func TestProcessPendingEventsKeepsEventOnTrackerFailure(t *testing.T) {
	outboxRepo := newFakeOutboxRepo()
	issueRepo := newFakeIssueRepo()
	tracker := &fakeTracker{createErr: errors.New("jira is down")}
	seedPendingEvent(t, outboxRepo, issueRepo)

	p := newTestProcessor(outboxRepo, issueRepo, tracker)
	require.NoError(t, p.ProcessPendingEvents(context.Background()))

	issue, err := issueRepo.GetIssueByID(context.Background(), "issue-1")
	require.NoError(t, err)
	assert.Empty(t, issue.BusinessKey)
	assert.Equal(t, domain.SyncPending, issue.SyncStatus)

	event := outboxRepo.events["event-1"]
	assert.Equal(t, domain.SyncEventPending, event.Status)
	assert.Equal(t, 1, event.RetryCount)
	assert.Contains(t, event.LastError, "jira is down")

	// Next scan retries the same event.
	tracker.createErr = nil
	tracker.createKey = "DEMO-2"
	require.NoError(t, p.ProcessPendingEvents(context.Background()))

	issue, err = issueRepo.GetIssueByID(context.Background(), "issue-1")
	require.NoError(t, err)
	assert.Equal(t, "DEMO-2", issue.BusinessKey)
	assert.Equal(t, domain.SyncEventDone, outboxRepo.events["event-1"].Status)
}

func TestProcessPendingEventsLinkAndCompletionAreAtomic(t *testing.T) {
	outboxRepo := newFakeOutboxRepo()
	issueRepo := newFakeIssueRepo()
	tracker := &fakeTracker{createKey: "DEMO-1"}
	seedPendingEvent(t, outboxRepo, issueRepo)

	issueRepo.linkErr = errors.New("connection reset")

	p := newTestProcessor(outboxRepo, issueRepo, tracker)
	require.NoError(t, p.ProcessPendingEvents(context.Background()))

	// The transaction failed, so neither the link nor the completion may be
	// visible: a linked issue behind a pending event would make the next
	// scan create a second remote issue for an already-linked aggregate.
	issue, err := issueRepo.GetIssueByID(context.Background(), "issue-1")
	require.NoError(t, err)
	assert.Empty(t, issue.BusinessKey)
	assert.Equal(t, domain.SyncPending, issue.SyncStatus)

	event := outboxRepo.events["event-1"]
	assert.Equal(t, domain.SyncEventPending, event.Status)
	assert.Equal(t, 1, event.RetryCount)
	assert.Contains(t, event.LastError, "connection reset")

	issueRepo.linkErr = nil
	require.NoError(t, p.ProcessPendingEvents(context.Background()))

	issue, err = issueRepo.GetIssueByID(context.Background(), "issue-1")
	require.NoError(t, err)
	assert.Equal(t, "DEMO-1", issue.BusinessKey)
	assert.Equal(t, domain.SyncDone, issue.SyncStatus)
	assert.Equal(t, domain.SyncEventDone, outboxRepo.events["event-1"].Status)
}

func TestProcessPendingEventsFlipsToFailedAfterMaxRetries(t *testing.T) {
	outboxRepo := newFakeOutboxRepo()
	outboxRepo.maxRetries = 2
	issueRepo := newFakeIssueRepo()
	tracker := &fakeTracker{createErr: errors.New("jira is down")}
	seedPendingEvent(t, outboxRepo, issueRepo)

	p := newTestProcessor(outboxRepo, issueRepo, tracker)
	require.NoError(t, p.ProcessPendingEvents(context.Background()))
	require.NoError(t, p.ProcessPendingEvents(context.Background()))

	event := outboxRepo.events["event-1"]
	assert.Equal(t, domain.SyncEventFailed, event.Status)
	assert.Equal(t, 2, event.RetryCount)

	// A dead event is never handed out again.
	require.NoError(t, p.ProcessPendingEvents(context.Background()))
	assert.Len(t, tracker.createSeen, 2)
}

func TestProcessPendingEventsRecordsMissingIssue(t *testing.T) {
	outboxRepo := newFakeOutboxRepo()
	issueRepo := newFakeIssueRepo()
	tracker := &fakeTracker{createKey: "DEMO-1"}

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	event := domain.NewSyncEvent("event-orphan", domain.EventTypeIssueCreated, "gone", []byte(`{}`), now)
	require.NoError(t, outboxRepo.CreateEvent(context.Background(), event))

	p := newTestProcessor(outboxRepo, issueRepo, tracker)
	require.NoError(t, p.ProcessPendingEvents(context.Background()))

	stored := outboxRepo.events["event-orphan"]
	assert.Equal(t, 1, stored.RetryCount)
	assert.Contains(t, stored.LastError, "gone")
	assert.Empty(t, tracker.createSeen)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	outboxRepo := newFakeOutboxRepo()
	issueRepo := newFakeIssueRepo()
	tracker := &fakeTracker{createKey: "DEMO-1"}

	p := NewProcessor(outboxRepo, issueRepo, tracker, "Task", 10*time.Millisecond, time.Second, 10, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("processor did not stop after context cancellation")
	}
}
