package issues

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/EricGoj/Middleware/internal/domain"
	"github.com/EricGoj/Middleware/internal/infrastructure/jira"
	"github.com/EricGoj/Middleware/internal/notify"
)

type fakeIssueRepo struct {
	issues    map[string]*domain.Issue
	events    map[string]*domain.SyncEvent
	createErr error
}

func newFakeIssueRepo() *fakeIssueRepo {
	return &fakeIssueRepo{
		issues: make(map[string]*domain.Issue),
		events: make(map[string]*domain.SyncEvent),
	}
}

func (r *fakeIssueRepo) CreateIssue(_ context.Context, issue *domain.Issue) error {
	copied := *issue
	r.issues[issue.ID] = &copied
	return nil
}

func (r *fakeIssueRepo) CreateIssueAndSyncEvent(_ context.Context, issue *domain.Issue, event *domain.SyncEvent) error {
	if r.createErr != nil {
		return r.createErr
	}
	copiedIssue := *issue
	copiedEvent := *event
	r.issues[issue.ID] = &copiedIssue
	r.events[event.ID] = &copiedEvent
	return nil
}

func (r *fakeIssueRepo) LinkIssueAndCompleteSyncEvent(_ context.Context, issue *domain.Issue, eventID string) error {
	if _, ok := r.issues[issue.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *issue
	r.issues[issue.ID] = &copied
	if event, ok := r.events[eventID]; ok {
		event.Status = domain.SyncEventDone
	}
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
	var all []*domain.Issue
	for _, issue := range r.issues {
		copied := *issue
		all = append(all, &copied)
	}
	return all, nil
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
	if _, ok := r.issues[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.issues, id)
	return nil
}

type fakeTracker struct {
	createKey   string
	createSeen  []jira.CreateIssueRequest
	deletedKeys []string
}

func (f *fakeTracker) CreateIssue(_ context.Context, req jira.CreateIssueRequest) (string, error) {
	f.createSeen = append(f.createSeen, req)
	return f.createKey, nil
}

func (f *fakeTracker) UpdateIssue(_ context.Context, _ string, _ map[string]any) error {
	return nil
}

func (f *fakeTracker) DeleteIssue(_ context.Context, key string) error {
	f.deletedKeys = append(f.deletedKeys, key)
	return nil
}

type fakePublisher struct {
	changes []notify.ChangeMessage
}

func (f *fakePublisher) PublishChange(_ context.Context, msg notify.ChangeMessage) error {
	f.changes = append(f.changes, msg)
	return nil
}

func (f *fakePublisher) PublishWebhook(_ context.Context, _ notify.WebhookEnvelope) error {
	return nil
}

func newTestIssueService(repo *fakeIssueRepo, tracker *fakeTracker, publisher *fakePublisher) *issueService {
	svc := NewIssueService(repo, tracker, publisher, zap.NewNop()).(*issueService)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	counter := 0
	svc.newID = func() string {
		counter++
		return fmt.Sprintf("id-%d", counter)
	}
	return svc
}

func TestCreateIssueEnqueuesSyncEvent(t *testing.T) {
	repo := newFakeIssueRepo()
	tracker := &fakeTracker{createKey: "DEMO-1"}
	publisher := &fakePublisher{}
	svc := newTestIssueService(repo, tracker, publisher)

	res, err := svc.CreateIssue(context.Background(), &CreateIssueRequest{
		Title:       "Broken search",
		Description: "Search returns no hits",
		Priority:    "high",
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.SyncPending), res.SyncStatus)
	assert.Empty(t, res.BusinessKey)

	// The remote tracker must not be called on the create path, only by the
	// sync loop.
	assert.Empty(t, tracker.createSeen)

	require.Len(t, repo.events, 1)
	for _, event := range repo.events {
		assert.Equal(t, domain.EventTypeIssueCreated, event.EventType)
		assert.Equal(t, res.ID, event.EntityID)
		assert.Equal(t, domain.SyncEventPending, event.Status)
		assert.JSONEq(t, `{"title":"Broken search","description":"Search returns no hits","priority":"HIGH"}`, string(event.Payload))
	}

	require.Len(t, publisher.changes, 1)
	assert.Equal(t, notify.KindIssueCreated, publisher.changes[0].Type)
}

func TestCreateIssueRollsBackTogether(t *testing.T) {
	repo := newFakeIssueRepo()
	repo.createErr = sql.ErrTxDone
	svc := newTestIssueService(repo, &fakeTracker{}, &fakePublisher{})

	_, err := svc.CreateIssue(context.Background(), &CreateIssueRequest{Title: "Broken search"})
	require.Error(t, err)

	assert.Empty(t, repo.issues)
	assert.Empty(t, repo.events)
}

func TestUpdateIssuePartialFields(t *testing.T) {
	repo := newFakeIssueRepo()
	publisher := &fakePublisher{}
	svc := newTestIssueService(repo, &fakeTracker{}, publisher)

	created, err := svc.CreateIssue(context.Background(), &CreateIssueRequest{
		Title:    "Broken search",
		Priority: "low",
	})
	require.NoError(t, err)

	title := "Broken search on mobile"
	res, err := svc.UpdateIssue(context.Background(), created.ID, &UpdateIssueRequest{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, "Broken search on mobile", res.Title)
	assert.Equal(t, "LOW", res.Priority)
	assert.Equal(t, created.Status, res.Status)

	require.Len(t, publisher.changes, 2)
	assert.Equal(t, notify.KindIssueUpdated, publisher.changes[1].Type)
}

func TestDeleteIssuePublishesIDOnly(t *testing.T) {
	repo := newFakeIssueRepo()
	tracker := &fakeTracker{}
	publisher := &fakePublisher{}
	svc := newTestIssueService(repo, tracker, publisher)

	created, err := svc.CreateIssue(context.Background(), &CreateIssueRequest{Title: "Broken search"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteIssue(context.Background(), created.ID))

	assert.Empty(t, repo.issues)
	// Never linked to a remote issue, so nothing to delete upstream.
	assert.Empty(t, tracker.deletedKeys)

	require.Len(t, publisher.changes, 2)
	assert.Equal(t, notify.KindIssueDeleted, publisher.changes[1].Type)
	assert.Equal(t, created.ID, publisher.changes[1].ID)
	assert.Nil(t, publisher.changes[1].Task)
}

func TestGetIssueNotFound(t *testing.T) {
	svc := newTestIssueService(newFakeIssueRepo(), &fakeTracker{}, &fakePublisher{})

	_, err := svc.GetIssue(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrIssueNotFound)
}
