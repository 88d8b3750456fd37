package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestNewTask(t *testing.T) {
	task, err := NewTask("task-1", "  Fix login  ", "Users cannot log in", nil, "high", testNow)
	require.NoError(t, err)

	assert.Equal(t, "Fix login", task.Title)
	assert.Equal(t, StatusPending, task.Status)
	assert.Equal(t, PriorityHigh, task.Priority)
	assert.Equal(t, testNow, task.CreatedAt)
	assert.Equal(t, testNow, task.UpdatedAt)
	assert.Empty(t, task.BusinessKey)
}

func TestNewTaskValidation(t *testing.T) {
	_, err := NewTask("task-1", "   ", "", nil, "", testNow)
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = NewTask("task-1", strings.Repeat("a", MaxTitleLength+1), "", nil, "", testNow)
	assert.ErrorIs(t, err, ErrTitleTooLong)

	_, err = NewTask("task-1", "ok", strings.Repeat("a", MaxTaskDescriptionLength+1), nil, "", testNow)
	assert.ErrorIs(t, err, ErrDescriptionTooLong)
}

func TestTitleLengthIsCountedInRunes(t *testing.T) {
	// 255 multibyte characters are within bounds even though the byte count
	// is far above 255.
	title := strings.Repeat("é", MaxTitleLength)
	task, err := NewTask("task-1", title, "", nil, "", testNow)
	require.NoError(t, err)
	assert.Equal(t, title, task.Title)

	_, err = NewTask("task-1", strings.Repeat("é", MaxTitleLength+1), "", nil, "", testNow)
	assert.ErrorIs(t, err, ErrTitleTooLong)
}

func TestDescriptionLengthIsCountedInRunes(t *testing.T) {
	task, err := NewTask("task-1", "ok", strings.Repeat("ü", MaxTaskDescriptionLength), nil, "", testNow)
	require.NoError(t, err)
	assert.Len(t, []rune(task.Description), MaxTaskDescriptionLength)

	issue, err := NewIssue("issue-1", "ok", strings.Repeat("ü", MaxIssueDescriptionLength), nil, "", testNow)
	require.NoError(t, err)
	err = issue.UpdateDescription(strings.Repeat("ü", MaxIssueDescriptionLength+1), testNow)
	assert.ErrorIs(t, err, ErrDescriptionTooLong)
}

func TestNormalizePriorityFallsBackToMedium(t *testing.T) {
	assert.Equal(t, PriorityHigh, NormalizePriority("High"))
	assert.Equal(t, PriorityLow, NormalizePriority(" low "))
	assert.Equal(t, PriorityMedium, NormalizePriority("medium"))
	assert.Equal(t, PriorityMedium, NormalizePriority(""))
	assert.Equal(t, PriorityMedium, NormalizePriority("urgent"))
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, status)

	status, err = ParseStatus(" DONE ")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, status)

	_, err = ParseStatus("ARCHIVED")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestTaskUpdatesBumpUpdatedAt(t *testing.T) {
	task, err := NewTask("task-1", "Fix login", "", nil, "", testNow)
	require.NoError(t, err)

	later := testNow.Add(time.Minute)
	task.UpdateStatus(StatusDone, later)

	assert.Equal(t, StatusDone, task.Status)
	assert.Equal(t, later, task.UpdatedAt)
	assert.Equal(t, testNow, task.CreatedAt)
	assert.True(t, !task.UpdatedAt.Before(task.CreatedAt))
}

func TestTaskUpdateTitleRejectsBlank(t *testing.T) {
	task, err := NewTask("task-1", "Fix login", "", nil, "", testNow)
	require.NoError(t, err)

	err = task.UpdateTitle("  ", testNow.Add(time.Minute))
	assert.ErrorIs(t, err, ErrTitleRequired)
	assert.Equal(t, "Fix login", task.Title)
	assert.Equal(t, testNow, task.UpdatedAt)
}

func TestLinkBusinessKey(t *testing.T) {
	task, err := NewTask("task-1", "Fix login", "", nil, "", testNow)
	require.NoError(t, err)

	later := testNow.Add(time.Second)
	task.LinkBusinessKey("DEMO-42", later)

	assert.Equal(t, "DEMO-42", task.BusinessKey)
	assert.Equal(t, later, task.UpdatedAt)
}

func TestIssueStartsSyncPending(t *testing.T) {
	issue, err := NewIssue("issue-1", "Broken search", "", nil, "low", testNow)
	require.NoError(t, err)

	assert.Equal(t, SyncPending, issue.SyncStatus)

	later := testNow.Add(time.Minute)
	issue.UpdateSyncStatus(SyncDone, later)
	assert.Equal(t, SyncDone, issue.SyncStatus)
	assert.Equal(t, later, issue.UpdatedAt)
}

func TestIssueSnapshot(t *testing.T) {
	issue, err := NewIssue("issue-1", "Broken search", "Search returns no hits", nil, "high", testNow)
	require.NoError(t, err)

	payload, err := IssueSnapshot(issue)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Broken search","description":"Search returns no hits","priority":"HIGH"}`, string(payload))
}

func TestNewSyncEventStartsPending(t *testing.T) {
	event := NewSyncEvent("event-1", EventTypeIssueCreated, "issue-1", []byte(`{}`), testNow)

	assert.Equal(t, SyncEventPending, event.Status)
	assert.Zero(t, event.RetryCount)
	assert.Nil(t, event.AttemptedAt)
	assert.Nil(t, event.ProcessedAt)
}
