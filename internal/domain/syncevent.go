package domain

import (
	"encoding/json"
	"time"
)

type SyncEventStatus string

const (
	SyncEventPending SyncEventStatus = "PENDING"
	SyncEventDone    SyncEventStatus = "DONE"
	SyncEventFailed  SyncEventStatus = "FAILED"
)

const EventTypeIssueCreated = "IssueCreated"

// SyncEvent is an outbox row. The payload is a snapshot of the aggregate
// captured at enqueue time; the sync loop never re-reads the live aggregate
// to build the remote request.
type SyncEvent struct {
	ID          string
	EventType   string
	EntityID    string
	Payload     []byte
	Status      SyncEventStatus
	RetryCount  int
	LastError   string
	CreatedAt   time.Time
	AttemptedAt *time.Time
	ProcessedAt *time.Time
}

func NewSyncEvent(id, eventType, entityID string, payload []byte, now time.Time) *SyncEvent {
	return &SyncEvent{
		ID:        id,
		EventType: eventType,
		EntityID:  entityID,
		Payload:   payload,
		Status:    SyncEventPending,
		CreatedAt: now,
	}
}

type issueSnapshot struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// IssueSnapshot serializes the fields the sync loop forwards to the remote
// tracker.
func IssueSnapshot(issue *Issue) ([]byte, error) {
	return json.Marshal(issueSnapshot{
		Title:       issue.Title,
		Description: issue.Description,
		Priority:    string(issue.Priority),
	})
}
