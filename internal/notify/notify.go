package notify

import "context"

// Kind tags every notification with an explicit discriminator so consumers
// never have to inspect payload shapes.
type Kind string

const (
	KindTaskCreated  Kind = "TASK_CREATED"
	KindTaskUpdated  Kind = "TASK_UPDATED"
	KindTaskDeleted  Kind = "TASK_DELETED"
	KindIssueCreated Kind = "ISSUE_CREATED"
	KindIssueUpdated Kind = "ISSUE_UPDATED"
	KindIssueDeleted Kind = "ISSUE_DELETED"

	KindJiraIssueCreated Kind = "JIRA_ISSUE_CREATED"
	KindJiraIssueUpdated Kind = "JIRA_ISSUE_UPDATED"
	KindJiraIssueDeleted Kind = "JIRA_ISSUE_DELETED"
	KindJiraWebhook      Kind = "JIRA_WEBHOOK"
)

// DefaultTopic is the well-known topic every connected client subscribes to.
const DefaultTopic = "jira-events"

// topicByKind reroutes individual kinds to dedicated topics. Empty today:
// everything fans out on the default topic, but routing a kind elsewhere is
// a table entry, not a type switch.
var topicByKind = map[Kind]string{}

func topicFor(kind Kind, fallback string) string {
	if topic, ok := topicByKind[kind]; ok && topic != "" {
		return topic
	}
	return fallback
}

// ChangeMessage notifies clients about a locally originated create, update
// or delete. Created/updated carry the full task snapshot; deleted carries
// only the id.
type ChangeMessage struct {
	Type Kind   `json:"type"`
	Task any    `json:"task,omitempty"`
	ID   string `json:"id,omitempty"`
}

type WebhookMeta struct {
	Identifier string `json:"identifier"`
	Retry      string `json:"retry"`
	Flow       string `json:"flow"`
	Event      string `json:"event"`
}

// WebhookEnvelope wraps a Jira webhook payload with normalized metadata
// before it is republished to clients.
type WebhookEnvelope struct {
	Type    Kind           `json:"type"`
	Source  string         `json:"source"`
	Meta    WebhookMeta    `json:"meta"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	PublishChange(ctx context.Context, msg ChangeMessage) error
	PublishWebhook(ctx context.Context, env WebhookEnvelope) error
}
