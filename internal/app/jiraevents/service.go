package jiraevents

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/EricGoj/Middleware/internal/notify"
)

// Service turns raw Jira webhook deliveries into normalized envelopes on
// the fan-out topic.
type Service struct {
	publisher notify.Publisher
	logger    *zap.Logger
}

func NewService(publisher notify.Publisher, logger *zap.Logger) *Service {
	return &Service{publisher: publisher, logger: logger}
}

// ProcessWebhook classifies the delivery and republishes it. Failures are
// logged, never surfaced: Jira has already been answered with 200 and will
// redeliver on its own schedule.
func (s *Service) ProcessWebhook(ctx context.Context, payload map[string]any, headers map[string]string) {
	identifier := headerOrDefault(headers, "x-atlassian-webhook-identifier", "unknown")
	retry := headerOrDefault(headers, "x-atlassian-webhook-retry", "0")
	flow := headerOrDefault(headers, "x-atlassian-webhook-flow", "Primary")

	rawEvent := "jira:unknown"
	if v, ok := payload["webhookEvent"].(string); ok && v != "" {
		rawEvent = v
	}

	env := notify.WebhookEnvelope{
		Type:   classifyEvent(rawEvent),
		Source: "jira",
		Meta: notify.WebhookMeta{
			Identifier: identifier,
			Retry:      retry,
			Flow:       flow,
			Event:      rawEvent,
		},
		Payload: payload,
	}

	if err := s.publisher.PublishWebhook(ctx, env); err != nil {
		s.logger.Error("Failed to republish Jira webhook",
			zap.String("identifier", identifier), zap.Error(err))
		return
	}
	s.logger.Info("Processed Jira webhook",
		zap.String("identifier", identifier),
		zap.String("retry", retry),
		zap.String("flow", flow),
		zap.String("type", string(env.Type)))
}

func classifyEvent(rawEvent string) notify.Kind {
	switch {
	case strings.Contains(rawEvent, "issue_created"):
		return notify.KindJiraIssueCreated
	case strings.Contains(rawEvent, "issue_updated"):
		return notify.KindJiraIssueUpdated
	case strings.Contains(rawEvent, "issue_deleted"):
		return notify.KindJiraIssueDeleted
	default:
		return notify.KindJiraWebhook
	}
}

func headerOrDefault(headers map[string]string, key, fallback string) string {
	if v, ok := headers[key]; ok && v != "" {
		return v
	}
	return fallback
}
