package webhook

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/EricGoj/Middleware/internal/app/jiraevents"
	"github.com/EricGoj/Middleware/internal/handler/http/httperr"
)

type WebhookHandler struct {
	service *jiraevents.Service
	secret  string
	logger  *zap.Logger
}

func NewWebhookHandler(s *jiraevents.Service, secret string, l *zap.Logger) *WebhookHandler {
	return &WebhookHandler{service: s, secret: secret, logger: l}
}

func RegisterRoutes(r chi.Router, s *jiraevents.Service, secret string, l *zap.Logger) {
	handler := NewWebhookHandler(s, secret, l.With(zap.String("component", "JiraWebhookHandler")))
	r.Post("/jira/webhooks", handler.Receive)
}

func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	// Shared-secret validation is optional: configure nothing and every
	// delivery is accepted.
	if h.secret != "" && r.Header.Get("x-webhook-secret") != h.secret {
		h.logger.Warn("Rejected Jira webhook due to invalid secret")
		httperr.WriteJSON(w, http.StatusUnauthorized, map[string]string{"status": "unauthorized"})
		return
	}

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Warn("Invalid Jira webhook payload", zap.Error(err))
		httperr.Write(w, r, http.StatusBadRequest, "Bad Request", "invalid JSON payload")
		return
	}

	headers := make(map[string]string, len(r.Header))
	for name, values := range r.Header {
		if len(values) > 0 {
			headers[strings.ToLower(name)] = values[0]
		}
	}

	h.service.ProcessWebhook(r.Context(), payload, headers)
	httperr.WriteJSON(w, http.StatusOK, map[string]string{"status": "received"})
}
