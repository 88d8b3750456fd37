package issues

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/EricGoj/Middleware/internal/app/issues"
)

func RegisterRoutes(r chi.Router, s issues.IssueService, l *zap.Logger) {
	handler := NewIssueHandler(s, l.With(zap.String("component", "IssueHTTPHandler")))

	r.Route("/api/issues", func(r chi.Router) {
		r.Post("/", handler.CreateIssue)
		r.Get("/", handler.ListIssues)
		r.Get("/{issueID}", handler.GetIssue)
		r.Patch("/{issueID}", handler.UpdateIssue)
		r.Delete("/{issueID}", handler.DeleteIssue)
	})
}
