package issues

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/EricGoj/Middleware/internal/app/issues"
	"github.com/EricGoj/Middleware/internal/domain"
	"github.com/EricGoj/Middleware/internal/handler/http/httperr"
)

type IssueHandler struct {
	service issues.IssueService
	logger  *zap.Logger
}

func NewIssueHandler(s issues.IssueService, l *zap.Logger) *IssueHandler {
	return &IssueHandler{service: s, logger: l}
}

func (h *IssueHandler) CreateIssue(w http.ResponseWriter, r *http.Request) {
	var req issues.CreateIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for CreateIssue", zap.Error(err))
		httperr.Write(w, r, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}

	res, err := h.service.CreateIssue(r.Context(), &req)
	if err != nil {
		if field, ok := validationField(err); ok {
			h.logger.Warn("Validation failed for CreateIssue", zap.Error(err))
			httperr.WriteValidation(w, r, map[string]string{field: err.Error()})
			return
		}
		h.logger.Error("Error creating issue", zap.Error(err))
		httperr.WriteInternal(w, r)
		return
	}

	httperr.WriteJSON(w, http.StatusCreated, res)
}

func (h *IssueHandler) GetIssue(w http.ResponseWriter, r *http.Request) {
	issueID := chi.URLParam(r, "issueID")

	res, err := h.service.GetIssue(r.Context(), issueID)
	if err != nil {
		if errors.Is(err, issues.ErrIssueNotFound) {
			httperr.WriteNotFound(w, r, "Issue not found with id: "+issueID)
			return
		}
		h.logger.Error("Error getting issue", zap.String("issue_id", issueID), zap.Error(err))
		httperr.WriteInternal(w, r)
		return
	}

	httperr.WriteJSON(w, http.StatusOK, res)
}

func (h *IssueHandler) ListIssues(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ListIssues(r.Context())
	if err != nil {
		h.logger.Error("Error listing issues", zap.Error(err))
		httperr.WriteInternal(w, r)
		return
	}
	if res == nil {
		res = []*issues.IssueResponse{}
	}
	httperr.WriteJSON(w, http.StatusOK, res)
}

func (h *IssueHandler) UpdateIssue(w http.ResponseWriter, r *http.Request) {
	issueID := chi.URLParam(r, "issueID")

	var req issues.UpdateIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for UpdateIssue", zap.Error(err))
		httperr.Write(w, r, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}

	res, err := h.service.UpdateIssue(r.Context(), issueID, &req)
	if err != nil {
		switch {
		case errors.Is(err, issues.ErrIssueNotFound):
			httperr.WriteNotFound(w, r, "Issue not found with id: "+issueID)
		default:
			if field, ok := validationField(err); ok {
				httperr.WriteValidation(w, r, map[string]string{field: err.Error()})
				return
			}
			h.logger.Error("Error updating issue", zap.String("issue_id", issueID), zap.Error(err))
			httperr.WriteInternal(w, r)
		}
		return
	}

	httperr.WriteJSON(w, http.StatusOK, res)
}

func (h *IssueHandler) DeleteIssue(w http.ResponseWriter, r *http.Request) {
	issueID := chi.URLParam(r, "issueID")

	if err := h.service.DeleteIssue(r.Context(), issueID); err != nil {
		if errors.Is(err, issues.ErrIssueNotFound) {
			httperr.WriteNotFound(w, r, "Issue not found with id: "+issueID)
			return
		}
		h.logger.Error("Error deleting issue", zap.String("issue_id", issueID), zap.Error(err))
		httperr.WriteInternal(w, r)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func validationField(err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrTitleRequired), errors.Is(err, domain.ErrTitleTooLong):
		return "title", true
	case errors.Is(err, domain.ErrDescriptionTooLong):
		return "description", true
	case errors.Is(err, domain.ErrInvalidStatus):
		return "status", true
	default:
		return "", false
	}
}
