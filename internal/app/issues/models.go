package issues

import (
	"time"

	"github.com/EricGoj/Middleware/internal/domain"
	"github.com/EricGoj/Middleware/internal/timeparse"
)

type CreateIssueRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DueDate     *timeparse.Time `json:"dueDate"`
	Priority    string          `json:"priority"`
}

// UpdateIssueRequest uses pointers to tell "leave unchanged" (nil) apart
// from "set to this value", including setting a field to empty.
type UpdateIssueRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Status      *string         `json:"status"`
	DueDate     *timeparse.Time `json:"dueDate"`
	Priority    *string         `json:"priority"`
}

type IssueResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DueDate     *time.Time `json:"dueDate"`
	Priority    string     `json:"priority"`
	BusinessKey string     `json:"businessKey,omitempty"`
	SyncStatus  string     `json:"syncStatus,omitempty"`
}

func mapIssueToResponse(issue *domain.Issue) *IssueResponse {
	return &IssueResponse{
		ID:          issue.ID,
		Title:       issue.Title,
		Description: issue.Description,
		Status:      string(issue.Status),
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
		DueDate:     issue.DueDate,
		Priority:    string(issue.Priority),
		BusinessKey: issue.BusinessKey,
		SyncStatus:  string(issue.SyncStatus),
	}
}

func mapIssuesToResponse(issues []*domain.Issue) []*IssueResponse {
	responses := make([]*IssueResponse, len(issues))
	for i, issue := range issues {
		responses[i] = mapIssueToResponse(issue)
	}
	return responses
}

func dueDateValue(t *timeparse.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	value := t.Time
	return &value
}
