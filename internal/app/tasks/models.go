package tasks

import (
	"time"

	"github.com/EricGoj/Middleware/internal/domain"
	"github.com/EricGoj/Middleware/internal/timeparse"
)

type CreateTaskRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DueDate     *timeparse.Time `json:"dueDate"`
	Priority    string          `json:"priority"`
}

// UpdateTaskRequest uses pointers to tell "leave unchanged" (nil) apart
// from "set to this value", including setting a field to empty.
type UpdateTaskRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Status      *string         `json:"status"`
	DueDate     *timeparse.Time `json:"dueDate"`
	Priority    *string         `json:"priority"`
}

type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DueDate     *time.Time `json:"dueDate"`
	Priority    string     `json:"priority"`
	BusinessKey string     `json:"businessKey,omitempty"`
}

func mapTaskToResponse(task *domain.Task) *TaskResponse {
	return &TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		DueDate:     task.DueDate,
		Priority:    string(task.Priority),
		BusinessKey: task.BusinessKey,
	}
}

func mapTasksToResponse(tasks []*domain.Task) []*TaskResponse {
	responses := make([]*TaskResponse, len(tasks))
	for i, task := range tasks {
		responses[i] = mapTaskToResponse(task)
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
