package tasks

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/EricGoj/Middleware/internal/app/tasks"
	"github.com/EricGoj/Middleware/internal/domain"
	"github.com/EricGoj/Middleware/internal/handler/http/httperr"
)

type TaskHandler struct {
	service tasks.TaskService
	logger  *zap.Logger
}

func NewTaskHandler(s tasks.TaskService, l *zap.Logger) *TaskHandler {
	return &TaskHandler{service: s, logger: l}
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req tasks.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for CreateTask", zap.Error(err))
		httperr.Write(w, r, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}

	res, err := h.service.CreateTask(r.Context(), &req)
	if err != nil {
		if field, ok := validationField(err); ok {
			h.logger.Warn("Validation failed for CreateTask", zap.Error(err))
			httperr.WriteValidation(w, r, map[string]string{field: err.Error()})
			return
		}
		h.logger.Error("Error creating task", zap.Error(err))
		httperr.WriteInternal(w, r)
		return
	}

	httperr.WriteJSON(w, http.StatusCreated, res)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	res, err := h.service.GetTask(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, tasks.ErrTaskNotFound) {
			httperr.WriteNotFound(w, r, "Task not found with id: "+taskID)
			return
		}
		h.logger.Error("Error getting task", zap.String("task_id", taskID), zap.Error(err))
		httperr.WriteInternal(w, r)
		return
	}

	httperr.WriteJSON(w, http.StatusOK, res)
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ListTasks(r.Context())
	if err != nil {
		h.logger.Error("Error listing tasks", zap.Error(err))
		httperr.WriteInternal(w, r)
		return
	}
	if res == nil {
		res = []*tasks.TaskResponse{}
	}
	httperr.WriteJSON(w, http.StatusOK, res)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	var req tasks.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for UpdateTask", zap.Error(err))
		httperr.Write(w, r, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}

	res, err := h.service.UpdateTask(r.Context(), taskID, &req)
	if err != nil {
		switch {
		case errors.Is(err, tasks.ErrTaskNotFound):
			httperr.WriteNotFound(w, r, "Task not found with id: "+taskID)
		default:
			if field, ok := validationField(err); ok {
				httperr.WriteValidation(w, r, map[string]string{field: err.Error()})
				return
			}
			h.logger.Error("Error updating task", zap.String("task_id", taskID), zap.Error(err))
			httperr.WriteInternal(w, r)
		}
		return
	}

	httperr.WriteJSON(w, http.StatusOK, res)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	if err := h.service.DeleteTask(r.Context(), taskID); err != nil {
		if errors.Is(err, tasks.ErrTaskNotFound) {
			httperr.WriteNotFound(w, r, "Task not found with id: "+taskID)
			return
		}
		h.logger.Error("Error deleting task", zap.String("task_id", taskID), zap.Error(err))
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
