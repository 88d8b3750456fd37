package tasks

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/EricGoj/Middleware/internal/domain"
	"github.com/EricGoj/Middleware/internal/infrastructure/jira"
	"github.com/EricGoj/Middleware/internal/notify"
	"github.com/EricGoj/Middleware/internal/repository/task_repo"
	"github.com/EricGoj/Middleware/internal/util"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskService interface {
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error)
	GetTask(ctx context.Context, taskID string) (*TaskResponse, error)
	ListTasks(ctx context.Context) ([]*TaskResponse, error)
	UpdateTask(ctx context.Context, taskID string, req *UpdateTaskRequest) (*TaskResponse, error)
	DeleteTask(ctx context.Context, taskID string) error
}

type taskService struct {
	taskRepo  task_repo.TaskRepository
	tracker   jira.Port
	publisher notify.Publisher
	issueType string
	logger    *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewTaskService(
	taskRepo task_repo.TaskRepository,
	tracker jira.Port,
	publisher notify.Publisher,
	issueType string,
	logger *zap.Logger,
) TaskService {
	if issueType == "" {
		issueType = "Task"
	}
	return &taskService{
		taskRepo:  taskRepo,
		tracker:   tracker,
		publisher: publisher,
		issueType: issueType,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     util.GenerateUUID,
	}
}

func (s *taskService) CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error) {
	task, err := domain.NewTask(s.newID(), req.Title, req.Description, dueDateValue(req.DueDate), req.Priority, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.taskRepo.CreateTask(ctx, task); err != nil {
		s.logger.Error("Failed to save task", zap.String("task_id", task.ID), zap.Error(err))
		return nil, errors.New("failed to create task")
	}

	// Direct tracker creation is best effort: a Jira outage must not fail
	// the local create, the task just stays unlinked.
	key, err := s.tracker.CreateIssue(ctx, jira.CreateIssueRequest{
		Summary:     task.Title,
		Description: task.Description,
		IssueType:   s.issueType,
		DueDate:     task.DueDate,
		Priority:    task.Priority,
	})
	if err != nil {
		s.logger.Warn("Failed to create Jira issue for task", zap.String("task_id", task.ID), zap.Error(err))
	} else {
		task.LinkBusinessKey(key, s.now())
		if err := s.taskRepo.UpdateTask(ctx, task); err != nil {
			s.logger.Error("Failed to persist business key for task",
				zap.String("task_id", task.ID), zap.String("business_key", key), zap.Error(err))
		}
	}

	s.publishChange(ctx, notify.ChangeMessage{Type: notify.KindTaskCreated, Task: mapTaskToResponse(task)})
	s.logger.Info("Task created", zap.String("task_id", task.ID), zap.String("business_key", task.BusinessKey))
	return mapTaskToResponse(task), nil
}

func (s *taskService) GetTask(ctx context.Context, taskID string) (*TaskResponse, error) {
	task, err := s.taskRepo.GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Debug("Task not found", zap.String("task_id", taskID))
			return nil, ErrTaskNotFound
		}
		s.logger.Error("Failed to get task from repository", zap.String("task_id", taskID), zap.Error(err))
		return nil, errors.New("internal server error")
	}
	return mapTaskToResponse(task), nil
}

func (s *taskService) ListTasks(ctx context.Context) ([]*TaskResponse, error) {
	tasks, err := s.taskRepo.GetAllTasks(ctx)
	if err != nil {
		s.logger.Error("Failed to get all tasks from repository", zap.Error(err))
		return nil, errors.New("internal server error")
	}
	return mapTasksToResponse(tasks), nil
}

func (s *taskService) UpdateTask(ctx context.Context, taskID string, req *UpdateTaskRequest) (*TaskResponse, error) {
	task, err := s.taskRepo.GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		s.logger.Error("Failed to get task for update", zap.String("task_id", taskID), zap.Error(err))
		return nil, errors.New("internal server error")
	}

	if req.Title != nil {
		if err := task.UpdateTitle(*req.Title, s.now()); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		if err := task.UpdateDescription(*req.Description, s.now()); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		task.UpdateStatus(status, s.now())
	}
	if req.DueDate != nil {
		task.UpdateDueDate(dueDateValue(req.DueDate), s.now())
	}
	if req.Priority != nil {
		task.UpdatePriority(*req.Priority, s.now())
	}

	if err := s.taskRepo.UpdateTask(ctx, task); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		s.logger.Error("Failed to update task", zap.String("task_id", taskID), zap.Error(err))
		return nil, errors.New("internal server error")
	}

	s.publishChange(ctx, notify.ChangeMessage{Type: notify.KindTaskUpdated, Task: mapTaskToResponse(task)})
	return mapTaskToResponse(task), nil
}

func (s *taskService) DeleteTask(ctx context.Context, taskID string) error {
	task, err := s.taskRepo.GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTaskNotFound
		}
		s.logger.Error("Failed to get task for deletion", zap.String("task_id", taskID), zap.Error(err))
		return errors.New("internal server error")
	}

	if err := s.taskRepo.DeleteTask(ctx, taskID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTaskNotFound
		}
		s.logger.Error("Failed to delete task", zap.String("task_id", taskID), zap.Error(err))
		return errors.New("internal server error")
	}

	if task.BusinessKey != "" {
		if err := s.tracker.DeleteIssue(ctx, task.BusinessKey); err != nil {
			s.logger.Warn("Failed to delete Jira issue for task",
				zap.String("task_id", taskID), zap.String("business_key", task.BusinessKey), zap.Error(err))
		}
	}

	s.publishChange(ctx, notify.ChangeMessage{Type: notify.KindTaskDeleted, ID: taskID})
	s.logger.Info("Task deleted", zap.String("task_id", taskID))
	return nil
}

func (s *taskService) publishChange(ctx context.Context, msg notify.ChangeMessage) {
	if err := s.publisher.PublishChange(ctx, msg); err != nil {
		s.logger.Warn("Failed to publish change notification",
			zap.String("kind", string(msg.Type)), zap.Error(err))
	}
}
