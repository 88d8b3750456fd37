package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/EricGoj/Middleware/internal/domain"
	"github.com/EricGoj/Middleware/internal/repository/task_repo"
)

type pgTaskRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewTaskRepository(db *sql.DB, l *zap.Logger) task_repo.TaskRepository {
	return &pgTaskRepository{db: db, logger: l}
}

func (r *pgTaskRepository) CreateTask(ctx context.Context, task *domain.Task) error {
	query := `INSERT INTO tasks (id, title, description, status, created_at, updated_at, due_date, priority, business_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.Title, task.Description, task.Status,
		task.CreatedAt, task.UpdatedAt, task.DueDate, task.Priority, nullString(task.BusinessKey))
	if err != nil {
		r.logger.Error("Failed to create task", zap.String("task_id", task.ID), zap.Error(err))
		return fmt.Errorf("failed to create task: %w", err)
	}
	r.logger.Debug("Task created", zap.String("task_id", task.ID))
	return nil
}

func (r *pgTaskRepository) GetTaskByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT id, title, description, status, created_at, updated_at, due_date, priority, business_key
		FROM tasks WHERE id = $1`
	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		r.logger.Error("Failed to get task by ID", zap.String("task_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get task by ID %s: %w", id, err)
	}
	return task, nil
}

func (r *pgTaskRepository) GetAllTasks(ctx context.Context) ([]*domain.Task, error) {
	var tasks []*domain.Task
	query := `SELECT id, title, description, status, created_at, updated_at, due_date, priority, business_key
		FROM tasks ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query all tasks", zap.Error(err))
		return nil, fmt.Errorf("failed to get all tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			r.logger.Error("Failed to scan task row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err = rows.Err(); err != nil {
		r.logger.Error("Rows error for all tasks", zap.Error(err))
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return tasks, nil
}

func (r *pgTaskRepository) UpdateTask(ctx context.Context, task *domain.Task) error {
	query := `UPDATE tasks SET title = $2, description = $3, status = $4, updated_at = $5, due_date = $6, priority = $7, business_key = $8
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		task.ID, task.Title, task.Description, task.Status,
		task.UpdatedAt, task.DueDate, task.Priority, nullString(task.BusinessKey))
	if err != nil {
		r.logger.Error("Failed to update task", zap.String("task_id", task.ID), zap.Error(err))
		return fmt.Errorf("failed to update task %s: %w", task.ID, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		r.logger.Error("Failed to get rows affected for task update", zap.String("task_id", task.ID), zap.Error(err))
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rowsAffected == 0 {
		r.logger.Warn("No rows affected when updating task, task might not exist", zap.String("task_id", task.ID))
		return sql.ErrNoRows
	}
	r.logger.Debug("Task updated", zap.String("task_id", task.ID))
	return nil
}

func (r *pgTaskRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete task", zap.String("task_id", id), zap.Error(err))
		return fmt.Errorf("failed to delete task %s: %w", id, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	r.logger.Debug("Task deleted", zap.String("task_id", id))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	task := &domain.Task{}
	var dueDate sql.NullTime
	var businessKey sql.NullString
	err := row.Scan(&task.ID, &task.Title, &task.Description, &task.Status,
		&task.CreatedAt, &task.UpdatedAt, &dueDate, &task.Priority, &businessKey)
	if err != nil {
		return nil, err
	}
	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}
	if businessKey.Valid {
		task.BusinessKey = businessKey.String
	}
	return task, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
