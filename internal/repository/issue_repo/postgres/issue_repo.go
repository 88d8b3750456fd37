package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/EricGoj/Middleware/internal/domain"
	"github.com/EricGoj/Middleware/internal/repository/issue_repo"
)

const issueColumns = `id, title, description, status, created_at, updated_at, due_date, priority, business_key, sync_status`

type pgIssueRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewIssueRepository(db *sql.DB, l *zap.Logger) issue_repo.IssueRepository {
	return &pgIssueRepository{db: db, logger: l}
}

func (r *pgIssueRepository) CreateIssue(ctx context.Context, issue *domain.Issue) error {
	_, err := r.db.ExecContext(ctx, insertIssueQuery, issueInsertArgs(issue)...)
	if err != nil {
		r.logger.Error("Failed to create issue", zap.String("issue_id", issue.ID), zap.Error(err))
		return fmt.Errorf("failed to create issue: %w", err)
	}
	r.logger.Debug("Issue created", zap.String("issue_id", issue.ID))
	return nil
}

func (r *pgIssueRepository) CreateIssueAndSyncEvent(ctx context.Context, issue *domain.Issue, event *domain.SyncEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction for issue and sync event creation", zap.String("issue_id", issue.ID), zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("Panic during issue and sync event creation, rolling back", zap.String("issue_id", issue.ID))
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			r.logger.Warn("Rolling back issue and sync event creation", zap.String("issue_id", issue.ID), zap.Error(err))
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
			if err != nil {
				r.logger.Error("Failed to commit issue and sync event creation", zap.String("issue_id", issue.ID), zap.Error(err))
			}
		}
	}()

	_, err = tx.ExecContext(ctx, insertIssueQuery, issueInsertArgs(issue)...)
	if err != nil {
		return fmt.Errorf("tx failed to create issue: %w", err)
	}

	eventQuery := `INSERT INTO sync_events (id, event_type, entity_id, payload, status, retry_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = tx.ExecContext(ctx, eventQuery,
		event.ID, event.EventType, event.EntityID, event.Payload, event.Status, event.RetryCount, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("tx failed to create sync event: %w", err)
	}
	r.logger.Debug("Issue and sync event inserted in transaction",
		zap.String("issue_id", issue.ID), zap.String("event_id", event.ID))

	return err
}

func (r *pgIssueRepository) LinkIssueAndCompleteSyncEvent(ctx context.Context, issue *domain.Issue, eventID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction for sync event completion", zap.String("issue_id", issue.ID), zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("Panic during sync event completion, rolling back", zap.String("issue_id", issue.ID))
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			r.logger.Warn("Rolling back sync event completion", zap.String("issue_id", issue.ID), zap.Error(err))
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
			if err != nil {
				r.logger.Error("Failed to commit sync event completion", zap.String("issue_id", issue.ID), zap.Error(err))
			}
		}
	}()

	issueQuery := `UPDATE issues SET title = $2, description = $3, status = $4, updated_at = $5, due_date = $6, priority = $7, business_key = $8, sync_status = $9
		WHERE id = $1`
	res, err := tx.ExecContext(ctx, issueQuery,
		issue.ID, issue.Title, issue.Description, issue.Status,
		issue.UpdatedAt, issue.DueDate, issue.Priority, nullString(issue.BusinessKey), issue.SyncStatus)
	if err != nil {
		return fmt.Errorf("tx failed to update issue: %w", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("tx failed to check issue update result: %w", err)
	}
	if rowsAffected == 0 {
		err = sql.ErrNoRows
		return fmt.Errorf("tx found no issue %s to link: %w", issue.ID, err)
	}

	eventQuery := `UPDATE sync_events SET status = $1, processed_at = $2, last_error = NULL
		WHERE id = $3 AND status = $4`
	res, err = tx.ExecContext(ctx, eventQuery, domain.SyncEventDone, time.Now().UTC(), eventID, domain.SyncEventPending)
	if err != nil {
		return fmt.Errorf("tx failed to mark sync event done: %w", err)
	}
	if rowsAffected, err = res.RowsAffected(); err != nil {
		return fmt.Errorf("tx failed to check sync event update result: %w", err)
	}
	if rowsAffected == 0 {
		r.logger.Warn("No rows affected when completing sync event, it might be already done or not exist", zap.String("event_id", eventID))
	}

	r.logger.Debug("Issue linked and sync event completed in transaction",
		zap.String("issue_id", issue.ID), zap.String("event_id", eventID))
	return err
}

func (r *pgIssueRepository) GetIssueByID(ctx context.Context, id string) (*domain.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE id = $1`
	issue, err := scanIssue(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		r.logger.Error("Failed to get issue by ID", zap.String("issue_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get issue by ID %s: %w", id, err)
	}
	return issue, nil
}

func (r *pgIssueRepository) GetAllIssues(ctx context.Context) ([]*domain.Issue, error) {
	var issues []*domain.Issue
	query := `SELECT ` + issueColumns + ` FROM issues ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query all issues", zap.Error(err))
		return nil, fmt.Errorf("failed to get all issues: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			r.logger.Error("Failed to scan issue row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan issue row: %w", err)
		}
		issues = append(issues, issue)
	}
	if err = rows.Err(); err != nil {
		r.logger.Error("Rows error for all issues", zap.Error(err))
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return issues, nil
}

func (r *pgIssueRepository) UpdateIssue(ctx context.Context, issue *domain.Issue) error {
	query := `UPDATE issues SET title = $2, description = $3, status = $4, updated_at = $5, due_date = $6, priority = $7, business_key = $8, sync_status = $9
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		issue.ID, issue.Title, issue.Description, issue.Status,
		issue.UpdatedAt, issue.DueDate, issue.Priority, nullString(issue.BusinessKey), issue.SyncStatus)
	if err != nil {
		r.logger.Error("Failed to update issue", zap.String("issue_id", issue.ID), zap.Error(err))
		return fmt.Errorf("failed to update issue %s: %w", issue.ID, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		r.logger.Error("Failed to get rows affected for issue update", zap.String("issue_id", issue.ID), zap.Error(err))
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rowsAffected == 0 {
		r.logger.Warn("No rows affected when updating issue, issue might not exist", zap.String("issue_id", issue.ID))
		return sql.ErrNoRows
	}
	r.logger.Debug("Issue updated", zap.String("issue_id", issue.ID))
	return nil
}

func (r *pgIssueRepository) DeleteIssue(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM issues WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete issue", zap.String("issue_id", id), zap.Error(err))
		return fmt.Errorf("failed to delete issue %s: %w", id, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	r.logger.Debug("Issue deleted", zap.String("issue_id", id))
	return nil
}

const insertIssueQuery = `INSERT INTO issues (` + issueColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

func issueInsertArgs(issue *domain.Issue) []any {
	return []any{
		issue.ID, issue.Title, issue.Description, issue.Status,
		issue.CreatedAt, issue.UpdatedAt, issue.DueDate, issue.Priority,
		nullString(issue.BusinessKey), issue.SyncStatus,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIssue(row rowScanner) (*domain.Issue, error) {
	issue := &domain.Issue{}
	var dueDate sql.NullTime
	var businessKey sql.NullString
	err := row.Scan(&issue.ID, &issue.Title, &issue.Description, &issue.Status,
		&issue.CreatedAt, &issue.UpdatedAt, &dueDate, &issue.Priority, &businessKey, &issue.SyncStatus)
	if err != nil {
		return nil, err
	}
	if dueDate.Valid {
		issue.DueDate = &dueDate.Time
	}
	if businessKey.Valid {
		issue.BusinessKey = businessKey.String
	}
	return issue, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
