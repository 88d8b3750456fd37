package issues

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/EricGoj/Middleware/internal/domain"
	"github.com/EricGoj/Middleware/internal/infrastructure/jira"
	"github.com/EricGoj/Middleware/internal/notify"
	"github.com/EricGoj/Middleware/internal/repository/issue_repo"
	"github.com/EricGoj/Middleware/internal/util"
)

var ErrIssueNotFound = errors.New("issue not found")

type IssueService interface {
	CreateIssue(ctx context.Context, req *CreateIssueRequest) (*IssueResponse, error)
	GetIssue(ctx context.Context, issueID string) (*IssueResponse, error)
	ListIssues(ctx context.Context) ([]*IssueResponse, error)
	UpdateIssue(ctx context.Context, issueID string, req *UpdateIssueRequest) (*IssueResponse, error)
	DeleteIssue(ctx context.Context, issueID string) error
}

type issueService struct {
	issueRepo issue_repo.IssueRepository
	tracker   jira.Port
	publisher notify.Publisher
	logger    *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewIssueService(
	issueRepo issue_repo.IssueRepository,
	tracker jira.Port,
	publisher notify.Publisher,
	logger *zap.Logger,
) IssueService {
	return &issueService{
		issueRepo: issueRepo,
		tracker:   tracker,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     util.GenerateUUID,
	}
}

func (s *issueService) CreateIssue(ctx context.Context, req *CreateIssueRequest) (*IssueResponse, error) {
	issue, err := domain.NewIssue(s.newID(), req.Title, req.Description, dueDateValue(req.DueDate), req.Priority, s.now())
	if err != nil {
		return nil, err
	}

	// The remote tracker is reconciled later by the sync loop; the create
	// path only records the intent, transactionally with the aggregate.
	payload, err := domain.IssueSnapshot(issue)
	if err != nil {
		s.logger.Error("Failed to snapshot issue for sync event", zap.String("issue_id", issue.ID), zap.Error(err))
		return nil, errors.New("internal server error")
	}
	event := domain.NewSyncEvent(s.newID(), domain.EventTypeIssueCreated, issue.ID, payload, s.now())

	if err := s.issueRepo.CreateIssueAndSyncEvent(ctx, issue, event); err != nil {
		s.logger.Error("Failed to save issue and sync event", zap.String("issue_id", issue.ID), zap.Error(err))
		return nil, errors.New("failed to create issue")
	}

	s.publishChange(ctx, notify.ChangeMessage{Type: notify.KindIssueCreated, Task: mapIssueToResponse(issue)})
	s.logger.Info("Issue created and sync event enqueued",
		zap.String("issue_id", issue.ID), zap.String("event_id", event.ID))
	return mapIssueToResponse(issue), nil
}

func (s *issueService) GetIssue(ctx context.Context, issueID string) (*IssueResponse, error) {
	issue, err := s.issueRepo.GetIssueByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Debug("Issue not found", zap.String("issue_id", issueID))
			return nil, ErrIssueNotFound
		}
		s.logger.Error("Failed to get issue from repository", zap.String("issue_id", issueID), zap.Error(err))
		return nil, errors.New("internal server error")
	}
	return mapIssueToResponse(issue), nil
}

func (s *issueService) ListIssues(ctx context.Context) ([]*IssueResponse, error) {
	issues, err := s.issueRepo.GetAllIssues(ctx)
	if err != nil {
		s.logger.Error("Failed to get all issues from repository", zap.Error(err))
		return nil, errors.New("internal server error")
	}
	return mapIssuesToResponse(issues), nil
}

func (s *issueService) UpdateIssue(ctx context.Context, issueID string, req *UpdateIssueRequest) (*IssueResponse, error) {
	issue, err := s.issueRepo.GetIssueByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIssueNotFound
		}
		s.logger.Error("Failed to get issue for update", zap.String("issue_id", issueID), zap.Error(err))
		return nil, errors.New("internal server error")
	}

	if req.Title != nil {
		if err := issue.UpdateTitle(*req.Title, s.now()); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		if err := issue.UpdateDescription(*req.Description, s.now()); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		issue.UpdateStatus(status, s.now())
	}
	if req.DueDate != nil {
		issue.UpdateDueDate(dueDateValue(req.DueDate), s.now())
	}
	if req.Priority != nil {
		issue.UpdatePriority(*req.Priority, s.now())
	}

	if err := s.issueRepo.UpdateIssue(ctx, issue); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIssueNotFound
		}
		s.logger.Error("Failed to update issue", zap.String("issue_id", issueID), zap.Error(err))
		return nil, errors.New("internal server error")
	}

	s.publishChange(ctx, notify.ChangeMessage{Type: notify.KindIssueUpdated, Task: mapIssueToResponse(issue)})
	return mapIssueToResponse(issue), nil
}

func (s *issueService) DeleteIssue(ctx context.Context, issueID string) error {
	issue, err := s.issueRepo.GetIssueByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrIssueNotFound
		}
		s.logger.Error("Failed to get issue for deletion", zap.String("issue_id", issueID), zap.Error(err))
		return errors.New("internal server error")
	}

	if err := s.issueRepo.DeleteIssue(ctx, issueID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrIssueNotFound
		}
		s.logger.Error("Failed to delete issue", zap.String("issue_id", issueID), zap.Error(err))
		return errors.New("internal server error")
	}

	if issue.BusinessKey != "" {
		if err := s.tracker.DeleteIssue(ctx, issue.BusinessKey); err != nil {
			s.logger.Warn("Failed to delete Jira issue",
				zap.String("issue_id", issueID), zap.String("business_key", issue.BusinessKey), zap.Error(err))
		}
	}

	s.publishChange(ctx, notify.ChangeMessage{Type: notify.KindIssueDeleted, ID: issueID})
	s.logger.Info("Issue deleted", zap.String("issue_id", issueID))
	return nil
}

func (s *issueService) publishChange(ctx context.Context, msg notify.ChangeMessage) {
	if err := s.publisher.PublishChange(ctx, msg); err != nil {
		s.logger.Warn("Failed to publish change notification",
			zap.String("kind", string(msg.Type)), zap.Error(err))
	}
}
