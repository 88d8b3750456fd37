package domain

import (
	"time"
	"unicode/utf8"
)

type SyncStatus string

const (
	SyncPending SyncStatus = "PENDING"
	SyncDone    SyncStatus = "DONE"
	SyncFailed  SyncStatus = "FAILED"
)

const MaxIssueDescriptionLength = 1000

// Issue mirrors Task but additionally tracks the outbox sync lifecycle.
type Issue struct {
	ID          string
	Title       string
	Description string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DueDate     *time.Time
	Priority    Priority
	BusinessKey string
	SyncStatus  SyncStatus
}

func NewIssue(id, title, description string, dueDate *time.Time, priority string, now time.Time) (*Issue, error) {
	cleanTitle, err := validateTitle(title)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(description) > MaxIssueDescriptionLength {
		return nil, ErrDescriptionTooLong
	}
	return &Issue{
		ID:          id,
		Title:       cleanTitle,
		Description: description,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		DueDate:     dueDate,
		Priority:    NormalizePriority(priority),
		SyncStatus:  SyncPending,
	}, nil
}

func (i *Issue) UpdateTitle(title string, now time.Time) error {
	cleanTitle, err := validateTitle(title)
	if err != nil {
		return err
	}
	i.Title = cleanTitle
	i.UpdatedAt = now
	return nil
}

func (i *Issue) UpdateDescription(description string, now time.Time) error {
	if utf8.RuneCountInString(description) > MaxIssueDescriptionLength {
		return ErrDescriptionTooLong
	}
	i.Description = description
	i.UpdatedAt = now
	return nil
}

func (i *Issue) UpdateStatus(status Status, now time.Time) {
	i.Status = status
	i.UpdatedAt = now
}

func (i *Issue) UpdateDueDate(dueDate *time.Time, now time.Time) {
	i.DueDate = dueDate
	i.UpdatedAt = now
}

func (i *Issue) UpdatePriority(priority string, now time.Time) {
	i.Priority = NormalizePriority(priority)
	i.UpdatedAt = now
}

func (i *Issue) UpdateSyncStatus(status SyncStatus, now time.Time) {
	i.SyncStatus = status
	i.UpdatedAt = now
}

func (i *Issue) LinkBusinessKey(key string, now time.Time) {
	i.BusinessKey = key
	i.UpdatedAt = now
}
