package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

const (
	MaxTitleLength           = 255
	MaxTaskDescriptionLength = 5000
)

var (
	ErrTitleRequired      = errors.New("title must not be empty")
	ErrTitleTooLong       = errors.New("title must not exceed 255 characters")
	ErrDescriptionTooLong = errors.New("description exceeds maximum length")
	ErrInvalidStatus      = errors.New("invalid status")
)

// ParseStatus maps a textual status onto the known enum, case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusInProgress:
		return StatusInProgress, nil
	case StatusDone:
		return StatusDone, nil
	default:
		return "", ErrInvalidStatus
	}
}

// NormalizePriority folds the input to upper case and falls back to MEDIUM
// for anything outside the recognized set.
func NormalizePriority(s string) Priority {
	switch Priority(strings.ToUpper(strings.TrimSpace(s))) {
	case PriorityHigh:
		return PriorityHigh
	case PriorityLow:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

type Task struct {
	ID          string
	Title       string
	Description string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DueDate     *time.Time
	Priority    Priority
	BusinessKey string
}

func NewTask(id, title, description string, dueDate *time.Time, priority string, now time.Time) (*Task, error) {
	cleanTitle, err := validateTitle(title)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(description) > MaxTaskDescriptionLength {
		return nil, ErrDescriptionTooLong
	}
	return &Task{
		ID:          id,
		Title:       cleanTitle,
		Description: description,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		DueDate:     dueDate,
		Priority:    NormalizePriority(priority),
	}, nil
}

func (t *Task) UpdateTitle(title string, now time.Time) error {
	cleanTitle, err := validateTitle(title)
	if err != nil {
		return err
	}
	t.Title = cleanTitle
	t.UpdatedAt = now
	return nil
}

func (t *Task) UpdateDescription(description string, now time.Time) error {
	if utf8.RuneCountInString(description) > MaxTaskDescriptionLength {
		return ErrDescriptionTooLong
	}
	t.Description = description
	t.UpdatedAt = now
	return nil
}

func (t *Task) UpdateStatus(status Status, now time.Time) {
	t.Status = status
	t.UpdatedAt = now
}

func (t *Task) UpdateDueDate(dueDate *time.Time, now time.Time) {
	t.DueDate = dueDate
	t.UpdatedAt = now
}

func (t *Task) UpdatePriority(priority string, now time.Time) {
	t.Priority = NormalizePriority(priority)
	t.UpdatedAt = now
}

// LinkBusinessKey records the external tracker key once the remote issue
// exists.
func (t *Task) LinkBusinessKey(key string, now time.Time) {
	t.BusinessKey = key
	t.UpdatedAt = now
}

func validateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", ErrTitleRequired
	}
	// Bounds are in characters, not bytes, so multibyte titles are not
	// penalized.
	if utf8.RuneCountInString(trimmed) > MaxTitleLength {
		return "", ErrTitleTooLong
	}
	return trimmed, nil
}
