package domain

import "time"

// Task is the aggregate for user-owned work items. OwnerID is always
// derived from the authenticated caller, never bound from a payload.
type Task struct {
	ID             string
	OwnerID        string
	StatusID       int64
	StatusName     string
	Title          string
	Description    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CompleteBefore *time.Time
	CompletedAt    *time.Time
}

// NewTask constructs a task with a fresh identifier for the given owner.
func NewTask(ownerID string, statusID int64, title, description string, completeBefore, completedAt *time.Time) *Task {
	return &Task{
		ID:             NewID(),
		OwnerID:        ownerID,
		StatusID:       statusID,
		Title:          title,
		Description:    description,
		CompleteBefore: completeBefore,
		CompletedAt:    completedAt,
	}
}
