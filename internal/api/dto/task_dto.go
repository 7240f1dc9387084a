package dto

import (
	"time"

	"github.com/spec-kit/task-service/internal/domain"
)

// TaskWriteRequest payload for create and full replace. Every writable
// field is required; nullable timestamps may be omitted or sent as null
// to clear.
type TaskWriteRequest struct {
	Title          string     `json:"title" validate:"required,max=100"`
	Description    string     `json:"description" validate:"required"`
	Status         int64      `json:"status" validate:"required"`
	CompleteBefore *time.Time `json:"complete_before"`
	CompletedAt    *time.Time `json:"completed_at"`
}

// TaskPatchRequest payload for partial update; absent fields stay unchanged.
type TaskPatchRequest struct {
	Title          *string      `json:"title"`
	Description    *string      `json:"description"`
	Status         *int64       `json:"status"`
	CompleteBefore OptionalTime `json:"complete_before"`
	CompletedAt    OptionalTime `json:"completed_at"`
}

// ChangeStatusRequest payload for the status sub-action.
type ChangeStatusRequest struct {
	Status int64 `json:"status" validate:"required"`
}

// TaskSummary is the compact list projection.
type TaskSummary struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Status         StatusResponse `json:"status"`
	CompleteBefore *time.Time     `json:"complete_before"`
	CompletedAt    *time.Time     `json:"completed_at"`
}

// TaskDetail is the full retrieve projection.
type TaskDetail struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Status         StatusResponse `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	CompleteBefore *time.Time     `json:"complete_before"`
	CompletedAt    *time.Time     `json:"completed_at"`
}

// NewTaskSummary maps a task to its list projection.
func NewTaskSummary(task *domain.Task) TaskSummary {
	return TaskSummary{
		ID:             task.ID,
		Title:          task.Title,
		Status:         StatusResponse{ID: task.StatusID, Name: task.StatusName},
		CompleteBefore: task.CompleteBefore,
		CompletedAt:    task.CompletedAt,
	}
}

// NewTaskDetail maps a task to its retrieve projection.
func NewTaskDetail(task *domain.Task) TaskDetail {
	return TaskDetail{
		ID:             task.ID,
		Title:          task.Title,
		Description:    task.Description,
		Status:         StatusResponse{ID: task.StatusID, Name: task.StatusName},
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
		CompleteBefore: task.CompleteBefore,
		CompletedAt:    task.CompletedAt,
	}
}
