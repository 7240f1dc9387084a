package dto

import "github.com/spec-kit/task-service/internal/domain"

// StatusResponse is the classifier projection.
type StatusResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewStatusResponse maps a classifier entry.
func NewStatusResponse(status *domain.TaskStatus) StatusResponse {
	return StatusResponse{ID: status.ID, Name: status.Name}
}
