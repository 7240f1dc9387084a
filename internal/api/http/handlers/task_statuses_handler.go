package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-service/internal/api/dto"
	"github.com/spec-kit/task-service/internal/repository"
)

// TaskStatusesHandler exposes the read-only classifier listing.
type TaskStatusesHandler struct {
	statuses repository.TaskStatusRepository
}

// NewTaskStatusesHandler constructs handler.
func NewTaskStatusesHandler(statuses repository.TaskStatusRepository) *TaskStatusesHandler {
	return &TaskStatusesHandler{statuses: statuses}
}

// ListStatuses GET /task_statuses. Public; returns all entries.
func (h *TaskStatusesHandler) ListStatuses(c *fiber.Ctx) error {
	statuses, err := h.statuses.List(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.StatusResponse, 0, len(statuses))
	for i := range statuses {
		items = append(items, dto.NewStatusResponse(&statuses[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
