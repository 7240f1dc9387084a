package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-service/internal/api/dto"
	"github.com/spec-kit/task-service/internal/auth"
	"github.com/spec-kit/task-service/internal/service"
	apperrors "github.com/spec-kit/task-service/pkg/util"
	"github.com/spec-kit/task-service/pkg/validation"
)

// TasksHandler manages task endpoints.
type TasksHandler struct {
	service *service.TaskService
}

// NewTasksHandler constructs handler.
func NewTasksHandler(taskService *service.TaskService) *TasksHandler {
	return &TasksHandler{service: taskService}
}

// ListTasks GET /tasks.
func (h *TasksHandler) ListTasks(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	filter, err := parseTaskQuery(c)
	if err != nil {
		return err
	}
	tasks, err := h.service.List(c.Context(), principal, filter)
	if err != nil {
		return err
	}
	items := make([]dto.TaskSummary, 0, len(tasks))
	for i := range tasks {
		items = append(items, dto.NewTaskSummary(&tasks[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTask GET /tasks/:id.
func (h *TasksHandler) GetTask(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	task, err := h.service.Get(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTaskDetail(task)})
}

// CreateTask POST /tasks.
func (h *TasksHandler) CreateTask(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.TaskWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if fields := validation.Struct(req); fields != nil {
		return apperrors.NewFieldValidationError(fields)
	}

	task, err := h.service.Create(c.Context(), principal, taskWriteInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTaskDetail(task)})
}

// ReplaceTask PUT /tasks/:id.
func (h *TasksHandler) ReplaceTask(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.TaskWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if fields := validation.Struct(req); fields != nil {
		return apperrors.NewFieldValidationError(fields)
	}

	task, err := h.service.Replace(c.Context(), principal, c.Params("id"), taskWriteInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTaskDetail(task)})
}

// PatchTask PATCH /tasks/:id.
func (h *TasksHandler) PatchTask(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.TaskPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TaskPatchInput{
		Title:          req.Title,
		Description:    req.Description,
		StatusID:       req.Status,
		CompleteBefore: service.TimePatch{Set: req.CompleteBefore.Set, Value: req.CompleteBefore.Value},
		CompletedAt:    service.TimePatch{Set: req.CompletedAt.Set, Value: req.CompletedAt.Value},
	}
	task, err := h.service.Patch(c.Context(), principal, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTaskDetail(task)})
}

// DeleteTask DELETE /tasks/:id.
func (h *TasksHandler) DeleteTask(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Delete(c.Context(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ChangeStatus PATCH /tasks/:id/change_status.
func (h *TasksHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if fields := validation.Struct(req); fields != nil {
		return apperrors.NewFieldValidationError(fields)
	}

	task, err := h.service.ChangeStatus(c.Context(), principal, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTaskDetail(task)})
}

func taskWriteInput(req dto.TaskWriteRequest) service.TaskWriteInput {
	return service.TaskWriteInput{
		Title:          req.Title,
		Description:    req.Description,
		StatusID:       req.Status,
		CompleteBefore: req.CompleteBefore,
		CompletedAt:    req.CompletedAt,
	}
}

// parseTaskQuery reads the list filter params. Unparsable values are a
// field validation error, never a silently unfiltered listing.
func parseTaskQuery(c *fiber.Ctx) (service.TaskListFilter, error) {
	filter := service.TaskListFilter{}
	fields := map[string][]string{}

	if statusStr := c.Query("status"); statusStr != "" {
		id, err := strconv.ParseInt(statusStr, 10, 64)
		if err != nil {
			fields["status"] = append(fields["status"], "enter a number")
		} else {
			filter.StatusID = &id
		}
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}

	parseTime := func(name string) *time.Time {
		val := c.Query(name)
		if val == "" {
			return nil
		}
		t, err := time.Parse(time.RFC3339, val)
		if err != nil {
			fields[name] = append(fields[name], "enter a valid RFC3339 timestamp")
			return nil
		}
		return &t
	}
	filter.CreatedFrom = parseTime("created_at_from")
	filter.CreatedTo = parseTime("created_at_to")
	filter.UpdatedFrom = parseTime("updated_at_from")
	filter.UpdatedTo = parseTime("updated_at_to")
	filter.CompleteBeforeFrom = parseTime("complete_before_from")
	filter.CompleteBeforeTo = parseTime("complete_before_to")
	filter.CompletedFrom = parseTime("completed_at_from")
	filter.CompletedTo = parseTime("completed_at_to")

	if ordering := c.Query("ordering"); ordering != "" {
		filter.OrderDesc = strings.HasPrefix(ordering, "-")
		filter.OrderBy = strings.TrimPrefix(ordering, "-")
	}

	if len(fields) > 0 {
		return filter, apperrors.NewFieldValidationError(fields)
	}
	return filter, nil
}
