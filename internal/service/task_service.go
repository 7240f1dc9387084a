package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/task-service/internal/auth"
	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/events"
	"github.com/spec-kit/task-service/internal/repository"
	apperrors "github.com/spec-kit/task-service/pkg/util"
)

const maxTitleLength = 100

// TimePatch is a tri-state timestamp change: absent (Set=false), clear
// (Set=true, Value=nil), or a new value.
type TimePatch struct {
	Set   bool
	Value *time.Time
}

// TaskService coordinates task workflows. Every method takes the acting
// principal explicitly.
type TaskService struct {
	tasks      repository.TaskRepository
	statuses   repository.TaskStatusRepository
	dispatcher events.Dispatcher
}

// TaskDependencies bundles requirements for the task service.
type TaskDependencies struct {
	TaskRepo   repository.TaskRepository
	StatusRepo repository.TaskStatusRepository
	Dispatcher events.Dispatcher
}

// NewTaskService constructs the service.
func NewTaskService(deps TaskDependencies) *TaskService {
	return &TaskService{
		tasks:      deps.TaskRepo,
		statuses:   deps.StatusRepo,
		dispatcher: deps.Dispatcher,
	}
}

// TaskWriteInput describes the full writable field set, used by create
// and full replace.
type TaskWriteInput struct {
	Title          string
	Description    string
	StatusID       int64
	CompleteBefore *time.Time
	CompletedAt    *time.Time
}

// TaskPatchInput describes a partial update; nil fields stay unchanged.
type TaskPatchInput struct {
	Title          *string
	Description    *string
	StatusID       *int64
	CompleteBefore TimePatch
	CompletedAt    TimePatch
}

// TaskListFilter describes listing parameters for the caller's tasks.
type TaskListFilter struct {
	StatusID           *int64
	SearchTerm         *string
	CreatedFrom        *time.Time
	CreatedTo          *time.Time
	UpdatedFrom        *time.Time
	UpdatedTo          *time.Time
	CompleteBeforeFrom *time.Time
	CompleteBeforeTo   *time.Time
	CompletedFrom      *time.Time
	CompletedTo        *time.Time
	OrderBy            string
	OrderDesc          bool
}

// List returns the principal's tasks, newest first unless ordered otherwise.
func (s *TaskService) List(ctx context.Context, p *auth.Principal, filter TaskListFilter) ([]domain.Task, error) {
	repoFilter := repository.TaskFilter{
		OwnerID:            p.ID(),
		StatusID:           filter.StatusID,
		SearchTerm:         filter.SearchTerm,
		CreatedFrom:        filter.CreatedFrom,
		CreatedTo:          filter.CreatedTo,
		UpdatedFrom:        filter.UpdatedFrom,
		UpdatedTo:          filter.UpdatedTo,
		CompleteBeforeFrom: filter.CompleteBeforeFrom,
		CompleteBeforeTo:   filter.CompleteBeforeTo,
		CompletedFrom:      filter.CompletedFrom,
		CompletedTo:        filter.CompletedTo,
		OrderBy:            filter.OrderBy,
		OrderDesc:          filter.OrderDesc,
	}
	tasks, err := s.tasks.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tasks, nil
}

// Get returns one of the principal's tasks. Tasks owned by others are
// indistinguishable from missing ones.
func (s *TaskService) Get(ctx context.Context, p *auth.Principal, id string) (*domain.Task, error) {
	return s.getOwned(ctx, p, id)
}

// Create persists a new task owned by the principal. The owner always
// comes from the principal, never from the payload.
func (s *TaskService) Create(ctx context.Context, p *auth.Principal, input TaskWriteInput) (*domain.Task, error) {
	if err := s.validateWrite(ctx, input); err != nil {
		return nil, err
	}

	task := domain.NewTask(p.ID(), input.StatusID, input.Title, input.Description, input.CompleteBefore, input.CompletedAt)
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperrors.MapError(err)
	}
	task.StatusName = s.statusName(ctx, task.StatusID)

	s.publish(ctx, events.EventTaskCreated, p.ID(), events.TaskCreatedPayload{
		TaskID:   task.ID,
		StatusID: task.StatusID,
		Title:    task.Title,
	})
	return task, nil
}

// Replace overwrites every writable field of the task. Nil timestamps
// clear the stored values.
func (s *TaskService) Replace(ctx context.Context, p *auth.Principal, id string, input TaskWriteInput) (*domain.Task, error) {
	task, err := s.getOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateWrite(ctx, input); err != nil {
		return nil, err
	}

	task.Title = input.Title
	task.Description = input.Description
	task.StatusID = input.StatusID
	task.CompleteBefore = input.CompleteBefore
	task.CompletedAt = input.CompletedAt

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, apperrors.MapError(err)
	}
	task.StatusName = s.statusName(ctx, task.StatusID)
	return task, nil
}

// Patch applies the provided subset of fields, leaving the rest untouched.
func (s *TaskService) Patch(ctx context.Context, p *auth.Principal, id string, input TaskPatchInput) (*domain.Task, error) {
	task, err := s.getOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}

	fields := map[string][]string{}
	if input.Title != nil {
		if *input.Title == "" {
			fields["title"] = append(fields["title"], "this field may not be blank")
		} else if utf8.RuneCountInString(*input.Title) > maxTitleLength {
			fields["title"] = append(fields["title"], fmt.Sprintf("ensure this field has no more than %d characters", maxTitleLength))
		}
	}
	if input.Description != nil && *input.Description == "" {
		fields["description"] = append(fields["description"], "this field may not be blank")
	}
	if input.StatusID != nil {
		if err := s.requireStatus(ctx, *input.StatusID); err != nil {
			fields["status"] = append(fields["status"], "invalid status")
		}
	}
	if len(fields) > 0 {
		return nil, apperrors.NewFieldValidationError(fields)
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.StatusID != nil {
		task.StatusID = *input.StatusID
	}
	if input.CompleteBefore.Set {
		task.CompleteBefore = input.CompleteBefore.Value
	}
	if input.CompletedAt.Set {
		task.CompletedAt = input.CompletedAt.Value
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, apperrors.MapError(err)
	}
	task.StatusName = s.statusName(ctx, task.StatusID)
	return task, nil
}

// Delete removes the principal's task.
func (s *TaskService) Delete(ctx context.Context, p *auth.Principal, id string) error {
	if _, err := s.getOwned(ctx, p, id); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, p.ID(), id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("task", nil)
		}
		return apperrors.MapError(err)
	}
	s.publish(ctx, events.EventTaskDeleted, p.ID(), events.TaskDeletedPayload{TaskID: id})
	return nil
}

// ChangeStatus transitions only the status field. It deliberately leaves
// completed_at alone, even when moving into a completed-like status;
// stamping completion is the caller's job via the update paths.
func (s *TaskService) ChangeStatus(ctx context.Context, p *auth.Principal, id string, statusID int64) (*domain.Task, error) {
	task, err := s.getOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireStatus(ctx, statusID); err != nil {
		return nil, apperrors.NewFieldValidationError(map[string][]string{"status": {"invalid status"}})
	}

	oldStatus := task.StatusID
	task.StatusID = statusID
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, apperrors.MapError(err)
	}
	task.StatusName = s.statusName(ctx, statusID)

	s.publish(ctx, events.EventTaskStatusChanged, p.ID(), events.TaskStatusChangedPayload{
		TaskID:      task.ID,
		OldStatusID: oldStatus,
		NewStatusID: statusID,
	})
	return task, nil
}

func (s *TaskService) getOwned(ctx context.Context, p *auth.Principal, id string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("task", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if !auth.CanAccessTask(p, task) {
		return nil, apperrors.NewNotFound("task", nil)
	}
	return task, nil
}

func (s *TaskService) validateWrite(ctx context.Context, input TaskWriteInput) error {
	fields := map[string][]string{}
	if input.Title == "" {
		fields["title"] = append(fields["title"], "this field is required")
	} else if utf8.RuneCountInString(input.Title) > maxTitleLength {
		fields["title"] = append(fields["title"], fmt.Sprintf("ensure this field has no more than %d characters", maxTitleLength))
	}
	if input.Description == "" {
		fields["description"] = append(fields["description"], "this field is required")
	}
	if input.StatusID == 0 {
		fields["status"] = append(fields["status"], "this field is required")
	} else if err := s.requireStatus(ctx, input.StatusID); err != nil {
		fields["status"] = append(fields["status"], "invalid status")
	}
	if len(fields) > 0 {
		return apperrors.NewFieldValidationError(fields)
	}
	return nil
}

func (s *TaskService) requireStatus(ctx context.Context, id int64) error {
	_, err := s.statuses.GetByID(ctx, id)
	return err
}

func (s *TaskService) statusName(ctx context.Context, id int64) string {
	status, err := s.statuses.GetByID(ctx, id)
	if err != nil {
		return ""
	}
	return status.Name
}

func (s *TaskService) publish(ctx context.Context, eventType events.EventType, actorID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        domain.NewID(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
