package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/task-service/internal/auth"
	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/repository"
	"github.com/spec-kit/task-service/internal/service"
	apperrors "github.com/spec-kit/task-service/pkg/util"
)

type stubTaskRepo struct {
	listCalls int
	captured  repository.TaskFilter
}

func (s *stubTaskRepo) Create(ctx context.Context, task *domain.Task) error { return nil }
func (s *stubTaskRepo) Update(ctx context.Context, task *domain.Task) error { return nil }
func (s *stubTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return nil, pgx.ErrNoRows
}
func (s *stubTaskRepo) Delete(ctx context.Context, ownerID, id string) error { return nil }
func (s *stubTaskRepo) ListWithFilter(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	s.listCalls++
	s.captured = filter
	return nil, nil
}

type stubStatusRepo struct{}

func (s *stubStatusRepo) List(ctx context.Context) ([]domain.TaskStatus, error) {
	return []domain.TaskStatus{{ID: 1, Name: "open"}}, nil
}
func (s *stubStatusRepo) GetByID(ctx context.Context, id int64) (*domain.TaskStatus, error) {
	if id == 1 {
		return &domain.TaskStatus{ID: 1, Name: "open"}, nil
	}
	return nil, pgx.ErrNoRows
}

type stubUserRepo struct {
	user *domain.User
}

func (s *stubUserRepo) Create(ctx context.Context, user *domain.User) error { return nil }
func (s *stubUserRepo) Update(ctx context.Context, user *domain.User) error { return nil }
func (s *stubUserRepo) Delete(ctx context.Context, id string) error         { return nil }
func (s *stubUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, pgx.ErrNoRows
}
func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (s *stubUserRepo) List(ctx context.Context) ([]domain.User, error) { return nil, nil }
func (s *stubUserRepo) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	return nil
}

func newTasksApp(t *testing.T, tasks *stubTaskRepo) (*fiber.App, string) {
	t.Helper()

	taskService := service.NewTaskService(service.TaskDependencies{
		TaskRepo:   tasks,
		StatusRepo: &stubStatusRepo{},
	})
	tm := auth.NewTokenManager("test-secret", 5, 60)
	users := &stubUserRepo{user: &domain.User{ID: "user-a", IsActive: true}}
	middleware := auth.NewAuthMiddleware(tm, users)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{
				"code":    domainErr.Code,
				"details": domainErr.Details,
			}})
		},
	})
	handler := NewTasksHandler(taskService)
	app.Get("/tasks", middleware.Handle, handler.ListTasks)

	pair, _, err := tm.GeneratePair("user-a")
	require.NoError(t, err)
	return app, pair.AccessToken
}

func listTasksRequest(token, query string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/tasks"+query, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestListTasksRejectsNonNumericStatusFilter(t *testing.T) {
	tasks := &stubTaskRepo{}
	app, token := newTasksApp(t, tasks)

	resp, err := app.Test(listTasksRequest(token, "?status=abc"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, tasks.listCalls, "invalid filters must not fall back to an unfiltered listing")
}

func TestListTasksRejectsMalformedTimestampFilter(t *testing.T) {
	tasks := &stubTaskRepo{}
	app, token := newTasksApp(t, tasks)

	resp, err := app.Test(listTasksRequest(token, "?created_at_from=yesterday"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, tasks.listCalls)
}

func TestListTasksAppliesValidFilters(t *testing.T) {
	tasks := &stubTaskRepo{}
	app, token := newTasksApp(t, tasks)

	resp, err := app.Test(listTasksRequest(token, "?status=1&search=milk&created_at_from=2026-01-01T00:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.Equal(t, 1, tasks.listCalls)
	assert.Equal(t, "user-a", tasks.captured.OwnerID)
	require.NotNil(t, tasks.captured.StatusID)
	assert.Equal(t, int64(1), *tasks.captured.StatusID)
	require.NotNil(t, tasks.captured.SearchTerm)
	assert.Equal(t, "milk", *tasks.captured.SearchTerm)
	require.NotNil(t, tasks.captured.CreatedFrom)
}
