package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-service/internal/api/http/handlers"
	"github.com/spec-kit/task-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tasks          *handlers.TasksHandler
	Users          *handlers.UsersHandler
	TaskStatuses   *handlers.TaskStatusesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	v1 := app.Group("/api/v1")

	v1.Post("/auth/login", cfg.Auth.Login)
	v1.Post("/auth/refresh", cfg.Auth.Refresh)

	v1.Get("/task_statuses", cfg.TaskStatuses.ListStatuses)

	// registration is the only open users endpoint
	v1.Post("/users", cfg.Users.Register)

	users := v1.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("", cfg.Users.ListUsers)
	users.Post("/set_password", cfg.Users.SetPassword)
	users.Get("/me", cfg.Users.GetMe)
	users.Put("/me", cfg.Users.ReplaceMe)
	users.Patch("/me", cfg.Users.PatchMe)
	users.Delete("/me", cfg.Users.DeleteMe)
	users.Get("/:id", cfg.Users.GetUser)
	users.Put("/:id", cfg.Users.ReplaceUser)
	users.Patch("/:id", cfg.Users.PatchUser)
	users.Delete("/:id", cfg.Users.DeleteUser)

	tasks := v1.Group("/tasks", cfg.AuthMiddleware.Handle)
	tasks.Get("", cfg.Tasks.ListTasks)
	tasks.Post("", cfg.Tasks.CreateTask)
	tasks.Get("/:id", cfg.Tasks.GetTask)
	tasks.Put("/:id", cfg.Tasks.ReplaceTask)
	tasks.Patch("/:id/change_status", cfg.Tasks.ChangeStatus)
	tasks.Patch("/:id", cfg.Tasks.PatchTask)
	tasks.Delete("/:id", cfg.Tasks.DeleteTask)
}
