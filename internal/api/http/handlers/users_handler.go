package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-service/internal/api/dto"
	"github.com/spec-kit/task-service/internal/auth"
	"github.com/spec-kit/task-service/internal/service"
	apperrors "github.com/spec-kit/task-service/pkg/util"
	"github.com/spec-kit/task-service/pkg/validation"
)

// UsersHandler exposes account endpoints, both by-id and self-scoped.
type UsersHandler struct {
	service *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{service: userService}
}

// Register POST /users. Open to anonymous callers.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if fields := validation.Struct(req); fields != nil {
		return apperrors.NewFieldValidationError(fields)
	}

	user, err := h.service.Register(c.Context(), service.RegisterInput{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		MiddleName: req.MiddleName,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// ListUsers GET /users.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	users, err := h.service.List(c.Context(), principal)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetUser GET /users/:id.
func (h *UsersHandler) GetUser(c *fiber.Ctx) error {
	return h.getUser(c, c.Params("id"))
}

// GetMe GET /users/me.
func (h *UsersHandler) GetMe(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return h.getUser(c, principal.ID())
}

func (h *UsersHandler) getUser(c *fiber.Ctx, targetID string) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	user, err := h.service.Get(c.Context(), principal, targetID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// ReplaceUser PUT /users/:id.
func (h *UsersHandler) ReplaceUser(c *fiber.Ctx) error {
	return h.replaceUser(c, c.Params("id"))
}

// ReplaceMe PUT /users/me.
func (h *UsersHandler) ReplaceMe(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return h.replaceUser(c, principal.ID())
}

func (h *UsersHandler) replaceUser(c *fiber.Ctx, targetID string) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UserWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if fields := validation.Struct(req); fields != nil {
		return apperrors.NewFieldValidationError(fields)
	}

	user, err := h.service.Update(c.Context(), principal, targetID, service.ProfileInput{
		Username:   req.Username,
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		MiddleName: req.MiddleName,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// PatchUser PATCH /users/:id.
func (h *UsersHandler) PatchUser(c *fiber.Ctx) error {
	return h.patchUser(c, c.Params("id"))
}

// PatchMe PATCH /users/me.
func (h *UsersHandler) PatchMe(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return h.patchUser(c, principal.ID())
}

func (h *UsersHandler) patchUser(c *fiber.Ctx, targetID string) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UserPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if fields := validation.Struct(req); fields != nil {
		return apperrors.NewFieldValidationError(fields)
	}

	user, err := h.service.Patch(c.Context(), principal, targetID, service.ProfilePatch{
		Username:   req.Username,
		Email:      req.Email,
		FirstName:  service.StringPatch{Set: req.FirstName.Set, Value: req.FirstName.Value},
		LastName:   service.StringPatch{Set: req.LastName.Set, Value: req.LastName.Value},
		MiddleName: service.StringPatch{Set: req.MiddleName.Set, Value: req.MiddleName.Value},
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// DeleteUser DELETE /users/:id.
func (h *UsersHandler) DeleteUser(c *fiber.Ctx) error {
	return h.deleteUser(c, c.Params("id"))
}

// DeleteMe DELETE /users/me.
func (h *UsersHandler) DeleteMe(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return h.deleteUser(c, principal.ID())
}

func (h *UsersHandler) deleteUser(c *fiber.Ctx, targetID string) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.DeleteUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if fields := validation.Struct(req); fields != nil {
		return apperrors.NewFieldValidationError(fields)
	}

	if err := h.service.Delete(c.Context(), principal, targetID, req.CurrentPassword); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// SetPassword POST /users/set_password.
func (h *UsersHandler) SetPassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if fields := validation.Struct(req); fields != nil {
		return apperrors.NewFieldValidationError(fields)
	}

	if err := h.service.SetPassword(c.Context(), principal, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
