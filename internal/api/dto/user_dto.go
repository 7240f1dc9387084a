package dto

import (
	"time"

	"github.com/spec-kit/task-service/internal/domain"
)

// RegisterRequest payload for open registration. Password is write-only
// and never appears in any response projection.
type RegisterRequest struct {
	Username   string  `json:"username" validate:"required,max=30"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required"`
	FirstName  *string `json:"first_name" validate:"omitempty,max=30"`
	LastName   *string `json:"last_name" validate:"omitempty,max=30"`
	MiddleName *string `json:"middle_name" validate:"omitempty,max=30"`
}

// UserWriteRequest payload for full profile replace.
type UserWriteRequest struct {
	Username   string  `json:"username" validate:"required,max=30"`
	Email      string  `json:"email" validate:"required,email"`
	FirstName  *string `json:"first_name" validate:"omitempty,max=30"`
	LastName   *string `json:"last_name" validate:"omitempty,max=30"`
	MiddleName *string `json:"middle_name" validate:"omitempty,max=30"`
}

// UserPatchRequest payload for partial profile update.
type UserPatchRequest struct {
	Username   *string        `json:"username" validate:"omitempty,max=30"`
	Email      *string        `json:"email" validate:"omitempty,email"`
	FirstName  OptionalString `json:"first_name"`
	LastName   OptionalString `json:"last_name"`
	MiddleName OptionalString `json:"middle_name"`
}

// DeleteUserRequest carries the acting principal's own password.
type DeleteUserRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
}

// SetPasswordRequest payload for credential replacement.
type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// UserResponse is the public account projection.
type UserResponse struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	FirstName  *string    `json:"first_name"`
	LastName   *string    `json:"last_name"`
	MiddleName *string    `json:"middle_name"`
	IsActive   bool       `json:"is_active"`
	LastLogin  *time.Time `json:"last_login"`
}

// NewUserResponse maps an account to its public projection.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		MiddleName: user.MiddleName,
		IsActive:   user.IsActive,
		LastLogin:  user.LastLogin,
	}
}
