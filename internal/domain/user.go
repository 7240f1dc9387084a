package domain

import "time"

// User is the domain model for account holders. PasswordHash never leaves
// the service layer; staff/superuser flags are set only by privileged paths.
type User struct {
	ID           string
	Email        string
	Username     string
	FirstName    *string
	LastName     *string
	MiddleName   *string
	PasswordHash string
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser constructs an active, unprivileged account with a fresh identifier.
func NewUser(email, username, passwordHash string, firstName, lastName, middleName *string) *User {
	return &User{
		ID:           NewID(),
		Email:        email,
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		MiddleName:   middleName,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
}
