package service

import (
	"context"
	"errors"
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

const maxNameLength = 30

// StringPatch is a tri-state string change: absent, clear, or new value.
type StringPatch struct {
	Set   bool
	Value *string
}

// UserService coordinates account lifecycle and visibility rules.
type UserService struct {
	users             repository.UserRepository
	dispatcher        events.Dispatcher
	bcryptCost        int
	minPasswordLength int
}

// UserDependencies bundles requirements for the user service.
type UserDependencies struct {
	UserRepo          repository.UserRepository
	Dispatcher        events.Dispatcher
	BcryptCost        int
	MinPasswordLength int
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users:             deps.UserRepo,
		dispatcher:        deps.Dispatcher,
		bcryptCost:        deps.BcryptCost,
		minPasswordLength: deps.MinPasswordLength,
	}
}

// RegisterInput describes an open registration payload.
type RegisterInput struct {
	Username   string
	Email      string
	Password   string
	FirstName  *string
	LastName   *string
	MiddleName *string
}

// ProfileInput describes the full writable profile field set (PUT).
type ProfileInput struct {
	Username   string
	Email      string
	FirstName  *string
	LastName   *string
	MiddleName *string
}

// ProfilePatch describes a partial profile update.
type ProfilePatch struct {
	Username   *string
	Email      *string
	FirstName  StringPatch
	LastName   StringPatch
	MiddleName StringPatch
}

// Register creates a new unprivileged account. Open to anonymous callers;
// the staff/superuser flags are never bindable here.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	fields := map[string][]string{}
	if err := auth.ValidatePasswordStrength(input.Password, s.minPasswordLength); err != nil {
		fields["password"] = append(fields["password"], err.Error())
	}
	appendNameLengthErrors(fields, map[string]*string{
		"first_name":  input.FirstName,
		"last_name":   input.LastName,
		"middle_name": input.MiddleName,
	})
	if utf8.RuneCountInString(input.Username) > maxNameLength {
		fields["username"] = append(fields["username"], nameLengthMessage())
	}
	if len(fields) > 0 {
		return nil, apperrors.NewFieldValidationError(fields)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := domain.NewUser(input.Email, input.Username, hash, input.FirstName, input.LastName, input.MiddleName)
	if err := s.users.Create(ctx, user); err != nil {
		return nil, mapDuplicate(err)
	}

	s.publish(ctx, events.EventUserRegistered, user.ID, events.UserRegisteredPayload{
		UserID:   user.ID,
		Username: user.Username,
	})
	return user, nil
}

// List returns all accounts to superusers, and exactly the caller's own
// account to everyone else.
func (s *UserService) List(ctx context.Context, p *auth.Principal) ([]domain.User, error) {
	if p.IsSuperuser() {
		users, err := s.users.List(ctx)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		return users, nil
	}
	return []domain.User{*p.User}, nil
}

// Get returns the target account when visible to the principal.
func (s *UserService) Get(ctx context.Context, p *auth.Principal, targetID string) (*domain.User, error) {
	return s.getVisible(ctx, p, targetID)
}

// Update overwrites the writable profile fields of a visible account.
func (s *UserService) Update(ctx context.Context, p *auth.Principal, targetID string, input ProfileInput) (*domain.User, error) {
	user, err := s.getVisible(ctx, p, targetID)
	if err != nil {
		return nil, err
	}

	fields := map[string][]string{}
	if input.Username == "" {
		fields["username"] = append(fields["username"], "this field is required")
	} else if utf8.RuneCountInString(input.Username) > maxNameLength {
		fields["username"] = append(fields["username"], nameLengthMessage())
	}
	if input.Email == "" {
		fields["email"] = append(fields["email"], "this field is required")
	}
	appendNameLengthErrors(fields, map[string]*string{
		"first_name":  input.FirstName,
		"last_name":   input.LastName,
		"middle_name": input.MiddleName,
	})
	if len(fields) > 0 {
		return nil, apperrors.NewFieldValidationError(fields)
	}

	user.Username = input.Username
	user.Email = input.Email
	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.MiddleName = input.MiddleName

	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapDuplicate(err)
	}
	return user, nil
}

// Patch applies a subset of profile fields to a visible account.
func (s *UserService) Patch(ctx context.Context, p *auth.Principal, targetID string, patch ProfilePatch) (*domain.User, error) {
	user, err := s.getVisible(ctx, p, targetID)
	if err != nil {
		return nil, err
	}

	fields := map[string][]string{}
	if patch.Username != nil {
		if *patch.Username == "" {
			fields["username"] = append(fields["username"], "this field may not be blank")
		} else if utf8.RuneCountInString(*patch.Username) > maxNameLength {
			fields["username"] = append(fields["username"], nameLengthMessage())
		}
	}
	if patch.Email != nil && *patch.Email == "" {
		fields["email"] = append(fields["email"], "this field may not be blank")
	}
	names := map[string]*string{}
	if patch.FirstName.Set {
		names["first_name"] = patch.FirstName.Value
	}
	if patch.LastName.Set {
		names["last_name"] = patch.LastName.Value
	}
	if patch.MiddleName.Set {
		names["middle_name"] = patch.MiddleName.Value
	}
	appendNameLengthErrors(fields, names)
	if len(fields) > 0 {
		return nil, apperrors.NewFieldValidationError(fields)
	}

	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.FirstName.Set {
		user.FirstName = patch.FirstName.Value
	}
	if patch.LastName.Set {
		user.LastName = patch.LastName.Value
	}
	if patch.MiddleName.Set {
		user.MiddleName = patch.MiddleName.Value
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapDuplicate(err)
	}
	return user, nil
}

// Delete removes a visible account after re-authenticating the acting
// principal with its own current password. A wrong password is Forbidden
// because the caller already has visibility into the target.
func (s *UserService) Delete(ctx context.Context, p *auth.Principal, targetID, currentPassword string) error {
	user, err := s.getVisible(ctx, p, targetID)
	if err != nil {
		return err
	}
	if !auth.Reauthenticate(p, currentPassword) {
		return apperrors.NewForbidden("current password does not match")
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.MapError(err)
	}
	s.publish(ctx, events.EventUserDeleted, p.ID(), events.UserDeletedPayload{UserID: user.ID})
	return nil
}

// SetPassword replaces the caller's stored credential after verifying the
// current one.
func (s *UserService) SetPassword(ctx context.Context, p *auth.Principal, currentPassword, newPassword string) error {
	fields := map[string][]string{}
	if !auth.Reauthenticate(p, currentPassword) {
		fields["current_password"] = append(fields["current_password"], "invalid password")
	}
	if err := auth.ValidatePasswordStrength(newPassword, s.minPasswordLength); err != nil {
		fields["new_password"] = append(fields["new_password"], err.Error())
	}
	if len(fields) > 0 {
		return apperrors.NewFieldValidationError(fields)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}

	user := *p.User
	user.PasswordHash = hash
	if err := s.users.Update(ctx, &user); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *UserService) getVisible(ctx context.Context, p *auth.Principal, targetID string) (*domain.User, error) {
	if !auth.CanAccessUser(p, targetID) {
		return nil, apperrors.NewNotFound("user", nil)
	}
	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *UserService) publish(ctx context.Context, eventType events.EventType, actorID string, payload any) {
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

// appendNameLengthErrors enforces the per-field name bound in characters,
// not bytes; the columns are VARCHAR(30) and count characters too.
func appendNameLengthErrors(fields map[string][]string, names map[string]*string) {
	for field, value := range names {
		if value != nil && utf8.RuneCountInString(*value) > maxNameLength {
			fields[field] = append(fields[field], nameLengthMessage())
		}
	}
}

func nameLengthMessage() string {
	return fmt.Sprintf("ensure this field has no more than %d characters", maxNameLength)
}

func mapDuplicate(err error) error {
	var dup *repository.ErrDuplicate
	if errors.As(err, &dup) {
		return apperrors.NewConflict("unique constraint violated", map[string]any{
			dup.Column: []string{fmt.Sprintf("a user with this %s already exists", dup.Column)},
		})
	}
	return apperrors.MapError(err)
}
