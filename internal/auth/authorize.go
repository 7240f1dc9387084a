package auth

import "github.com/spec-kit/task-service/internal/domain"

// Authorization decisions take the principal explicitly; nothing here
// reads ambient request state.

// CanAccessTask reports whether the principal owns the task. Callers map
// a denial to a not-found response so foreign task ids stay opaque.
func CanAccessTask(p *Principal, task *domain.Task) bool {
	return p != nil && task != nil && task.OwnerID == p.ID()
}

// CanAccessUser reports whether the principal may read or mutate the
// target account: the account itself, or any account for superusers.
// Denials are mapped to not-found, hiding other accounts' existence.
func CanAccessUser(p *Principal, targetID string) bool {
	if p == nil {
		return false
	}
	return p.IsSuperuser() || p.ID() == targetID
}

// Reauthenticate verifies the acting principal's own current password.
// Destructive account operations require this regardless of target.
func Reauthenticate(p *Principal, currentPassword string) bool {
	if p == nil {
		return false
	}
	return ComparePassword(p.User.PasswordHash, currentPassword) == nil
}
