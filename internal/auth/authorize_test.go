package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/task-service/internal/domain"
)

func principal(id string, superuser bool) *Principal {
	return &Principal{User: &domain.User{ID: id, IsSuperuser: superuser}}
}

func TestCanAccessTaskOwnerOnly(t *testing.T) {
	task := &domain.Task{ID: "task-1", OwnerID: "user-a"}

	assert.True(t, CanAccessTask(principal("user-a", false), task))
	assert.False(t, CanAccessTask(principal("user-b", false), task))
	// superusers get no special access to tasks
	assert.False(t, CanAccessTask(principal("admin", true), task))
	assert.False(t, CanAccessTask(nil, task))
}

func TestCanAccessUserSelfOrSuperuser(t *testing.T) {
	assert.True(t, CanAccessUser(principal("user-a", false), "user-a"))
	assert.False(t, CanAccessUser(principal("user-a", false), "user-b"))
	assert.True(t, CanAccessUser(principal("admin", true), "user-b"))
	assert.False(t, CanAccessUser(nil, "user-a"))
}

func TestReauthenticateChecksOwnCredential(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	p := &Principal{User: &domain.User{ID: "user-a", PasswordHash: string(hash)}}

	assert.True(t, Reauthenticate(p, "correct horse"))
	assert.False(t, Reauthenticate(p, "battery staple"))
	assert.False(t, Reauthenticate(nil, "correct horse"))
}

func TestPasswordStrengthPolicy(t *testing.T) {
	assert.Error(t, ValidatePasswordStrength("short", 8))
	assert.NoError(t, ValidatePasswordStrength("long enough", 8))
	// zero config falls back to the default minimum
	assert.Error(t, ValidatePasswordStrength("tiny", 0))
}
