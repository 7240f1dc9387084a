package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/task-service/internal/auth"
	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/repository"
	apperrors "github.com/spec-kit/task-service/pkg/util"
)

type mockUserRepo struct {
	createFunc func(ctx context.Context, user *domain.User) error
	updateFunc func(ctx context.Context, user *domain.User) error
	deleteFunc func(ctx context.Context, id string) error
	getFunc    func(ctx context.Context, id string) (*domain.User, error)
	listFunc   func(ctx context.Context) ([]domain.User, error)

	createCalls int
	updateCalls int
	deleteCalls int
	lastUpdated *domain.User
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	m.createCalls++
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	m.updateCalls++
	copied := *user
	m.lastUpdated = &copied
	if m.updateFunc != nil {
		return m.updateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	m.deleteCalls++
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockUserRepo) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	return nil
}

func newUserService(repo *mockUserRepo) *UserService {
	return NewUserService(UserDependencies{
		UserRepo:          repo,
		BcryptCost:        bcrypt.MinCost,
		MinPasswordLength: 8,
	})
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return hash
}

func principalFor(user *domain.User) *auth.Principal {
	return &auth.Principal{User: user}
}

func TestRegisterDefaultsToUnprivilegedActiveAccount(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newUserService(repo)

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.False(t, user.IsSuperuser)
	assert.NotEqual(t, "correct horse", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse")))
}

func TestRegisterWeakPasswordRejected(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newUserService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "short",
	})
	require.Error(t, err)
	assert.Contains(t, apperrors.ToDomainError(err).Details, "password")
	assert.Zero(t, repo.createCalls)
}

func TestRegisterDuplicateUsernameConflict(t *testing.T) {
	repo := &mockUserRepo{
		createFunc: func(ctx context.Context, user *domain.User) error {
			return &repository.ErrDuplicate{Column: "username"}
		},
	}
	svc := newUserService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
	assert.Contains(t, apperrors.ToDomainError(err).Details, "username")
}

func TestListNonSuperuserSeesOnlySelf(t *testing.T) {
	self := &domain.User{ID: "user-a", Username: "alice"}
	repo := &mockUserRepo{
		listFunc: func(ctx context.Context) ([]domain.User, error) {
			t.Fatal("non-superuser listing must not hit the store")
			return nil, nil
		},
	}
	svc := newUserService(repo)

	users, err := svc.List(context.Background(), principalFor(self))
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "user-a", users[0].ID)
}

func TestListSuperuserSeesAll(t *testing.T) {
	admin := &domain.User{ID: "admin", IsSuperuser: true}
	repo := &mockUserRepo{
		listFunc: func(ctx context.Context) ([]domain.User, error) {
			return []domain.User{{ID: "admin"}, {ID: "user-a"}, {ID: "user-b"}}, nil
		},
	}
	svc := newUserService(repo)

	users, err := svc.List(context.Background(), principalFor(admin))
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestGetForeignUserNotFound(t *testing.T) {
	repo := &mockUserRepo{
		getFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id}, nil
		},
	}
	svc := newUserService(repo)

	_, err := svc.Get(context.Background(), principalFor(&domain.User{ID: "user-a"}), "user-b")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"), "foreign accounts must look absent")
}

func TestGetForeignUserAsSuperuser(t *testing.T) {
	repo := &mockUserRepo{
		getFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id, Username: "bob"}, nil
		},
	}
	svc := newUserService(repo)

	user, err := svc.Get(context.Background(), principalFor(&domain.User{ID: "admin", IsSuperuser: true}), "user-b")
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
}

func TestDeleteWrongPasswordForbidden(t *testing.T) {
	self := &domain.User{ID: "user-a", PasswordHash: hashFor(t, "right")}
	repo := &mockUserRepo{
		getFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return self, nil
		},
	}
	svc := newUserService(repo)

	err := svc.Delete(context.Background(), principalFor(self), "user-a", "wrong")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	assert.Zero(t, repo.deleteCalls)
}

func TestDeleteSelfWithCorrectPassword(t *testing.T) {
	self := &domain.User{ID: "user-a", PasswordHash: hashFor(t, "right")}
	repo := &mockUserRepo{
		getFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return self, nil
		},
	}
	svc := newUserService(repo)

	err := svc.Delete(context.Background(), principalFor(self), "user-a", "right")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.deleteCalls)
}

func TestAdminDeleteVerifiesAdminsOwnPassword(t *testing.T) {
	admin := &domain.User{ID: "admin", IsSuperuser: true, PasswordHash: hashFor(t, "admin-pass")}
	repo := &mockUserRepo{
		getFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id, PasswordHash: hashFor(t, "target-pass")}, nil
		},
	}
	svc := newUserService(repo)

	// the target's password is not what counts
	err := svc.Delete(context.Background(), principalFor(admin), "user-b", "target-pass")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	err = svc.Delete(context.Background(), principalFor(admin), "user-b", "admin-pass")
	require.NoError(t, err)
}

func TestSetPasswordWrongCurrentRejected(t *testing.T) {
	self := &domain.User{ID: "user-a", PasswordHash: hashFor(t, "old-password")}
	repo := &mockUserRepo{}
	svc := newUserService(repo)

	err := svc.SetPassword(context.Background(), principalFor(self), "not-it", "new-password")
	require.Error(t, err)
	assert.Contains(t, apperrors.ToDomainError(err).Details, "current_password")
	assert.Zero(t, repo.updateCalls)
}

func TestSetPasswordReplacesCredential(t *testing.T) {
	self := &domain.User{ID: "user-a", PasswordHash: hashFor(t, "old-password")}
	repo := &mockUserRepo{}
	svc := newUserService(repo)

	err := svc.SetPassword(context.Background(), principalFor(self), "old-password", "new-password")
	require.NoError(t, err)

	require.NotNil(t, repo.lastUpdated)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.lastUpdated.PasswordHash), []byte("new-password")))
}

func TestPatchClearsMiddleName(t *testing.T) {
	middle := "Ivanovna"
	stored := &domain.User{ID: "user-a", Username: "alice", Email: "a@example.com", MiddleName: &middle}
	repo := &mockUserRepo{
		getFunc: func(ctx context.Context, id string) (*domain.User, error) {
			copied := *stored
			return &copied, nil
		},
	}
	svc := newUserService(repo)

	user, err := svc.Patch(context.Background(), principalFor(stored), "user-a", ProfilePatch{
		MiddleName: StringPatch{Set: true, Value: nil},
	})
	require.NoError(t, err)
	assert.Nil(t, user.MiddleName)
	assert.Equal(t, "alice", user.Username)
}

func TestUpdateOverlongNameRejected(t *testing.T) {
	stored := &domain.User{ID: "user-a", Username: "alice", Email: "a@example.com"}
	repo := &mockUserRepo{
		getFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return stored, nil
		},
	}
	svc := newUserService(repo)

	long := strings.Repeat("a", maxNameLength+10)
	_, err := svc.Update(context.Background(), principalFor(stored), "user-a", ProfileInput{
		Username:  "alice",
		Email:     "a@example.com",
		FirstName: &long,
	})
	require.Error(t, err)
	assert.Contains(t, apperrors.ToDomainError(err).Details, "first_name")
	assert.Zero(t, repo.updateCalls)
}

func TestPatchOverlongNameRejected(t *testing.T) {
	stored := &domain.User{ID: "user-a", Username: "alice", Email: "a@example.com"}
	repo := &mockUserRepo{
		getFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return stored, nil
		},
	}
	svc := newUserService(repo)

	long := strings.Repeat("a", maxNameLength+10)
	_, err := svc.Patch(context.Background(), principalFor(stored), "user-a", ProfilePatch{
		MiddleName: StringPatch{Set: true, Value: &long},
	})
	require.Error(t, err)
	assert.Contains(t, apperrors.ToDomainError(err).Details, "middle_name")
	assert.Zero(t, repo.updateCalls)
}

func TestNameLengthCountsCharactersNotBytes(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newUserService(repo)

	// 30 Cyrillic characters is 60 bytes but still within the bound
	cyrillic := strings.Repeat("я", maxNameLength)
	_, err := svc.Register(context.Background(), RegisterInput{
		Username:  cyrillic,
		Email:     "yana@example.com",
		Password:  "correct horse",
		FirstName: &cyrillic,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.createCalls)
}

func TestUpdateRequiresUsernameAndEmail(t *testing.T) {
	stored := &domain.User{ID: "user-a", Username: "alice", Email: "a@example.com"}
	repo := &mockUserRepo{
		getFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return stored, nil
		},
	}
	svc := newUserService(repo)

	_, err := svc.Update(context.Background(), principalFor(stored), "user-a", ProfileInput{})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Contains(t, domainErr.Details, "username")
	assert.Contains(t, domainErr.Details, "email")
	assert.Zero(t, repo.updateCalls)
}
