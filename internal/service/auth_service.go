package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/task-service/internal/auth"
	"github.com/spec-kit/task-service/internal/config"
	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/repository"
	apperrors "github.com/spec-kit/task-service/pkg/util"
)

// AuthService coordinates login and token refresh flows.
type AuthService struct {
	users    repository.UserRepository
	refresh  repository.RefreshTokenRepository
	tokenMgr *auth.TokenManager
}

// AuthDependencies bundles requirements for the auth service.
type AuthDependencies struct {
	UserRepo         repository.UserRepository
	RefreshTokenRepo repository.RefreshTokenRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:    deps.UserRepo,
		refresh:  deps.RefreshTokenRepo,
		tokenMgr: auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes, cfg.RefreshTokenTTLMinutes),
	}
}

// Login authenticates by email and password, stamps last_login, and
// issues a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.TokenPair{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, domain.TokenPair{}, apperrors.MapError(err)
	}
	if !user.IsActive {
		return nil, domain.TokenPair{}, apperrors.NewUnauthorized("account inactive")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, domain.TokenPair{}, apperrors.NewUnauthorized("invalid credentials")
	}

	pair, err := s.issue(ctx, user.ID)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}

	now := time.Now()
	if err := s.users.SetLastLogin(ctx, user.ID, now); err != nil {
		return nil, domain.TokenPair{}, apperrors.MapError(err)
	}
	user.LastLogin = &now
	return user, pair, nil
}

// Refresh validates a refresh token, requires it to still be live in the
// store, and rotates it for a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	claims, err := s.tokenMgr.ParseToken(refreshToken, domain.TokenTypeRefresh)
	if err != nil {
		return domain.TokenPair{}, apperrors.NewUnauthorized("invalid refresh token")
	}

	userID, err := s.refresh.UserID(ctx, claims.ID)
	if err != nil {
		if err == redis.Nil {
			return domain.TokenPair{}, apperrors.NewUnauthorized("refresh token revoked")
		}
		return domain.TokenPair{}, apperrors.MapError(err)
	}
	if userID != claims.UserID {
		return domain.TokenPair{}, apperrors.NewUnauthorized("invalid refresh token")
	}

	if err := s.refresh.Delete(ctx, claims.ID); err != nil {
		return domain.TokenPair{}, apperrors.MapError(err)
	}
	return s.issue(ctx, claims.UserID)
}

func (s *AuthService) issue(ctx context.Context, userID string) (domain.TokenPair, error) {
	pair, jti, err := s.tokenMgr.GeneratePair(userID)
	if err != nil {
		return domain.TokenPair{}, apperrors.MapError(err)
	}
	if err := s.refresh.Save(ctx, jti, userID, s.tokenMgr.RefreshTTL()); err != nil {
		return domain.TokenPair{}, apperrors.MapError(err)
	}
	return pair, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
