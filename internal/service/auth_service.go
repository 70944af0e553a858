package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/config"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/ids"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/repository"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user inactive")
)

type AuthService struct {
	users UserStore
	cache *redis.Client
	cfg   *config.AppConfig
	log   zerolog.Logger
}

func NewAuthService(users UserStore, cache *redis.Client, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users: users,
		cache: cache,
		cfg:   cfg,
		log:   log,
	}
}

type LoginResult struct {
	AccessToken string
	User        models.User
}

func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if !user.IsActive {
		return LoginResult{}, ErrUserInactive
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := security.GenerateAccessToken(
		s.cfg.Security.JWTSecret,
		user.ID,
		ids.New(),
		string(user.Role),
		s.cfg.Security.JWTTTL,
	)
	if err != nil {
		return LoginResult{}, err
	}

	s.log.Debug().Str("user_id", user.ID).Msg("login succeeded")

	return LoginResult{AccessToken: token, User: user}, nil
}

// Logout puts the token id on the denylist until the token would have
// expired anyway.
func (s *AuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, security.RevokedTokenKey(tokenID), 1, ttl).Err()
}

func (s *AuthService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.cache.Exists(ctx, security.RevokedTokenKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("denylist lookup: %w", err)
	}
	return n > 0, nil
}
