package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/config"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/security"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()

	hash, err := security.HashPassword("hunter2-but-longer")
	require.NoError(t, err)

	users.users["u-1"] = models.User{
		ID:           "u-1",
		Username:     "alice",
		PasswordHash: hash,
		Role:         models.UserRoleAnnotator,
		IsActive:     true,
	}
	users.users["u-2"] = models.User{
		ID:           "u-2",
		Username:     "mallory",
		PasswordHash: hash,
		Role:         models.UserRoleAnnotator,
		IsActive:     false,
	}

	cfg := &config.AppConfig{}
	cfg.Security.JWTSecret = "test-secret"
	cfg.Security.JWTTTL = time.Hour
	svc := NewAuthService(users, nil, cfg, zerolog.Nop())

	result, err := svc.Login(ctx, "  Alice ", "hunter2-but-longer")
	require.NoError(t, err, "username is case and whitespace insensitive")
	assert.Equal(t, "u-1", result.User.ID)
	require.NotEmpty(t, result.AccessToken)

	claims, err := security.ParseAccessToken(result.AccessToken, cfg.Security.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, string(models.UserRoleAnnotator), claims.Role)

	_, err = svc.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "hunter2-but-longer")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "mallory", "hunter2-but-longer")
	assert.ErrorIs(t, err, ErrUserInactive)
}
