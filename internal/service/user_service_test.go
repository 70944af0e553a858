package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/security"
)

func userServiceFixture() (*UserService, *fakeUsers, *fakeCategories) {
	users := newFakeUsers()
	categories := newFakeCategories()
	return NewUserService(users, categories, zerolog.Nop()), users, categories
}

func TestCreateUser(t *testing.T) {
	svc, _, _ := userServiceFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserInput{
		Username: " Alice ",
		Password: "correct-horse-battery",
		FullName: "Alice Smith",
		Role:     models.UserRoleAnnotator,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", created.Username, "username normalized")
	assert.True(t, created.IsActive)
	assert.NotEqual(t, "correct-horse-battery", created.PasswordHash)

	ok, err := security.VerifyPassword("correct-horse-battery", created.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Create(ctx, CreateUserInput{
		Username: "ALICE",
		Password: "another-password",
		Role:     models.UserRoleAdmin,
	})
	assert.ErrorIs(t, err, ErrConflict, "duplicate username after normalization")

	_, err = svc.Create(ctx, CreateUserInput{Username: "", Password: "x", Role: models.UserRoleAdmin})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CreateUserInput{Username: "bob", Password: "pw", Role: "superuser"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateUser(t *testing.T) {
	svc, _, _ := userServiceFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserInput{
		Username: "alice",
		Password: "correct-horse-battery",
		Role:     models.UserRoleAnnotator,
	})
	require.NoError(t, err)

	inactive := false
	name := "Alice S."
	updated, err := svc.Update(ctx, created.ID, UpdateUserInput{FullName: &name, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Alice S.", updated.FullName)
	assert.False(t, updated.IsActive)
	assert.Equal(t, created.PasswordHash, updated.PasswordHash, "password untouched when nil")

	newPassword := "a-brand-new-secret"
	updated, err = svc.Update(ctx, created.ID, UpdateUserInput{Password: &newPassword})
	require.NoError(t, err)
	ok, err := security.VerifyPassword(newPassword, updated.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Update(ctx, "missing", UpdateUserInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssignCategories(t *testing.T) {
	svc, users, categories := userServiceFixture()
	ctx := context.Background()

	categories.categories["cat-1"] = models.Category{ID: "cat-1", Name: "Lighting Variation"}

	annotator, err := svc.Create(ctx, CreateUserInput{
		Username: "alice", Password: "correct-horse-battery", Role: models.UserRoleAnnotator,
	})
	require.NoError(t, err)
	admin, err := svc.Create(ctx, CreateUserInput{
		Username: "root", Password: "correct-horse-battery", Role: models.UserRoleAdmin,
	})
	require.NoError(t, err)

	require.NoError(t, svc.AssignCategories(ctx, annotator.ID, []string{"cat-1"}))
	assigned, err := users.AssignedCategoryIDs(ctx, annotator.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat-1"}, assigned)

	err = svc.AssignCategories(ctx, admin.ID, []string{"cat-1"})
	assert.ErrorIs(t, err, ErrValidation, "admins do not carry assignments")

	err = svc.AssignCategories(ctx, annotator.ID, []string{"cat-9"})
	assert.ErrorIs(t, err, ErrValidation, "unknown category rejected")

	err = svc.AssignCategories(ctx, "missing", []string{"cat-1"})
	assert.ErrorIs(t, err, ErrNotFound)

	// Replacement semantics: the new set fully overwrites the old one.
	require.NoError(t, svc.AssignCategories(ctx, annotator.ID, nil))
	assigned, err = users.AssignedCategoryIDs(ctx, annotator.ID)
	require.NoError(t, err)
	assert.Empty(t, assigned)
}
