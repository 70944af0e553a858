package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/ids"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/repository"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/security"
)

// UserService covers admin-side user management. Users are deactivated,
// never deleted, so their annotations stay attributable.
type UserService struct {
	users      UserStore
	categories CategoryStore
	log        zerolog.Logger
}

func NewUserService(users UserStore, categories CategoryStore, log zerolog.Logger) *UserService {
	return &UserService{users: users, categories: categories, log: log}
}

type CreateUserInput struct {
	Username string
	Password string
	FullName string
	Role     models.UserRole
}

func (s *UserService) Create(ctx context.Context, input CreateUserInput) (models.User, error) {
	input.Username = strings.TrimSpace(strings.ToLower(input.Username))
	if input.Username == "" || input.Password == "" {
		return models.User{}, validationf("username and password are required")
	}
	if input.Role != models.UserRoleAdmin && input.Role != models.UserRoleAnnotator {
		return models.User{}, validationf("unknown role %q", input.Role)
	}

	if _, err := s.users.FindByUsername(ctx, input.Username); err == nil {
		return models.User{}, conflictf("username %s already exists", input.Username)
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, err
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Username:     input.Username,
		PasswordHash: passwordHash,
		FullName:     input.FullName,
		Role:         input.Role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return models.User{}, err
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user created")

	return s.users.GetByID(ctx, user.ID)
}

type UpdateUserInput struct {
	FullName *string
	IsActive *bool
	Password *string
}

func (s *UserService) Update(ctx context.Context, userID string, input UpdateUserInput) (models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, notFoundf("user %s", userID)
		}
		return models.User{}, err
	}

	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.Password != nil {
		passwordHash, err := security.HashPassword(*input.Password)
		if err != nil {
			return models.User{}, err
		}
		user.PasswordHash = passwordHash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return models.User{}, err
	}
	return s.users.GetByID(ctx, userID)
}

// AssignCategories replaces an annotator's category set.
func (s *UserService) AssignCategories(ctx context.Context, userID string, categoryIDs []string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return notFoundf("user %s", userID)
		}
		return err
	}
	if user.Role != models.UserRoleAnnotator {
		return validationf("categories can only be assigned to annotators")
	}

	for _, categoryID := range categoryIDs {
		if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return validationf("category %s not found", categoryID)
			}
			return err
		}
	}

	return s.users.ReplaceAssignments(ctx, userID, categoryIDs)
}
