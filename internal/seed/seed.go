package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/config"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/ids"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/repository"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/security"
)

type seedOption struct {
	label     string
	isTypical bool
}

type seedCategory struct {
	name    string
	options []seedOption
}

// The labelling catalogue covers the photo variations the pet dataset needs
// balanced across. Options are stored per category, one flagged as the
// typical baseline.
var catalogue = []seedCategory{
	{
		name: "Lighting Variation",
		options: []seedOption{
			{"Dusk-dawn lighting", false},
			{"Harsh outdoor sunlight with shadows", false},
			{"Low light conditions", false},
			{"Well-lit conditions (typical)", true},
		},
	},
	{
		name: "Angle & Perspective Variation",
		options: []seedOption{
			{"Front-facing at eye level (typical)", true},
			{"Ground-level view", false},
			{"No head showing", false},
			{"Partial view (head only)", false},
			{"Top-down view", false},
		},
	},
	{
		name: "Environmental Context Variation",
		options: []seedOption{
			{"In car-carrier", false},
			{"Indoor setting (typical)", true},
			{"Outdoor dirt road", false},
			{"Snow environment", false},
			{"Vet clinic", false},
			{"Yard with a complex background", false},
		},
	},
	{
		name: "Occlusion & Partial Visibility",
		options: []seedOption{
			{"Behind furniture (face only)", false},
			{"Full-body, unobstructed (typical)", true},
			{"Partially hidden under a blanket", false},
			{"Peeking out of box-carrier", false},
			{"Toy obscuring part of body", false},
		},
	},
	{
		name: "Activity & Motion",
		options: []seedOption{
			{"Eating-drinking", false},
			{"Jumping to catch toy", false},
			{"Playing with another pet", false},
			{"Running with motion blur", false},
			{"Sitting still-posed (typical)", true},
			{"Sleeping-curled up", false},
		},
	},
	{
		name: "Multi-Pet Disambiguation",
		options: []seedOption{
			{"Pet with breed lookalike", false},
			{"Single pet (typical)", true},
			{"Three pets of same breed", false},
			{"Two similar-looking pets together", false},
		},
	},
}

const mockImageCount = 20

type Seeder struct {
	users      *repository.UserRepository
	categories *repository.CategoryRepository
	images     *repository.ImageRepository
	cfg        *config.AppConfig
	log        zerolog.Logger
}

func NewSeeder(
	users *repository.UserRepository,
	categories *repository.CategoryRepository,
	images *repository.ImageRepository,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *Seeder {
	return &Seeder{
		users:      users,
		categories: categories,
		images:     images,
		cfg:        cfg,
		log:        log,
	}
}

// Run is idempotent: admins are created only when missing, the catalogue and
// mock images only when their tables are empty.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.seedAdmins(ctx); err != nil {
		return err
	}
	if err := s.seedCatalogue(ctx); err != nil {
		return err
	}
	if s.cfg.Seed.MockImages {
		if err := s.seedMockImages(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedAdmins(ctx context.Context) error {
	for _, admin := range s.cfg.Seed.Admins {
		username := strings.TrimSpace(strings.ToLower(admin.Username))
		if username == "" || admin.Password == "" {
			s.log.Warn().Msg("skipping seed admin with missing username or password")
			continue
		}

		_, err := s.users.FindByUsername(ctx, username)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return err
		}

		hash, err := security.HashPassword(admin.Password)
		if err != nil {
			return err
		}
		user := models.User{
			ID:           ids.New(),
			Username:     username,
			PasswordHash: hash,
			FullName:     admin.FullName,
			Role:         models.UserRoleAdmin,
			IsActive:     true,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		s.log.Info().Str("username", username).Msg("created seed admin")
	}
	return nil
}

func (s *Seeder) seedCatalogue(ctx context.Context) error {
	count, err := s.categories.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for order, entry := range catalogue {
		category := models.Category{
			ID:           ids.New(),
			Name:         entry.name,
			DisplayOrder: order + 1,
		}
		if err := s.categories.Create(ctx, category); err != nil {
			return err
		}
		for optOrder, opt := range entry.options {
			option := models.Option{
				ID:           ids.New(),
				CategoryID:   category.ID,
				Label:        opt.label,
				IsTypical:    opt.isTypical,
				DisplayOrder: optOrder + 1,
			}
			if err := s.categories.CreateOption(ctx, option); err != nil {
				return err
			}
		}
	}
	s.log.Info().Int("categories", len(catalogue)).Msg("seeded labelling catalogue")
	return nil
}

func (s *Seeder) seedMockImages(ctx context.Context) error {
	count, err := s.images.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for i := 1; i <= mockImageCount; i++ {
		image := models.Image{
			ID:       ids.New(),
			Filename: fmt.Sprintf("pet_%03d.jpg", i),
			URL:      fmt.Sprintf("https://picsum.photos/seed/pet%d/800/600", i),
		}
		if err := s.images.Create(ctx, image); err != nil {
			return err
		}
	}
	s.log.Info().Int("images", mockImageCount).Msg("seeded mock images")
	return nil
}
