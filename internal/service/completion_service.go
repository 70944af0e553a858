package service

import (
	"context"
	"errors"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/repository"
)

// CompletionService derives cross-category completion state. It keeps no
// state of its own; every answer is recomputed from current annotation rows,
// and "completed by me" and "completed by another annotator" count the same.
type CompletionService struct {
	images      ImageStore
	annotations AnnotationStore
	users       UserStore
	categories  CategoryStore
}

func NewCompletionService(
	images ImageStore,
	annotations AnnotationStore,
	users UserStore,
	categories CategoryStore,
) *CompletionService {
	return &CompletionService{
		images:      images,
		annotations: annotations,
		users:       users,
		categories:  categories,
	}
}

type CategoryCompletion struct {
	Category          models.Category
	Status            string // completed, in_progress, skipped, pending, unassigned
	AnnotatorID       string
	AnnotatorUsername string
}

type ImageCompletion struct {
	Image               models.Image
	TotalCategories     int // categories assigned to at least one annotator
	CompletedCategories int
	IsFullyComplete     bool
	Categories          []CategoryCompletion
}

func (s *CompletionService) ImageCompletion(ctx context.Context, imageID string) (ImageCompletion, error) {
	image, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return ImageCompletion{}, notFoundf("image %s", imageID)
		}
		return ImageCompletion{}, err
	}

	categories, assignedSet, usernames, err := s.context(ctx)
	if err != nil {
		return ImageCompletion{}, err
	}

	anns, err := s.annotations.ListByImage(ctx, imageID)
	if err != nil {
		return ImageCompletion{}, err
	}

	return s.aggregate(image, categories, assignedSet, usernames, anns), nil
}

func (s *CompletionService) AllImages(ctx context.Context) ([]ImageCompletion, error) {
	images, err := s.images.List(ctx)
	if err != nil {
		return nil, err
	}

	categories, assignedSet, usernames, err := s.context(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]ImageCompletion, 0, len(images))
	for _, image := range images {
		anns, err := s.annotations.ListByImage(ctx, image.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, s.aggregate(image, categories, assignedSet, usernames, anns))
	}
	return result, nil
}

type ProgressRow struct {
	CategoryID        string
	CategoryName      string
	AnnotatorID       string
	AnnotatorUsername string
	TotalImages       int
	Completed         int
	Skipped           int
	InProgress        int
	Pending           int
}

// Progress reports per annotator-category pair how much of the image pool
// each annotator has personally worked through.
func (s *CompletionService) Progress(ctx context.Context) ([]ProgressRow, error) {
	assignments, err := s.users.ListAssignments(ctx)
	if err != nil {
		return nil, err
	}

	candidates, err := s.images.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	total := len(candidates)

	categoryNames := make(map[string]string)
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		categoryNames[c.ID] = c.Name
	}

	usernames, err := s.usernames(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]ProgressRow, 0, len(assignments))
	for _, a := range assignments {
		counts, err := s.annotations.StatusCounts(ctx, a.UserID, a.CategoryID)
		if err != nil {
			return nil, err
		}

		completed := counts[models.AnnotationStatusCompleted]
		skipped := counts[models.AnnotationStatusSkipped]
		inProgress := counts[models.AnnotationStatusInProgress]

		rows = append(rows, ProgressRow{
			CategoryID:        a.CategoryID,
			CategoryName:      categoryNames[a.CategoryID],
			AnnotatorID:       a.UserID,
			AnnotatorUsername: usernames[a.UserID],
			TotalImages:       total,
			Completed:         completed,
			Skipped:           skipped,
			InProgress:        inProgress,
			Pending:           total - completed - skipped - inProgress,
		})
	}
	return rows, nil
}

func (s *CompletionService) aggregate(
	image models.Image,
	categories []models.Category,
	assignedSet map[string]bool,
	usernames map[string]string,
	anns []models.Annotation,
) ImageCompletion {
	totalCategories := 0
	for _, c := range categories {
		if assignedSet[c.ID] {
			totalCategories++
		}
	}

	byCategory := make(map[string][]models.Annotation)
	for _, ann := range anns {
		byCategory[ann.CategoryID] = append(byCategory[ann.CategoryID], ann)
	}

	details := make([]CategoryCompletion, 0, len(categories))
	completedCategories := 0
	for _, category := range categories {
		detail := CategoryCompletion{Category: category}

		catAnns := byCategory[category.ID]
		if len(catAnns) == 0 {
			if assignedSet[category.ID] {
				detail.Status = "pending"
			} else {
				detail.Status = "unassigned"
			}
			details = append(details, detail)
			continue
		}

		// Prefer a completed annotation; otherwise report the first row.
		best := catAnns[0]
		for _, ann := range catAnns {
			if ann.Status == models.AnnotationStatusCompleted {
				best = ann
				break
			}
		}

		if best.Status == models.AnnotationStatusCompleted && assignedSet[category.ID] {
			completedCategories++
		}
		detail.Status = string(best.Status)
		detail.AnnotatorID = best.AnnotatorID
		detail.AnnotatorUsername = usernames[best.AnnotatorID]
		details = append(details, detail)
	}

	// Improper images are parked: their annotations stay, but they stop
	// counting toward completion until the flag is cleared.
	if image.IsImproper {
		completedCategories = 0
	}

	return ImageCompletion{
		Image:               image,
		TotalCategories:     totalCategories,
		CompletedCategories: completedCategories,
		IsFullyComplete:     totalCategories > 0 && completedCategories == totalCategories,
		Categories:          details,
	}
}

func (s *CompletionService) context(ctx context.Context) ([]models.Category, map[string]bool, map[string]string, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	assignments, err := s.users.ListAssignments(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	assignedSet := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		assignedSet[a.CategoryID] = true
	}

	usernames, err := s.usernames(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	return categories, assignedSet, usernames, nil
}

func (s *CompletionService) usernames(ctx context.Context) (map[string]string, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names, nil
}
