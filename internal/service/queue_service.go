package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/repository"
)

// QueueService computes the shared work queue. Positions index the candidate
// ordering (all non-improper images by creation order), which every
// annotator of a category sees identically. Completion by anyone is re-read
// on every call; nothing here caches "is this image done".
type QueueService struct {
	images      ImageStore
	annotations AnnotationStore
	users       UserStore
	categories  CategoryStore
	requests    EditRequestStore
	log         zerolog.Logger
}

func NewQueueService(
	images ImageStore,
	annotations AnnotationStore,
	users UserStore,
	categories CategoryStore,
	requests EditRequestStore,
	log zerolog.Logger,
) *QueueService {
	return &QueueService{
		images:      images,
		annotations: annotations,
		users:       users,
		categories:  categories,
		requests:    requests,
		log:         log,
	}
}

type ResumeResult struct {
	Index     int
	QueueSize int
	Done      bool
}

// ResumeIndex finds the first candidate position not yet completed by any
// annotator for the category. The annotator's own skipped images still count
// as open, so they are revisited; images completed by anyone are bypassed.
func (s *QueueService) ResumeIndex(ctx context.Context, categoryID, annotatorID string) (ResumeResult, error) {
	if err := s.requireAssignment(ctx, annotatorID, categoryID); err != nil {
		return ResumeResult{}, err
	}

	candidates, completed, err := s.snapshot(ctx, categoryID)
	if err != nil {
		return ResumeResult{}, err
	}

	queueSize := 0
	firstOpen := -1
	for i, img := range candidates {
		if _, done := completed[img.ID]; done {
			continue
		}
		queueSize++
		if firstOpen == -1 {
			firstOpen = i
		}
	}

	if len(candidates) == 0 {
		return ResumeResult{Index: 0, QueueSize: 0, Done: true}, nil
	}
	if firstOpen == -1 {
		// Everything completed; park at the last slot.
		return ResumeResult{Index: len(candidates) - 1, QueueSize: 0, Done: true}, nil
	}
	return ResumeResult{Index: firstOpen, QueueSize: queueSize, Done: false}, nil
}

// QueueSize counts candidates not completed by anyone for the category. It
// is a property of the category: every annotator observes the same number,
// and it only shrinks as completions land.
func (s *QueueService) QueueSize(ctx context.Context, categoryID, annotatorID string) (int, error) {
	if err := s.requireAssignment(ctx, annotatorID, categoryID); err != nil {
		return 0, err
	}

	candidates, completed, err := s.snapshot(ctx, categoryID)
	if err != nil {
		return 0, err
	}

	size := 0
	for _, img := range candidates {
		if _, done := completed[img.ID]; !done {
			size++
		}
	}
	return size, nil
}

type Task struct {
	Image       models.Image
	Category    models.Category
	Options     []models.Option
	Current     *models.Annotation
	CompletedBy string // annotator who completed the slot, "" if open
	Index       int
	TotalImages int
	QueueSize   int
}

// TaskAt fetches the image at a queue position together with the annotator's
// own annotation for pre-filling. ErrQueueExhausted means no image will ever
// be at any index again; ErrIndexOutOfRange means the position is bad but
// the queue still has open slots.
func (s *QueueService) TaskAt(ctx context.Context, categoryID, annotatorID string, index int) (Task, error) {
	if err := s.requireAssignment(ctx, annotatorID, categoryID); err != nil {
		return Task{}, err
	}

	candidates, completed, err := s.snapshot(ctx, categoryID)
	if err != nil {
		return Task{}, err
	}

	queueSize := 0
	for _, img := range candidates {
		if _, done := completed[img.ID]; !done {
			queueSize++
		}
	}

	if len(candidates) == 0 || queueSize == 0 {
		return Task{}, ErrQueueExhausted
	}
	if index < 0 || index >= len(candidates) {
		return Task{}, ErrIndexOutOfRange
	}

	image := candidates[index]

	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return Task{}, err
	}
	options, err := s.categories.Options(ctx, categoryID)
	if err != nil {
		return Task{}, err
	}

	var current *models.Annotation
	if ann, err := s.annotations.GetByTriple(ctx, image.ID, categoryID, annotatorID); err == nil {
		current = &ann
	} else if !errors.Is(err, repository.ErrAnnotationNotFound) {
		return Task{}, err
	}

	completedBy := ""
	if by, done := completed[image.ID]; done && by != annotatorID {
		completedBy = by
	}

	return Task{
		Image:       image,
		Category:    category,
		Options:     options,
		Current:     current,
		CompletedBy: completedBy,
		Index:       index,
		TotalImages: len(candidates),
		QueueSize:   queueSize,
	}, nil
}

type CategoryProgress struct {
	Category        models.Category
	TotalImages     int
	CompletedImages int // completed by anyone
	SkippedImages   int // the annotator's own skips
	QueueSize       int
}

// Categories lists the annotator's assigned categories with shared progress.
func (s *QueueService) Categories(ctx context.Context, annotatorID string) ([]CategoryProgress, error) {
	assigned, err := s.users.AssignedCategoryIDs(ctx, annotatorID)
	if err != nil {
		return nil, err
	}

	result := make([]CategoryProgress, 0, len(assigned))
	for _, categoryID := range assigned {
		category, err := s.categories.GetByID(ctx, categoryID)
		if err != nil {
			return nil, err
		}

		candidates, completed, err := s.snapshot(ctx, categoryID)
		if err != nil {
			return nil, err
		}

		completedCount := 0
		for _, img := range candidates {
			if _, done := completed[img.ID]; done {
				completedCount++
			}
		}

		counts, err := s.annotations.StatusCounts(ctx, annotatorID, categoryID)
		if err != nil {
			return nil, err
		}

		result = append(result, CategoryProgress{
			Category:        category,
			TotalImages:     len(candidates),
			CompletedImages: completedCount,
			SkippedImages:   counts[models.AnnotationStatusSkipped],
			QueueSize:       len(candidates) - completedCount,
		})
	}
	return result, nil
}

type DetailCategory struct {
	Category         models.Category
	Own              *models.Annotation
	CompletedByOther bool
	CompletedBy      string
}

type ImageDetail struct {
	Image         models.Image
	Categories    []DetailCategory
	LockState     models.LockState
	OverallStatus string // completed, partial, pending
	PrevImageID   *string
	NextImageID   *string
}

// ImageDetail assembles the per-category state of one image for an
// annotator, with prev/next ids from the candidate ordering.
func (s *QueueService) ImageDetail(ctx context.Context, imageID, annotatorID string) (ImageDetail, error) {
	image, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return ImageDetail{}, notFoundf("image %s", imageID)
		}
		return ImageDetail{}, err
	}

	assigned, err := s.users.AssignedCategoryIDs(ctx, annotatorID)
	if err != nil {
		return ImageDetail{}, err
	}

	anns, err := s.annotations.ListByImage(ctx, imageID)
	if err != nil {
		return ImageDetail{}, err
	}

	ownByCategory := make(map[string]models.Annotation)
	completedByCategory := make(map[string]string)
	for _, ann := range anns {
		if ann.AnnotatorID == annotatorID {
			ownByCategory[ann.CategoryID] = ann
		}
		if ann.Status == models.AnnotationStatusCompleted {
			completedByCategory[ann.CategoryID] = ann.AnnotatorID
		}
	}

	categories := make([]DetailCategory, 0, len(assigned))
	doneCount := 0
	for _, categoryID := range assigned {
		category, err := s.categories.GetByID(ctx, categoryID)
		if err != nil {
			return ImageDetail{}, err
		}

		detail := DetailCategory{Category: category}
		if own, ok := ownByCategory[categoryID]; ok {
			ownCopy := own
			detail.Own = &ownCopy
		}
		if by, done := completedByCategory[categoryID]; done {
			doneCount++
			if by != annotatorID {
				detail.CompletedByOther = true
				detail.CompletedBy = by
			}
		}
		categories = append(categories, detail)
	}

	overall := "pending"
	switch {
	case len(assigned) > 0 && doneCount == len(assigned):
		overall = "completed"
	case doneCount > 0:
		overall = "partial"
	}

	state, err := lockState(ctx, s.users, s.annotations, s.requests, imageID, annotatorID)
	if err != nil {
		return ImageDetail{}, err
	}

	prevID, nextID, err := s.neighbours(ctx, imageID)
	if err != nil {
		return ImageDetail{}, err
	}

	return ImageDetail{
		Image:         image,
		Categories:    categories,
		LockState:     state,
		OverallStatus: overall,
		PrevImageID:   prevID,
		NextImageID:   nextID,
	}, nil
}

func (s *QueueService) neighbours(ctx context.Context, imageID string) (prev, next *string, err error) {
	candidates, err := s.images.ListActive(ctx)
	if err != nil {
		return nil, nil, err
	}
	for i, img := range candidates {
		if img.ID != imageID {
			continue
		}
		if i > 0 {
			prev = &candidates[i-1].ID
		}
		if i < len(candidates)-1 {
			next = &candidates[i+1].ID
		}
		return prev, next, nil
	}
	// Improper images fall out of the ordering; no neighbours then.
	return nil, nil, nil
}

func (s *QueueService) snapshot(ctx context.Context, categoryID string) ([]models.Image, map[string]string, error) {
	candidates, err := s.images.ListActive(ctx)
	if err != nil {
		return nil, nil, err
	}
	completed, err := s.annotations.CompletedImageIDs(ctx, categoryID)
	if err != nil {
		return nil, nil, err
	}
	return candidates, completed, nil
}

func (s *QueueService) requireAssignment(ctx context.Context, annotatorID, categoryID string) error {
	assigned, err := s.users.AssignedCategoryIDs(ctx, annotatorID)
	if err != nil {
		return err
	}
	for _, id := range assigned {
		if id == categoryID {
			return nil
		}
	}
	return permissionf("category %s is not assigned to you", categoryID)
}
