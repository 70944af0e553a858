package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/ids"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/repository"
)

// AnnotationService owns the annotation lifecycle: validated saves keyed on
// the (image, category, annotator) triple, the improper-image guard, and the
// edit-lock enforcement with one-shot grants.
type AnnotationService struct {
	annotations AnnotationStore
	images      ImageStore
	users       UserStore
	requests    EditRequestStore
	log         zerolog.Logger
}

func NewAnnotationService(
	annotations AnnotationStore,
	images ImageStore,
	users UserStore,
	requests EditRequestStore,
	log zerolog.Logger,
) *AnnotationService {
	return &AnnotationService{
		annotations: annotations,
		images:      images,
		users:       users,
		requests:    requests,
		log:         log,
	}
}

type SaveInput struct {
	ImageID           string
	CategoryID        string
	AnnotatorID       string
	SelectedOptionIDs []string
	IsDuplicate       *bool
	Status            models.AnnotationStatus
	TimeSpentSeconds  int
}

func (s *AnnotationService) Save(ctx context.Context, input SaveInput) (models.Annotation, error) {
	switch input.Status {
	case models.AnnotationStatusInProgress, models.AnnotationStatusCompleted, models.AnnotationStatusSkipped:
	default:
		return models.Annotation{}, validationf("unknown status %q", input.Status)
	}
	if input.Status == models.AnnotationStatusCompleted && len(input.SelectedOptionIDs) == 0 {
		return models.Annotation{}, validationf("a completed annotation needs at least one selected option")
	}

	image, err := s.images.GetByID(ctx, input.ImageID)
	if err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return models.Annotation{}, notFoundf("image %s", input.ImageID)
		}
		return models.Annotation{}, err
	}
	if image.IsImproper {
		return models.Annotation{}, permissionf("image %s is flagged improper", image.ID)
	}

	if err := s.requireAssignment(ctx, input.AnnotatorID, input.CategoryID); err != nil {
		return models.Annotation{}, err
	}

	// The lock is derived state, so it is recomputed from current rows on
	// every save rather than cached.
	locked, err := allCategoriesCompleted(ctx, s.users, s.annotations, input.ImageID, input.AnnotatorID)
	if err != nil {
		return models.Annotation{}, err
	}

	var grant *models.EditRequest
	if locked {
		g, err := s.requests.ActiveGrant(ctx, input.ImageID, input.AnnotatorID)
		if err != nil {
			if errors.Is(err, repository.ErrEditRequestNotFound) {
				return models.Annotation{}, permissionf("annotations for image %s are locked", input.ImageID)
			}
			return models.Annotation{}, err
		}
		grant = &g
	}

	saved, err := s.annotations.Upsert(ctx, models.Annotation{
		ID:                ids.New(),
		ImageID:           input.ImageID,
		CategoryID:        input.CategoryID,
		AnnotatorID:       input.AnnotatorID,
		SelectedOptionIDs: input.SelectedOptionIDs,
		IsDuplicate:       input.IsDuplicate,
		Status:            input.Status,
		TimeSpentSeconds:  input.TimeSpentSeconds,
	})
	if err != nil {
		return models.Annotation{}, err
	}

	// A completing save that closes out every assigned category re-arms the
	// lock: any approved grant for the pair is good for exactly one such
	// completion. The grant is looked up again here because a grantee can
	// downgrade one category to in_progress and re-complete it while
	// unlocked. Re-read the rows before consuming so a concurrent save
	// cannot leave the grant half-spent.
	if saved.Status == models.AnnotationStatusCompleted {
		complete, err := allCategoriesCompleted(ctx, s.users, s.annotations, input.ImageID, input.AnnotatorID)
		if err != nil {
			return models.Annotation{}, err
		}
		if complete {
			if grant == nil {
				g, err := s.requests.ActiveGrant(ctx, input.ImageID, input.AnnotatorID)
				if err != nil && !errors.Is(err, repository.ErrEditRequestNotFound) {
					return models.Annotation{}, err
				}
				if err == nil {
					grant = &g
				}
			}
			if grant != nil {
				if err := s.requests.Consume(ctx, grant.ID); err != nil {
					return models.Annotation{}, err
				}
				s.log.Debug().
					Str("image_id", input.ImageID).
					Str("annotator_id", input.AnnotatorID).
					Msg("edit grant consumed, lock re-armed")
			}
		}
	}

	return saved, nil
}

// MarkImproper flags an image as unfit for annotation, removing it from
// every annotator's queue. Existing annotations stay stored.
func (s *AnnotationService) MarkImproper(ctx context.Context, imageID, annotatorID, reason string) (models.Image, error) {
	if reason == "" {
		return models.Image{}, validationf("a reason is required to flag an image")
	}

	image, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return models.Image{}, notFoundf("image %s", imageID)
		}
		return models.Image{}, err
	}
	if image.IsImproper {
		return models.Image{}, conflictf("image %s is already flagged improper", imageID)
	}

	ok, err := s.images.MarkImproper(ctx, imageID, reason, annotatorID)
	if err != nil {
		return models.Image{}, err
	}
	if !ok {
		// Another report won the race.
		return models.Image{}, conflictf("image %s is already flagged improper", imageID)
	}

	s.log.Info().
		Str("image_id", imageID).
		Str("reported_by", annotatorID).
		Msg("image flagged improper")

	return s.images.GetByID(ctx, imageID)
}

// LockState reports where the (image, annotator) pair sits in the edit-lock
// workflow.
func (s *AnnotationService) LockState(ctx context.Context, imageID, annotatorID string) (models.LockState, error) {
	return lockState(ctx, s.users, s.annotations, s.requests, imageID, annotatorID)
}

func (s *AnnotationService) requireAssignment(ctx context.Context, annotatorID, categoryID string) error {
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
