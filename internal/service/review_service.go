package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/repository"
)

// ReviewService is the admin-side approval workflow over completed
// annotations.
type ReviewService struct {
	annotations AnnotationStore
	images      ImageStore
	users       UserStore
	categories  CategoryStore
	log         zerolog.Logger
}

func NewReviewService(
	annotations AnnotationStore,
	images ImageStore,
	users UserStore,
	categories CategoryStore,
	log zerolog.Logger,
) *ReviewService {
	return &ReviewService{
		annotations: annotations,
		images:      images,
		users:       users,
		categories:  categories,
		log:         log,
	}
}

// Approve signs off an annotation as-is. Approving twice is a conflict.
func (s *ReviewService) Approve(ctx context.Context, annotationID, reviewerID string, note *string) (models.Annotation, error) {
	ann, err := s.annotations.GetByID(ctx, annotationID)
	if err != nil {
		if errors.Is(err, repository.ErrAnnotationNotFound) {
			return models.Annotation{}, notFoundf("annotation %s", annotationID)
		}
		return models.Annotation{}, err
	}
	if ann.Status != models.AnnotationStatusCompleted {
		return models.Annotation{}, validationf("only completed annotations can be approved")
	}
	if ann.Approved() {
		return models.Annotation{}, conflictf("annotation %s is already approved", annotationID)
	}

	ok, err := s.annotations.Approve(ctx, annotationID, reviewerID, note)
	if err != nil {
		return models.Annotation{}, err
	}
	if !ok {
		// Approved concurrently between the read and the write.
		return models.Annotation{}, conflictf("annotation %s is already approved", annotationID)
	}

	return s.annotations.GetByID(ctx, annotationID)
}

// UpdateAndApprove rewrites the selection and approves as one unit. Unlike
// Approve it works on already-approved annotations, so admins can keep
// correcting inline.
func (s *ReviewService) UpdateAndApprove(ctx context.Context, annotationID string, selection []string, isDuplicate *bool, reviewerID string, note *string) (models.Annotation, error) {
	if len(selection) == 0 {
		return models.Annotation{}, validationf("at least one option must be selected")
	}

	ann, err := s.annotations.GetByID(ctx, annotationID)
	if err != nil {
		if errors.Is(err, repository.ErrAnnotationNotFound) {
			return models.Annotation{}, notFoundf("annotation %s", annotationID)
		}
		return models.Annotation{}, err
	}
	if ann.Status != models.AnnotationStatusCompleted {
		return models.Annotation{}, validationf("only completed annotations can be reviewed")
	}

	if note == nil {
		defaultNote := "Edited by admin"
		note = &defaultNote
	}

	updated, err := s.annotations.UpdateAndApprove(ctx, annotationID, selection, isDuplicate, reviewerID, note)
	if err != nil {
		if errors.Is(err, repository.ErrAnnotationNotFound) {
			return models.Annotation{}, notFoundf("annotation %s", annotationID)
		}
		return models.Annotation{}, err
	}
	return updated, nil
}

type BulkApproveResult struct {
	SucceededIDs []string
	FailedIDs    []string
}

// BulkApprove approves every pending annotation under the given images.
// Approvals are independent: a failure is recorded and the rest continue,
// and nothing already approved is rolled back. Re-running over the same
// images approves nothing further and is not an error.
func (s *ReviewService) BulkApprove(ctx context.Context, imageIDs []string, reviewerID string) (BulkApproveResult, error) {
	result := BulkApproveResult{
		SucceededIDs: []string{},
		FailedIDs:    []string{},
	}
	if len(imageIDs) == 0 {
		return result, nil
	}

	pending, err := s.annotations.PendingIDsByImages(ctx, imageIDs)
	if err != nil {
		return BulkApproveResult{}, err
	}

	for _, id := range pending {
		ok, err := s.annotations.Approve(ctx, id, reviewerID, nil)
		if err != nil {
			s.log.Error().Err(err).Str("annotation_id", id).Msg("bulk approve: annotation failed")
			result.FailedIDs = append(result.FailedIDs, id)
			continue
		}
		if !ok {
			// Approved by someone else since the pending scan; already in
			// the desired state, so count it as done.
			result.SucceededIDs = append(result.SucceededIDs, id)
			continue
		}
		result.SucceededIDs = append(result.SucceededIDs, id)
	}

	s.log.Info().
		Int("approved", len(result.SucceededIDs)).
		Int("failed", len(result.FailedIDs)).
		Str("reviewed_by", reviewerID).
		Msg("bulk approval finished")

	return result, nil
}

type ReviewFilter struct {
	CategoryID   *string
	AnnotatorID  *string
	ReviewStatus *string // "pending" or "approved"
	Page         int
	PageSize     int
}

type ReviewItem struct {
	Annotation         models.Annotation
	ImageURL           string
	ImageFilename      string
	AnnotatorUsername  string
	CategoryName       string
	SelectedOptions    []models.Option
	AllOptions         []models.Option
	ReviewedByUsername string
}

// List returns completed annotations for the review screen, newest first.
func (s *ReviewService) List(ctx context.Context, filter ReviewFilter) ([]ReviewItem, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	anns, err := s.annotations.ListCompleted(ctx, filter.CategoryID, filter.AnnotatorID, filter.ReviewStatus, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	imageByID := make(map[string]models.Image)
	images, err := s.images.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, img := range images {
		imageByID[img.ID] = img
	}

	usersByID := make(map[string]models.User)
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		usersByID[u.ID] = u
	}

	categoryByID := make(map[string]models.Category)
	optionsByCategory := make(map[string][]models.Option)
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		categoryByID[c.ID] = c
		options, err := s.categories.Options(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		optionsByCategory[c.ID] = options
	}

	items := make([]ReviewItem, 0, len(anns))
	for _, ann := range anns {
		item := ReviewItem{Annotation: ann}

		if img, ok := imageByID[ann.ImageID]; ok {
			item.ImageURL = img.URL
			item.ImageFilename = img.Filename
		}
		if u, ok := usersByID[ann.AnnotatorID]; ok {
			item.AnnotatorUsername = u.Username
		}
		if ann.ReviewedBy != nil {
			if u, ok := usersByID[*ann.ReviewedBy]; ok {
				item.ReviewedByUsername = u.Username
			}
		}
		if c, ok := categoryByID[ann.CategoryID]; ok {
			item.CategoryName = c.Name
		}

		all := optionsByCategory[ann.CategoryID]
		item.AllOptions = all
		selected := make(map[string]bool, len(ann.SelectedOptionIDs))
		for _, id := range ann.SelectedOptionIDs {
			selected[id] = true
		}
		for _, option := range all {
			if selected[option.ID] {
				item.SelectedOptions = append(item.SelectedOptions, option)
			}
		}

		items = append(items, item)
	}
	return items, nil
}

type ReviewStats struct {
	TotalCompleted int
	PendingReview  int
	Approved       int
}

func (s *ReviewService) Stats(ctx context.Context) (ReviewStats, error) {
	total, pending, approved, err := s.annotations.ReviewCounts(ctx)
	if err != nil {
		return ReviewStats{}, err
	}
	return ReviewStats{
		TotalCompleted: total,
		PendingReview:  pending,
		Approved:       approved,
	}, nil
}
