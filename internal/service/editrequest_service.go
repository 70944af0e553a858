package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/ids"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/repository"
)

// EditRequestService runs the unlock workflow: an annotator whose work on an
// image is locked files a request, an admin approves or denies it, and an
// approved request acts as a one-shot grant.
type EditRequestService struct {
	requests    EditRequestStore
	annotations AnnotationStore
	images      ImageStore
	users       UserStore
	log         zerolog.Logger
}

func NewEditRequestService(
	requests EditRequestStore,
	annotations AnnotationStore,
	images ImageStore,
	users UserStore,
	log zerolog.Logger,
) *EditRequestService {
	return &EditRequestService{
		requests:    requests,
		annotations: annotations,
		images:      images,
		users:       users,
		log:         log,
	}
}

func (s *EditRequestService) Request(ctx context.Context, imageID, annotatorID, reason string) (models.EditRequest, error) {
	if reason == "" {
		return models.EditRequest{}, validationf("a reason is required to request an edit")
	}

	if _, err := s.images.GetByID(ctx, imageID); err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return models.EditRequest{}, notFoundf("image %s", imageID)
		}
		return models.EditRequest{}, err
	}

	if _, err := s.requests.PendingForImage(ctx, imageID, annotatorID); err == nil {
		return models.EditRequest{}, conflictf("an edit request for image %s is already pending", imageID)
	} else if !errors.Is(err, repository.ErrEditRequestNotFound) {
		return models.EditRequest{}, err
	}

	state, err := lockState(ctx, s.users, s.annotations, s.requests, imageID, annotatorID)
	if err != nil {
		return models.EditRequest{}, err
	}
	if state != models.LockStateLocked {
		return models.EditRequest{}, conflictf("annotations for image %s are not locked", imageID)
	}

	req := models.EditRequest{
		ID:          ids.New(),
		ImageID:     imageID,
		AnnotatorID: annotatorID,
		Reason:      reason,
		Status:      models.EditRequestStatusPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return models.EditRequest{}, err
	}

	s.log.Info().
		Str("image_id", imageID).
		Str("annotator_id", annotatorID).
		Msg("edit request filed")

	return s.requests.GetByID(ctx, req.ID)
}

// Resolve approves or denies a pending request. Approval hands the annotator
// a grant good for one re-completion; denial re-locks, and the annotator may
// file a new request.
func (s *EditRequestService) Resolve(ctx context.Context, requestID, adminID string, approve bool) (models.EditRequest, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrEditRequestNotFound) {
			return models.EditRequest{}, notFoundf("edit request %s", requestID)
		}
		return models.EditRequest{}, err
	}
	if req.Status != models.EditRequestStatusPending {
		return models.EditRequest{}, conflictf("edit request %s is already %s", requestID, req.Status)
	}

	status := models.EditRequestStatusDenied
	if approve {
		status = models.EditRequestStatusApproved
	}

	ok, err := s.requests.Resolve(ctx, requestID, status, adminID)
	if err != nil {
		return models.EditRequest{}, err
	}
	if !ok {
		// Resolved concurrently by another admin.
		return models.EditRequest{}, conflictf("edit request %s is no longer pending", requestID)
	}

	s.log.Info().
		Str("request_id", requestID).
		Str("resolved_by", adminID).
		Bool("approved", approve).
		Msg("edit request resolved")

	return s.requests.GetByID(ctx, requestID)
}

type EditRequestDetail struct {
	Request           models.EditRequest
	AnnotatorUsername string
	ImageFilename     string
	ImageURL          string
}

func (s *EditRequestService) List(ctx context.Context, status *models.EditRequestStatus) ([]EditRequestDetail, error) {
	reqs, err := s.requests.List(ctx, status)
	if err != nil {
		return nil, err
	}

	details := make([]EditRequestDetail, 0, len(reqs))
	for _, req := range reqs {
		detail := EditRequestDetail{Request: req}
		if user, err := s.users.GetByID(ctx, req.AnnotatorID); err == nil {
			detail.AnnotatorUsername = user.Username
		}
		if image, err := s.images.GetByID(ctx, req.ImageID); err == nil {
			detail.ImageFilename = image.Filename
			detail.ImageURL = image.URL
		}
		details = append(details, detail)
	}
	return details, nil
}

// ExpireStale denies pending requests older than maxAge. Denied requests can
// be resubmitted, so sweeping them is always safe.
func (s *EditRequestService) ExpireStale(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	expired, err := s.requests.ExpirePending(ctx, time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		s.log.Info().Int("count", expired).Msg("stale edit requests auto-denied")
	}
	return expired, nil
}
