package service

import (
	"context"
	"errors"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/repository"
)

// allCategoriesCompleted reports whether the annotator has a completed
// annotation of their own for every category assigned to them on this image.
// That condition is what arms the edit lock.
func allCategoriesCompleted(ctx context.Context, users UserStore, annotations AnnotationStore, imageID, annotatorID string) (bool, error) {
	assigned, err := users.AssignedCategoryIDs(ctx, annotatorID)
	if err != nil {
		return false, err
	}
	if len(assigned) == 0 {
		return false, nil
	}

	anns, err := annotations.ListByImage(ctx, imageID)
	if err != nil {
		return false, err
	}

	ownCompleted := make(map[string]bool, len(anns))
	for _, ann := range anns {
		if ann.AnnotatorID == annotatorID && ann.Status == models.AnnotationStatusCompleted {
			ownCompleted[ann.CategoryID] = true
		}
	}

	for _, categoryID := range assigned {
		if !ownCompleted[categoryID] {
			return false, nil
		}
	}
	return true, nil
}

// lockState resolves the edit-lock workflow state for one (image, annotator)
// pair. It is recomputed from current rows on every call.
func lockState(ctx context.Context, users UserStore, annotations AnnotationStore, requests EditRequestStore, imageID, annotatorID string) (models.LockState, error) {
	if _, err := requests.PendingForImage(ctx, imageID, annotatorID); err == nil {
		return models.LockStateRequestPending, nil
	} else if !errors.Is(err, repository.ErrEditRequestNotFound) {
		return "", err
	}

	locked, err := allCategoriesCompleted(ctx, users, annotations, imageID, annotatorID)
	if err != nil {
		return "", err
	}
	if !locked {
		return models.LockStateEditable, nil
	}

	if _, err := requests.ActiveGrant(ctx, imageID, annotatorID); err == nil {
		return models.LockStateEditable, nil
	} else if !errors.Is(err, repository.ErrEditRequestNotFound) {
		return "", err
	}

	return models.LockStateLocked, nil
}
