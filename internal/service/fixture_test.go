package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
)

type fixture struct {
	users       *fakeUsers
	categories  *fakeCategories
	images      *fakeImages
	annotations *fakeAnnotations
	requests    *fakeEditRequests

	annotationService  *AnnotationService
	queueService       *QueueService
	completionService  *CompletionService
	editRequestService *EditRequestService
	reviewService      *ReviewService
}

func newFixture() *fixture {
	users := newFakeUsers()
	categories := newFakeCategories()
	images := newFakeImages()
	annotations := newFakeAnnotations()
	requests := newFakeEditRequests()
	logger := zerolog.Nop()

	return &fixture{
		users:       users,
		categories:  categories,
		images:      images,
		annotations: annotations,
		requests:    requests,

		annotationService:  NewAnnotationService(annotations, images, users, requests, logger),
		queueService:       NewQueueService(images, annotations, users, categories, requests, logger),
		completionService:  NewCompletionService(images, annotations, users, categories),
		editRequestService: NewEditRequestService(requests, annotations, images, users, logger),
		reviewService:      NewReviewService(annotations, images, users, categories, logger),
	}
}

func (f *fixture) addAnnotator(id string, categoryIDs ...string) {
	f.users.users[id] = models.User{
		ID:       id,
		Username: id,
		Role:     models.UserRoleAnnotator,
		IsActive: true,
	}
	f.users.assignments[id] = categoryIDs
}

func (f *fixture) addAdmin(id string) {
	f.users.users[id] = models.User{
		ID:       id,
		Username: id,
		Role:     models.UserRoleAdmin,
		IsActive: true,
	}
}

func (f *fixture) addCategory(id, name string, order int) {
	f.categories.categories[id] = models.Category{ID: id, Name: name, DisplayOrder: order}
}

func (f *fixture) addOption(id, categoryID, label string) {
	f.categories.options[categoryID] = append(f.categories.options[categoryID], models.Option{
		ID:         id,
		CategoryID: categoryID,
		Label:      label,
	})
}

func (f *fixture) addImage(id string) {
	f.images.images = append(f.images.images, models.Image{
		ID:       id,
		Filename: id + ".jpg",
		URL:      "https://example.test/" + id,
	})
}

// save goes through the service so lock and validation rules apply.
func (f *fixture) save(t *testing.T, imageID, categoryID, annotatorID string, status models.AnnotationStatus) models.Annotation {
	t.Helper()
	var selection []string
	if status == models.AnnotationStatusCompleted {
		selection = []string{"opt-1"}
	}
	saved, err := f.annotationService.Save(context.Background(), SaveInput{
		ImageID:           imageID,
		CategoryID:        categoryID,
		AnnotatorID:       annotatorID,
		SelectedOptionIDs: selection,
		Status:            status,
	})
	require.NoError(t, err)
	return saved
}
