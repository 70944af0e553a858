package service

import (
	"context"
	"time"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
)

// The store interfaces mirror the pgx repositories. Not-found conditions are
// reported with the repository sentinel errors so callers can errors.Is them.

type UserStore interface {
	GetByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	Create(ctx context.Context, user models.User) error
	Update(ctx context.Context, user models.User) error
	List(ctx context.Context) ([]models.User, error)
	AssignedCategoryIDs(ctx context.Context, userID string) ([]string, error)
	ReplaceAssignments(ctx context.Context, userID string, categoryIDs []string) error
	ListAssignments(ctx context.Context) ([]models.Assignment, error)
}

type CategoryStore interface {
	GetByID(ctx context.Context, id string) (models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Options(ctx context.Context, categoryID string) ([]models.Option, error)
}

type ImageStore interface {
	GetByID(ctx context.Context, id string) (models.Image, error)
	Create(ctx context.Context, image models.Image) error
	List(ctx context.Context) ([]models.Image, error)
	ListActive(ctx context.Context) ([]models.Image, error)
	MarkImproper(ctx context.Context, id, reason, reporterID string) (bool, error)
	ClearImproper(ctx context.Context, id string) error
}

type AnnotationStore interface {
	GetByID(ctx context.Context, id string) (models.Annotation, error)
	GetByTriple(ctx context.Context, imageID, categoryID, annotatorID string) (models.Annotation, error)
	Upsert(ctx context.Context, ann models.Annotation) (models.Annotation, error)
	ListByImage(ctx context.Context, imageID string) ([]models.Annotation, error)
	CompletedImageIDs(ctx context.Context, categoryID string) (map[string]string, error)
	StatusCounts(ctx context.Context, annotatorID, categoryID string) (map[models.AnnotationStatus]int, error)
	Approve(ctx context.Context, id, reviewerID string, note *string) (bool, error)
	UpdateAndApprove(ctx context.Context, id string, selection []string, isDuplicate *bool, reviewerID string, note *string) (models.Annotation, error)
	ListCompleted(ctx context.Context, categoryID, annotatorID, reviewStatus *string, limit, offset int) ([]models.Annotation, error)
	PendingIDsByImages(ctx context.Context, imageIDs []string) ([]string, error)
	ReviewCounts(ctx context.Context) (total, pending, approved int, err error)
}

type EditRequestStore interface {
	Create(ctx context.Context, req models.EditRequest) error
	GetByID(ctx context.Context, id string) (models.EditRequest, error)
	PendingForImage(ctx context.Context, imageID, annotatorID string) (models.EditRequest, error)
	ActiveGrant(ctx context.Context, imageID, annotatorID string) (models.EditRequest, error)
	Resolve(ctx context.Context, id string, status models.EditRequestStatus, resolverID string) (bool, error)
	Consume(ctx context.Context, id string) error
	List(ctx context.Context, status *models.EditRequestStatus) ([]models.EditRequest, error)
	ExpirePending(ctx context.Context, cutoff time.Time) (int, error)
}
