package service

import (
	"context"
	"sort"
	"time"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/repository"
)

// In-memory stands-ins for the pgx repositories, mirroring their guarded
// update semantics and sentinel errors.

type fakeUsers struct {
	users       map[string]models.User
	assignments map[string][]string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		users:       make(map[string]models.User),
		assignments: make(map[string][]string),
	}
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (models.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUsers) Create(_ context.Context, user models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUsers) Update(_ context.Context, user models.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUsers) List(_ context.Context) ([]models.User, error) {
	users := make([]models.User, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (f *fakeUsers) AssignedCategoryIDs(_ context.Context, userID string) ([]string, error) {
	return append([]string(nil), f.assignments[userID]...), nil
}

func (f *fakeUsers) ReplaceAssignments(_ context.Context, userID string, categoryIDs []string) error {
	f.assignments[userID] = append([]string(nil), categoryIDs...)
	return nil
}

func (f *fakeUsers) ListAssignments(_ context.Context) ([]models.Assignment, error) {
	userIDs := make([]string, 0, len(f.assignments))
	for userID := range f.assignments {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	var out []models.Assignment
	for _, userID := range userIDs {
		for _, categoryID := range f.assignments[userID] {
			out = append(out, models.Assignment{UserID: userID, CategoryID: categoryID})
		}
	}
	return out, nil
}

type fakeCategories struct {
	categories map[string]models.Category
	options    map[string][]models.Option
}

func newFakeCategories() *fakeCategories {
	return &fakeCategories{
		categories: make(map[string]models.Category),
		options:    make(map[string][]models.Option),
	}
}

func (f *fakeCategories) GetByID(_ context.Context, id string) (models.Category, error) {
	category, ok := f.categories[id]
	if !ok {
		return models.Category{}, repository.ErrCategoryNotFound
	}
	return category, nil
}

func (f *fakeCategories) List(_ context.Context) ([]models.Category, error) {
	out := make([]models.Category, 0, len(f.categories))
	for _, category := range f.categories {
		out = append(out, category)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

func (f *fakeCategories) Options(_ context.Context, categoryID string) ([]models.Option, error) {
	return append([]models.Option(nil), f.options[categoryID]...), nil
}

type fakeImages struct {
	images []models.Image
}

func newFakeImages() *fakeImages {
	return &fakeImages{}
}

func (f *fakeImages) GetByID(_ context.Context, id string) (models.Image, error) {
	for _, img := range f.images {
		if img.ID == id {
			return img, nil
		}
	}
	return models.Image{}, repository.ErrImageNotFound
}

func (f *fakeImages) Create(_ context.Context, image models.Image) error {
	f.images = append(f.images, image)
	return nil
}

func (f *fakeImages) List(_ context.Context) ([]models.Image, error) {
	return append([]models.Image(nil), f.images...), nil
}

func (f *fakeImages) ListActive(_ context.Context) ([]models.Image, error) {
	var out []models.Image
	for _, img := range f.images {
		if !img.IsImproper {
			out = append(out, img)
		}
	}
	return out, nil
}

func (f *fakeImages) MarkImproper(_ context.Context, id, reason, reporterID string) (bool, error) {
	for i, img := range f.images {
		if img.ID != id {
			continue
		}
		if img.IsImproper {
			return false, nil
		}
		f.images[i].IsImproper = true
		f.images[i].ImproperReason = &reason
		f.images[i].ReportedBy = &reporterID
		return true, nil
	}
	return false, nil
}

func (f *fakeImages) ClearImproper(_ context.Context, id string) error {
	for i, img := range f.images {
		if img.ID == id {
			f.images[i].IsImproper = false
			f.images[i].ImproperReason = nil
			f.images[i].ReportedBy = nil
			return nil
		}
	}
	return repository.ErrImageNotFound
}

type fakeAnnotations struct {
	rows  []*models.Annotation
	clock int
}

func newFakeAnnotations() *fakeAnnotations {
	return &fakeAnnotations{}
}

// tick yields strictly increasing timestamps so updated_at ordering is
// deterministic.
func (f *fakeAnnotations) tick() time.Time {
	f.clock++
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.clock) * time.Second)
}

func (f *fakeAnnotations) find(imageID, categoryID, annotatorID string) *models.Annotation {
	for _, row := range f.rows {
		if row.ImageID == imageID && row.CategoryID == categoryID && row.AnnotatorID == annotatorID {
			return row
		}
	}
	return nil
}

func (f *fakeAnnotations) findByID(id string) *models.Annotation {
	for _, row := range f.rows {
		if row.ID == id {
			return row
		}
	}
	return nil
}

func (f *fakeAnnotations) GetByID(_ context.Context, id string) (models.Annotation, error) {
	if row := f.findByID(id); row != nil {
		return *row, nil
	}
	return models.Annotation{}, repository.ErrAnnotationNotFound
}

func (f *fakeAnnotations) GetByTriple(_ context.Context, imageID, categoryID, annotatorID string) (models.Annotation, error) {
	if row := f.find(imageID, categoryID, annotatorID); row != nil {
		return *row, nil
	}
	return models.Annotation{}, repository.ErrAnnotationNotFound
}

func (f *fakeAnnotations) Upsert(_ context.Context, ann models.Annotation) (models.Annotation, error) {
	existing := f.find(ann.ImageID, ann.CategoryID, ann.AnnotatorID)
	if existing == nil {
		now := f.tick()
		ann.CreatedAt = now
		ann.UpdatedAt = now
		row := ann
		f.rows = append(f.rows, &row)
		return row, nil
	}

	if existing.Status == models.AnnotationStatusCompleted && ann.Status == models.AnnotationStatusSkipped {
		return *existing, nil
	}

	existing.SelectedOptionIDs = ann.SelectedOptionIDs
	existing.IsDuplicate = ann.IsDuplicate
	existing.Status = ann.Status
	existing.TimeSpentSeconds = ann.TimeSpentSeconds
	existing.UpdatedAt = f.tick()
	return *existing, nil
}

func (f *fakeAnnotations) ListByImage(_ context.Context, imageID string) ([]models.Annotation, error) {
	var out []models.Annotation
	for _, row := range f.rows {
		if row.ImageID == imageID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeAnnotations) CompletedImageIDs(_ context.Context, categoryID string) (map[string]string, error) {
	completed := make(map[string]string)
	for _, row := range f.rows {
		if row.CategoryID == categoryID && row.Status == models.AnnotationStatusCompleted {
			completed[row.ImageID] = row.AnnotatorID
		}
	}
	return completed, nil
}

func (f *fakeAnnotations) StatusCounts(_ context.Context, annotatorID, categoryID string) (map[models.AnnotationStatus]int, error) {
	counts := make(map[models.AnnotationStatus]int)
	for _, row := range f.rows {
		if row.AnnotatorID == annotatorID && row.CategoryID == categoryID {
			counts[row.Status]++
		}
	}
	return counts, nil
}

func (f *fakeAnnotations) Approve(_ context.Context, id, reviewerID string, note *string) (bool, error) {
	row := f.findByID(id)
	if row == nil || row.Status != models.AnnotationStatusCompleted || row.ReviewStatus != nil {
		return false, nil
	}
	approved := models.ReviewStatusApproved
	now := f.tick()
	row.ReviewStatus = &approved
	row.ReviewNote = note
	row.ReviewedBy = &reviewerID
	row.ReviewedAt = &now
	row.UpdatedAt = now
	return true, nil
}

func (f *fakeAnnotations) UpdateAndApprove(_ context.Context, id string, selection []string, isDuplicate *bool, reviewerID string, note *string) (models.Annotation, error) {
	row := f.findByID(id)
	if row == nil || row.Status != models.AnnotationStatusCompleted {
		return models.Annotation{}, repository.ErrAnnotationNotFound
	}
	approved := models.ReviewStatusApproved
	now := f.tick()
	row.SelectedOptionIDs = append([]string(nil), selection...)
	if isDuplicate != nil {
		row.IsDuplicate = isDuplicate
	}
	row.ReviewStatus = &approved
	row.ReviewNote = note
	row.ReviewedBy = &reviewerID
	row.ReviewedAt = &now
	row.UpdatedAt = now
	return *row, nil
}

func (f *fakeAnnotations) ListCompleted(_ context.Context, categoryID, annotatorID, reviewStatus *string, limit, offset int) ([]models.Annotation, error) {
	var out []models.Annotation
	for _, row := range f.rows {
		if row.Status != models.AnnotationStatusCompleted {
			continue
		}
		if categoryID != nil && row.CategoryID != *categoryID {
			continue
		}
		if annotatorID != nil && row.AnnotatorID != *annotatorID {
			continue
		}
		if reviewStatus != nil {
			switch *reviewStatus {
			case "pending":
				if row.ReviewStatus != nil {
					continue
				}
			case "approved":
				if !row.Approved() {
					continue
				}
			}
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })

	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAnnotations) PendingIDsByImages(_ context.Context, imageIDs []string) ([]string, error) {
	wanted := make(map[string]bool, len(imageIDs))
	for _, id := range imageIDs {
		wanted[id] = true
	}

	var ids []string
	for _, row := range f.rows {
		if wanted[row.ImageID] && row.Status == models.AnnotationStatusCompleted && row.ReviewStatus == nil {
			ids = append(ids, row.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeAnnotations) ReviewCounts(_ context.Context) (total, pending, approved int, err error) {
	for _, row := range f.rows {
		if row.Status != models.AnnotationStatusCompleted {
			continue
		}
		total++
		if row.ReviewStatus == nil {
			pending++
		} else if row.Approved() {
			approved++
		}
	}
	return total, pending, approved, nil
}

type fakeEditRequests struct {
	rows  []*models.EditRequest
	clock int
}

func newFakeEditRequests() *fakeEditRequests {
	return &fakeEditRequests{}
}

func (f *fakeEditRequests) tick() time.Time {
	f.clock++
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.clock) * time.Minute)
}

func (f *fakeEditRequests) findByID(id string) *models.EditRequest {
	for _, row := range f.rows {
		if row.ID == id {
			return row
		}
	}
	return nil
}

func (f *fakeEditRequests) Create(_ context.Context, req models.EditRequest) error {
	req.CreatedAt = f.tick()
	row := req
	f.rows = append(f.rows, &row)
	return nil
}

func (f *fakeEditRequests) GetByID(_ context.Context, id string) (models.EditRequest, error) {
	if row := f.findByID(id); row != nil {
		return *row, nil
	}
	return models.EditRequest{}, repository.ErrEditRequestNotFound
}

func (f *fakeEditRequests) PendingForImage(_ context.Context, imageID, annotatorID string) (models.EditRequest, error) {
	for _, row := range f.rows {
		if row.ImageID == imageID && row.AnnotatorID == annotatorID && row.Status == models.EditRequestStatusPending {
			return *row, nil
		}
	}
	return models.EditRequest{}, repository.ErrEditRequestNotFound
}

func (f *fakeEditRequests) ActiveGrant(_ context.Context, imageID, annotatorID string) (models.EditRequest, error) {
	for _, row := range f.rows {
		if row.ImageID == imageID && row.AnnotatorID == annotatorID &&
			row.Status == models.EditRequestStatusApproved && !row.Consumed {
			return *row, nil
		}
	}
	return models.EditRequest{}, repository.ErrEditRequestNotFound
}

func (f *fakeEditRequests) Resolve(_ context.Context, id string, status models.EditRequestStatus, resolverID string) (bool, error) {
	row := f.findByID(id)
	if row == nil || row.Status != models.EditRequestStatusPending {
		return false, nil
	}
	now := f.tick()
	row.Status = status
	row.ResolvedBy = &resolverID
	row.ResolvedAt = &now
	return true, nil
}

func (f *fakeEditRequests) Consume(_ context.Context, id string) error {
	row := f.findByID(id)
	if row == nil {
		return repository.ErrEditRequestNotFound
	}
	row.Consumed = true
	return nil
}

func (f *fakeEditRequests) List(_ context.Context, status *models.EditRequestStatus) ([]models.EditRequest, error) {
	var out []models.EditRequest
	for _, row := range f.rows {
		if status != nil && row.Status != *status {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (f *fakeEditRequests) ExpirePending(_ context.Context, cutoff time.Time) (int, error) {
	expired := 0
	for _, row := range f.rows {
		if row.Status == models.EditRequestStatusPending && row.CreatedAt.Before(cutoff) {
			row.Status = models.EditRequestStatusDenied
			expired++
		}
	}
	return expired, nil
}
