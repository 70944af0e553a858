package models

import "time"

type AnnotationStatus string

const (
	AnnotationStatusInProgress AnnotationStatus = "in_progress"
	AnnotationStatusCompleted  AnnotationStatus = "completed"
	AnnotationStatusSkipped    AnnotationStatus = "skipped"
)

type ReviewStatus string

const (
	ReviewStatusApproved ReviewStatus = "approved"
)

// Annotation is one annotator's labelling of one image for one category.
// At most one row exists per (image, category, annotator); writes upsert
// on that triple.
type Annotation struct {
	ID                string
	ImageID           string
	CategoryID        string
	AnnotatorID       string
	SelectedOptionIDs []string
	IsDuplicate       *bool
	Status            AnnotationStatus
	TimeSpentSeconds  int
	ReviewStatus      *ReviewStatus
	ReviewNote        *string
	ReviewedBy        *string
	ReviewedAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Approved reports whether an admin has signed off on the annotation.
// A nil ReviewStatus means the annotation is still pending review.
func (a Annotation) Approved() bool {
	return a.ReviewStatus != nil && *a.ReviewStatus == ReviewStatusApproved
}
