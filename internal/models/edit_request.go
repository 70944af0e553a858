package models

import "time"

type EditRequestStatus string

const (
	EditRequestStatusPending  EditRequestStatus = "pending"
	EditRequestStatusApproved EditRequestStatus = "approved"
	EditRequestStatusDenied   EditRequestStatus = "denied"
)

// EditRequest asks an admin to unlock an annotator's completed work on one
// image. An approved request acts as a one-shot grant: it is marked consumed
// when the annotator next re-completes all of their categories for the image.
type EditRequest struct {
	ID          string
	ImageID     string
	AnnotatorID string
	Reason      string
	Status      EditRequestStatus
	Consumed    bool
	ResolvedBy  *string
	ResolvedAt  *time.Time
	CreatedAt   time.Time
}

// LockState describes where one (image, annotator) pair sits in the
// edit-lock workflow.
type LockState string

const (
	LockStateEditable       LockState = "editable"
	LockStateLocked         LockState = "locked"
	LockStateRequestPending LockState = "request_pending"
)
