package models

import "time"

type UserRole string

const (
	UserRoleAdmin     UserRole = "admin"
	UserRoleAnnotator UserRole = "annotator"
)

type User struct {
	ID           string
	Username     string
	PasswordHash []byte
	FullName     string
	Role         UserRole
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Assignment links an annotator to one category they are expected to label.
type Assignment struct {
	UserID     string
	CategoryID string
}
