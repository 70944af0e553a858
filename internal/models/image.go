package models

import "time"

type Image struct {
	ID             string
	Filename       string
	URL            string
	IsImproper     bool
	ImproperReason *string
	ReportedBy     *string
	CreatedAt      time.Time
}
