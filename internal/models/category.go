package models

import "time"

type Category struct {
	ID           string
	Name         string
	DisplayOrder int
	CreatedAt    time.Time
}

type Option struct {
	ID           string
	CategoryID   string
	Label        string
	IsTypical    bool
	DisplayOrder int
}
