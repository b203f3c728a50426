package domain

import "time"

// Category tags tutors and subjects for discovery.
type Category struct {
	ID          string
	Name        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
