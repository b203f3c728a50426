package domain

import "time"

// TutorProfile holds the public teaching details of a TUTOR user.
type TutorProfile struct {
	ID           string
	UserID       string
	Bio          string
	Subjects     []string
	HourlyRate   float64
	CategoryIDs  []string
	Availability []Availability
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Availability is a weekly recurring slot. Times are "HH:MM" strings.
type Availability struct {
	ID        string
	ProfileID string
	DayOfWeek int
	StartTime string
	EndTime   string
}

// TutorListing is a tutor as shown in discovery results.
type TutorListing struct {
	User          UserSummary
	Profile       *TutorProfile
	AverageRating float64
	ReviewCount   int
}
