package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a student's rating of a past booking. At most one per booking.
type Review struct {
	ID         string
	BookingID  string
	ReviewerID string
	Rating     int
	Comment    string
	Reviewer   *UserSummary
	CreatedAt  time.Time
}
