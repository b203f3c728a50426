package dto

import (
	"time"

	"github.com/skillbridge/skillbridge-api/internal/domain"
)

// CreateReviewRequest payload. Rating is a pointer so absence is detectable.
type CreateReviewRequest struct {
	Rating  *float64 `json:"rating"`
	Comment string   `json:"comment"`
}

// ReviewResponse represents a review.
type ReviewResponse struct {
	ID         string               `json:"id"`
	BookingID  string               `json:"bookingId"`
	ReviewerID string               `json:"reviewerId"`
	Rating     int                  `json:"rating"`
	Comment    string               `json:"comment,omitempty"`
	Reviewer   *UserSummaryResponse `json:"reviewer,omitempty"`
	CreatedAt  time.Time            `json:"createdAt"`
}

// TutorReviewsResponse lists a tutor's reviews.
type TutorReviewsResponse struct {
	Reviews       []ReviewResponse `json:"reviews"`
	AverageRating float64          `json:"averageRating"`
	Count         int              `json:"count"`
}

// NewReviewResponse maps a domain review.
func NewReviewResponse(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:         r.ID,
		BookingID:  r.BookingID,
		ReviewerID: r.ReviewerID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		Reviewer:   NewUserSummaryResponse(r.Reviewer),
		CreatedAt:  r.CreatedAt,
	}
}

// NewReviewResponses maps a slice.
func NewReviewResponses(reviews []domain.Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, NewReviewResponse(&reviews[i]))
	}
	return out
}
