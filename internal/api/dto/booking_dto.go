package dto

import (
	"time"

	"github.com/skillbridge/skillbridge-api/internal/domain"
)

// CreateBookingRequest payload. Fields are checked by the booking service in a
// fixed order so they carry no validate tags. Duration is left undecoded so a
// non-numeric value is reported by the duration check.
type CreateBookingRequest struct {
	TutorID  string `json:"tutorId"`
	DateTime string `json:"dateTime"`
	Duration any    `json:"duration"`
	Notes    string `json:"notes"`
}

// UpdateBookingStatusRequest payload.
type UpdateBookingStatusRequest struct {
	Status domain.BookingStatus `json:"status"`
}

// BookingResponse represents a booking with participant summaries.
type BookingResponse struct {
	ID        string               `json:"id"`
	StudentID string               `json:"studentId"`
	TutorID   string               `json:"tutorId"`
	DateTime  time.Time            `json:"dateTime"`
	Duration  float64              `json:"duration"`
	Notes     string               `json:"notes,omitempty"`
	Status    domain.BookingStatus `json:"status"`
	Student   *UserSummaryResponse `json:"student,omitempty"`
	Tutor     *UserSummaryResponse `json:"tutor,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// NewBookingResponse maps a domain booking.
func NewBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:        b.ID,
		StudentID: b.StudentID,
		TutorID:   b.TutorID,
		DateTime:  b.DateTime,
		Duration:  b.Duration,
		Notes:     b.Notes,
		Status:    b.Status,
		Student:   NewUserSummaryResponse(b.Student),
		Tutor:     NewUserSummaryResponse(b.Tutor),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// NewBookingResponses maps a slice.
func NewBookingResponses(bookings []domain.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, NewBookingResponse(&bookings[i]))
	}
	return out
}
