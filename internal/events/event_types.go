package events

import (
	"time"

	"github.com/skillbridge/skillbridge-api/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventBookingCreated       EventType = "booking_created"
	EventBookingStatusChanged EventType = "booking_status_changed"
	EventBookingsCompleted    EventType = "bookings_completed"
	EventReviewCreated        EventType = "review_created"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID *string      `json:"user_id,omitempty"`
	Role   *domain.Role `json:"role,omitempty"`
	System bool         `json:"system,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	BookingID string      `json:"booking_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// BookingCreatedPayload payload.
type BookingCreatedPayload struct {
	StudentID string    `json:"student_id"`
	TutorID   string    `json:"tutor_id"`
	DateTime  time.Time `json:"date_time"`
	Duration  float64   `json:"duration"`
}

// BookingStatusChangedPayload payload.
type BookingStatusChangedPayload struct {
	StudentID string               `json:"student_id"`
	TutorID   string               `json:"tutor_id"`
	OldStatus domain.BookingStatus `json:"old_status"`
	NewStatus domain.BookingStatus `json:"new_status"`
}

// BookingsCompletedPayload payload.
type BookingsCompletedPayload struct {
	Count int64 `json:"count"`
}

// ReviewCreatedPayload payload.
type ReviewCreatedPayload struct {
	ReviewID string `json:"review_id"`
	TutorID  string `json:"tutor_id"`
	Rating   int    `json:"rating"`
}
