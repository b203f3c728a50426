package domain

import "time"

// BookingStatus enumerates lifecycle states for bookings.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// MaxBookingDurationHours is the longest session a student can book.
const MaxBookingDurationHours = 24

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

// Booking is a scheduled tutoring session between a student and a tutor.
type Booking struct {
	ID        string
	StudentID string
	TutorID   string
	DateTime  time.Time
	Duration  float64
	Notes     string
	Status    BookingStatus
	Student   *UserSummary
	Tutor     *UserSummary
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EndsAt returns the scheduled end of the session.
func (b *Booking) EndsAt() time.Time {
	return b.DateTime.Add(time.Duration(b.Duration * float64(time.Hour)))
}

// IsParticipant reports whether userID is the student or the tutor on b.
func (b *Booking) IsParticipant(userID string) bool {
	return userID != "" && (b.StudentID == userID || b.TutorID == userID)
}

// tutorTransitions are the moves an assigned tutor may make.
// COMPLETED is only ever set by the completion job.
var tutorTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {},
	BookingStatusCancelled: {},
	BookingStatusCompleted: {},
}

// TransitionDecision is the outcome of CanTransition.
type TransitionDecision int

const (
	TransitionAllowed TransitionDecision = iota
	TransitionInvalidTarget
	TransitionForbidden
	TransitionInvalidState
)

// IsTutorTarget reports whether next is a status a tutor may request.
func IsTutorTarget(next BookingStatus) bool {
	return next == BookingStatusConfirmed || next == BookingStatusCancelled
}

// CanTransition decides whether actor may move booking to next.
// Checks run target, then relationship, then current state.
func CanTransition(actor *User, booking *Booking, next BookingStatus) TransitionDecision {
	if !IsTutorTarget(next) {
		return TransitionInvalidTarget
	}
	if actor == nil || booking == nil || actor.ID != booking.TutorID {
		return TransitionForbidden
	}
	for _, candidate := range tutorTransitions[booking.Status] {
		if candidate == next {
			return TransitionAllowed
		}
	}
	return TransitionInvalidState
}
