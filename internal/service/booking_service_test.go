package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/skillbridge/skillbridge-api/internal/domain"
	"github.com/skillbridge/skillbridge-api/internal/events"
	apperrors "github.com/skillbridge/skillbridge-api/pkg/util/errorutil"
)

type bookingFixture struct {
	svc        *BookingService
	users      *fakeUserRepo
	bookings   *fakeBookingRepo
	dispatcher *recordingDispatcher
	student    *domain.User
	tutor      *domain.User
	admin      *domain.User
}

func newBookingFixture() *bookingFixture {
	student := newUser(domain.RoleStudent)
	tutor := newUser(domain.RoleTutor)
	admin := newUser(domain.RoleAdmin)
	users := newFakeUserRepo(student, tutor, admin)
	bookings := newFakeBookingRepo()
	dispatcher := &recordingDispatcher{}
	svc := NewBookingService(BookingDependencies{
		BookingRepo: bookings,
		UserRepo:    users,
		Dispatcher:  dispatcher,
		Clock:       fixedClock{now: testNow},
	})
	return &bookingFixture{
		svc:        svc,
		users:      users,
		bookings:   bookings,
		dispatcher: dispatcher,
		student:    student,
		tutor:      tutor,
		admin:      admin,
	}
}

func float(v float64) *float64 { return &v }

func tomorrow() string { return testNow.Add(24 * time.Hour).Format(time.RFC3339) }

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !apperrors.HasCode(err, code) {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

func TestBookingCreateSuccess(t *testing.T) {
	f := newBookingFixture()

	booking, err := f.svc.Create(context.Background(), f.student, BookingCreateInput{
		TutorID:  f.tutor.ID,
		DateTime: tomorrow(),
		Duration: float64(1),
		Notes:    "  algebra  ",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if booking.Status != domain.BookingStatusPending {
		t.Fatalf("expected PENDING, got %s", booking.Status)
	}
	if booking.StudentID != f.student.ID {
		t.Fatalf("expected student id %s, got %s", f.student.ID, booking.StudentID)
	}
	if booking.Notes != "algebra" {
		t.Fatalf("expected trimmed notes, got %q", booking.Notes)
	}
	if got := f.dispatcher.types(); len(got) != 1 || got[0] != events.EventBookingCreated {
		t.Fatalf("expected one booking_created event, got %v", got)
	}
}

func TestBookingCreateValidation(t *testing.T) {
	past := testNow.Add(-time.Hour).Format(time.RFC3339)

	tests := []struct {
		name    string
		input   func(f *bookingFixture) BookingCreateInput
		code    string
		message string
	}{
		{
			name: "missing fields listed in order",
			input: func(f *bookingFixture) BookingCreateInput {
				return BookingCreateInput{Duration: float64(1)}
			},
			code:    apperrors.CodeValidation,
			message: "Missing required fields: tutorId, dateTime",
		},
		{
			name: "unparseable date",
			input: func(f *bookingFixture) BookingCreateInput {
				return BookingCreateInput{TutorID: f.tutor.ID, DateTime: "next tuesday", Duration: float64(1)}
			},
			code:    apperrors.CodeValidation,
			message: "Invalid dateTime format",
		},
		{
			name: "past date",
			input: func(f *bookingFixture) BookingCreateInput {
				return BookingCreateInput{TutorID: f.tutor.ID, DateTime: past, Duration: float64(1)}
			},
			code:    apperrors.CodeValidation,
			message: "Booking dateTime must be in the future",
		},
		{
			name: "past date wins over bad duration and unknown tutor",
			input: func(f *bookingFixture) BookingCreateInput {
				return BookingCreateInput{TutorID: uuid.NewString(), DateTime: past, Duration: float64(-3)}
			},
			code:    apperrors.CodeValidation,
			message: "Booking dateTime must be in the future",
		},
		{
			name: "now is not in the future",
			input: func(f *bookingFixture) BookingCreateInput {
				return BookingCreateInput{TutorID: f.tutor.ID, DateTime: testNow.Format(time.RFC3339), Duration: float64(1)}
			},
			code:    apperrors.CodeValidation,
			message: "Booking dateTime must be in the future",
		},
		{
			name: "zero duration",
			input: func(f *bookingFixture) BookingCreateInput {
				return BookingCreateInput{TutorID: f.tutor.ID, DateTime: tomorrow(), Duration: float64(0)}
			},
			code:    apperrors.CodeValidation,
			message: "Duration must be greater than 0 and at most 24 hours",
		},
		{
			name: "duration over a day",
			input: func(f *bookingFixture) BookingCreateInput {
				return BookingCreateInput{TutorID: f.tutor.ID, DateTime: tomorrow(), Duration: float64(24.5)}
			},
			code:    apperrors.CodeValidation,
			message: "Duration must be greater than 0 and at most 24 hours",
		},
		{
			name: "non-numeric duration",
			input: func(f *bookingFixture) BookingCreateInput {
				return BookingCreateInput{TutorID: f.tutor.ID, DateTime: tomorrow(), Duration: "one"}
			},
			code:    apperrors.CodeValidation,
			message: "Duration must be greater than 0 and at most 24 hours",
		},
		{
			name: "non-numeric duration with missing tutor",
			input: func(f *bookingFixture) BookingCreateInput {
				return BookingCreateInput{DateTime: tomorrow(), Duration: "one"}
			},
			code:    apperrors.CodeValidation,
			message: "Missing required fields: tutorId",
		},
		{
			name: "tutor id is a student",
			input: func(f *bookingFixture) BookingCreateInput {
				return BookingCreateInput{TutorID: f.student.ID, DateTime: tomorrow(), Duration: float64(1)}
			},
			code:    apperrors.CodeNotFound,
			message: "Tutor not found",
		},
		{
			name: "tutor id is an admin",
			input: func(f *bookingFixture) BookingCreateInput {
				return BookingCreateInput{TutorID: f.admin.ID, DateTime: tomorrow(), Duration: float64(1)}
			},
			code:    apperrors.CodeNotFound,
			message: "Tutor not found",
		},
		{
			name: "tutor id is not a uuid",
			input: func(f *bookingFixture) BookingCreateInput {
				return BookingCreateInput{TutorID: "T1", DateTime: tomorrow(), Duration: float64(1)}
			},
			code:    apperrors.CodeNotFound,
			message: "Tutor not found",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newBookingFixture()
			_, err := f.svc.Create(context.Background(), f.student, tc.input(f))
			assertCode(t, err, tc.code)
			if de := apperrors.ToDomainError(err); de.Message != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, de.Message)
			}
			if len(f.bookings.bookings) != 0 {
				t.Fatalf("expected no booking persisted")
			}
		})
	}
}

func TestBookingCreateRequiresStudent(t *testing.T) {
	f := newBookingFixture()
	for _, requester := range []*domain.User{f.tutor, f.admin} {
		_, err := f.svc.Create(context.Background(), requester, BookingCreateInput{
			TutorID:  f.tutor.ID,
			DateTime: tomorrow(),
			Duration: float64(1),
		})
		assertCode(t, err, apperrors.CodeForbidden)
	}
}

func TestBookingRoundTrip(t *testing.T) {
	f := newBookingFixture()
	when := testNow.Add(48 * time.Hour).Truncate(time.Second)

	created, err := f.svc.Create(context.Background(), f.student, BookingCreateInput{
		TutorID:  f.tutor.ID,
		DateTime: when.Format(time.RFC3339),
		Duration: float64(1.5),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	fetched, err := f.svc.GetByID(context.Background(), f.student, created.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if fetched.TutorID != f.tutor.ID {
		t.Fatalf("tutor id mismatch: %s", fetched.TutorID)
	}
	if !fetched.DateTime.Truncate(time.Second).Equal(when) {
		t.Fatalf("dateTime mismatch: %s vs %s", fetched.DateTime, when)
	}
	if fetched.Duration != 1.5 {
		t.Fatalf("duration mismatch: %v", fetched.Duration)
	}
}

func TestBookingGetByIDAccess(t *testing.T) {
	f := newBookingFixture()
	booking := f.bookings.put(domain.Booking{
		StudentID: f.student.ID,
		TutorID:   f.tutor.ID,
		DateTime:  testNow.Add(time.Hour),
		Duration:  1,
		Status:    domain.BookingStatusPending,
	})
	outsider := newUser(domain.RoleStudent)

	tests := []struct {
		name      string
		requester *domain.User
		id        string
		code      string
	}{
		{name: "student", requester: f.student, id: booking.ID},
		{name: "tutor", requester: f.tutor, id: booking.ID},
		{name: "third party", requester: outsider, id: booking.ID, code: apperrors.CodeForbidden},
		{name: "admin has no override", requester: f.admin, id: booking.ID, code: apperrors.CodeForbidden},
		{name: "unknown id", requester: f.student, id: uuid.NewString(), code: apperrors.CodeNotFound},
		{name: "malformed id", requester: f.student, id: "B1", code: apperrors.CodeNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.svc.GetByID(context.Background(), tc.requester, tc.id)
			if tc.code != "" {
				assertCode(t, err, tc.code)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != booking.ID {
				t.Fatalf("unexpected booking %s", got.ID)
			}
		})
	}
}

func TestBookingListByRole(t *testing.T) {
	f := newBookingFixture()
	otherTutor := newUser(domain.RoleTutor)
	f.users.users[otherTutor.ID] = otherTutor

	early := f.bookings.put(domain.Booking{StudentID: f.student.ID, TutorID: f.tutor.ID, DateTime: testNow.Add(time.Hour), Duration: 1, Status: domain.BookingStatusPending})
	late := f.bookings.put(domain.Booking{StudentID: f.student.ID, TutorID: otherTutor.ID, DateTime: testNow.Add(72 * time.Hour), Duration: 1, Status: domain.BookingStatusPending})

	studentList, err := f.svc.List(context.Background(), f.student)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(studentList) != 2 || studentList[0].ID != late.ID || studentList[1].ID != early.ID {
		t.Fatalf("expected student bookings newest first, got %+v", studentList)
	}

	tutorList, err := f.svc.List(context.Background(), f.tutor)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(tutorList) != 1 || tutorList[0].ID != early.ID {
		t.Fatalf("expected only the tutor's booking, got %+v", tutorList)
	}

	_, err = f.svc.List(context.Background(), f.admin)
	assertCode(t, err, apperrors.CodeForbidden)
}

func TestBookingUpdateStatus(t *testing.T) {
	f := newBookingFixture()
	booking := f.bookings.put(domain.Booking{
		StudentID: f.student.ID,
		TutorID:   f.tutor.ID,
		DateTime:  testNow.Add(time.Hour),
		Duration:  1,
		Status:    domain.BookingStatusPending,
	})

	_, err := f.svc.UpdateStatus(context.Background(), f.student, booking.ID, domain.BookingStatusConfirmed)
	assertCode(t, err, apperrors.CodeForbidden)

	otherTutor := newUser(domain.RoleTutor)
	_, err = f.svc.UpdateStatus(context.Background(), otherTutor, booking.ID, domain.BookingStatusConfirmed)
	assertCode(t, err, apperrors.CodeForbidden)

	_, err = f.svc.UpdateStatus(context.Background(), f.tutor, booking.ID, domain.BookingStatusCompleted)
	assertCode(t, err, apperrors.CodeValidation)

	updated, err := f.svc.UpdateStatus(context.Background(), f.tutor, booking.ID, domain.BookingStatusConfirmed)
	if err != nil {
		t.Fatalf("first update failed: %v", err)
	}
	if updated.Status != domain.BookingStatusConfirmed {
		t.Fatalf("expected CONFIRMED, got %s", updated.Status)
	}

	_, err = f.svc.UpdateStatus(context.Background(), f.tutor, booking.ID, domain.BookingStatusConfirmed)
	assertCode(t, err, apperrors.CodeConflict)

	_, err = f.svc.UpdateStatus(context.Background(), f.tutor, booking.ID, domain.BookingStatusCancelled)
	assertCode(t, err, apperrors.CodeConflict)

	if got := f.dispatcher.types(); len(got) != 1 || got[0] != events.EventBookingStatusChanged {
		t.Fatalf("expected a single status change event, got %v", got)
	}
}

func TestBookingUpdateStatusLosesRace(t *testing.T) {
	f := newBookingFixture()
	booking := f.bookings.put(domain.Booking{
		StudentID: f.student.ID,
		TutorID:   f.tutor.ID,
		DateTime:  testNow.Add(time.Hour),
		Duration:  1,
		Status:    domain.BookingStatusPending,
	})
	f.bookings.beforeUpdate = func(b *domain.Booking) {
		b.Status = domain.BookingStatusCancelled
	}

	_, err := f.svc.UpdateStatus(context.Background(), f.tutor, booking.ID, domain.BookingStatusConfirmed)
	assertCode(t, err, apperrors.CodeConflict)

	stored, _ := f.bookings.GetByID(context.Background(), booking.ID)
	if stored.Status != domain.BookingStatusCancelled {
		t.Fatalf("expected concurrent write to stand, got %s", stored.Status)
	}
}

func TestParseBookingTimeLayouts(t *testing.T) {
	for _, raw := range []string{"2025-03-11T09:30:00Z", "2025-03-11T11:30:00+02:00", "2025-03-11T09:30:00", "2025-03-11T09:30"} {
		got, err := parseBookingTime(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if !got.UTC().Equal(time.Date(2025, 3, 11, 9, 30, 0, 0, time.UTC)) {
			t.Fatalf("parse %q: got %s", raw, got)
		}
	}
	if _, err := parseBookingTime("11/03/2025"); err == nil {
		t.Fatalf("expected error for unsupported layout")
	}
}
