package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/skillbridge/skillbridge-api/internal/domain"
	"github.com/skillbridge/skillbridge-api/internal/observability"
	apperrors "github.com/skillbridge/skillbridge-api/pkg/util/errorutil"
)

func TestAdminUpdateUser(t *testing.T) {
	admin := newUser(domain.RoleAdmin)
	student := newUser(domain.RoleStudent)
	users := newFakeUserRepo(admin, student)
	svc := NewAdminService(AdminDependencies{UserRepo: users})

	banned := domain.UserStatusBanned
	tutor := domain.RoleTutor
	bogus := domain.Role("OWNER")

	tests := []struct {
		name      string
		requester *domain.User
		id        string
		patch     UserPatch
		code      string
	}{
		{name: "empty patch", requester: admin, id: student.ID, code: apperrors.CodeValidation},
		{name: "unknown role", requester: admin, id: student.ID, patch: UserPatch{Role: &bogus}, code: apperrors.CodeValidation},
		{name: "self change", requester: admin, id: admin.ID, patch: UserPatch{Status: &banned}, code: apperrors.CodeConflict},
		{name: "missing user", requester: admin, id: uuid.NewString(), patch: UserPatch{Status: &banned}, code: apperrors.CodeNotFound},
		{name: "non admin", requester: student, id: admin.ID, patch: UserPatch{Status: &banned}, code: apperrors.CodeForbidden},
		{name: "ban and promote", requester: admin, id: student.ID, patch: UserPatch{Status: &banned, Role: &tutor}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.UpdateUser(context.Background(), tc.requester, tc.id, tc.patch)
			if tc.code != "" {
				assertCode(t, err, tc.code)
				return
			}
			if err != nil {
				t.Fatalf("UpdateUser: %v", err)
			}
			if got.Status != domain.UserStatusBanned || got.Role != domain.RoleTutor {
				t.Fatalf("unexpected user %+v", got)
			}
		})
	}
}

func TestAdminListingsAndStats(t *testing.T) {
	admin := newUser(domain.RoleAdmin)
	student := newUser(domain.RoleStudent)
	tutor := newUser(domain.RoleTutor)
	users := newFakeUserRepo(admin, student, tutor)
	bookings := newFakeBookingRepo()
	reviews := &fakeReviewRepo{bookings: bookings}
	metrics := observability.NewMetrics()
	metrics.RecordRequest("/api/bookings", "GET", 200, 10*time.Millisecond)

	svc := NewAdminService(AdminDependencies{
		UserRepo:    users,
		BookingRepo: bookings,
		ReviewRepo:  reviews,
		Metrics:     metrics,
	})

	bookings.put(domain.Booking{StudentID: student.ID, TutorID: tutor.ID, DateTime: testNow, Duration: 1, Status: domain.BookingStatusPending})
	bookings.put(domain.Booking{StudentID: student.ID, TutorID: tutor.ID, DateTime: testNow, Duration: 1, Status: domain.BookingStatusCancelled})

	role := domain.RoleTutor
	listed, err := svc.ListUsers(context.Background(), UserQuery{Role: &role})
	if err != nil || len(listed) != 1 || listed[0].ID != tutor.ID {
		t.Fatalf("unexpected user listing %+v err=%v", listed, err)
	}

	status := domain.BookingStatusPending
	pending, err := svc.ListBookings(context.Background(), &status, Page{})
	if err != nil || len(pending) != 1 {
		t.Fatalf("unexpected booking listing %+v err=%v", pending, err)
	}

	invalid := domain.BookingStatus("DONE")
	_, err = svc.ListBookings(context.Background(), &invalid, Page{})
	assertCode(t, err, apperrors.CodeValidation)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.UsersByRole[domain.RoleStudent] != 1 || stats.BookingsByStatus[domain.BookingStatusCancelled] != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.HTTP.TotalRequests != 1 {
		t.Fatalf("expected http metrics snapshot, got %+v", stats.HTTP)
	}
}

func TestPageLimitOffset(t *testing.T) {
	tests := []struct {
		page          Page
		limit, offset int
	}{
		{page: Page{}, limit: 20, offset: 0},
		{page: Page{Page: 3, PageSize: 10}, limit: 10, offset: 20},
		{page: Page{Page: 2, PageSize: 500}, limit: 100, offset: 100},
	}
	for _, tc := range tests {
		limit, offset := tc.page.limitOffset()
		if limit != tc.limit || offset != tc.offset {
			t.Fatalf("%+v: got %d/%d", tc.page, limit, offset)
		}
	}
}
