package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/skillbridge/skillbridge-api/internal/domain"
	"github.com/skillbridge/skillbridge-api/internal/events"
	"github.com/skillbridge/skillbridge-api/internal/persistence"
	"github.com/skillbridge/skillbridge-api/internal/repository"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newUser(role domain.Role) *domain.User {
	return &domain.User{
		ID:     uuid.NewString(),
		Name:   strings.ToLower(string(role)) + " user",
		Email:  uuid.NewString()[:8] + "@example.com",
		Role:   role,
		Status: domain.UserStatusActive,
	}
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*domain.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = testNow
	user.UpdatedAt = testNow
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByIDAndRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role != role {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (r *fakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.User{}
	for _, u := range r.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Status != nil && u.Status != *filter.Status {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *fakeUserRepo) CountByRole(_ context.Context) (map[domain.Role]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[domain.Role]int64{}
	for _, u := range r.users {
		counts[u.Role]++
	}
	return counts, nil
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*domain.Booking
	// beforeUpdate runs inside UpdateStatus before the status check.
	beforeUpdate func(b *domain.Booking)
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[string]*domain.Booking{}}
}

func (r *fakeBookingRepo) Create(_ context.Context, booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking.ID = uuid.NewString()
	booking.CreatedAt = testNow
	booking.UpdatedAt = testNow
	cp := *booking
	r.bookings[booking.ID] = &cp
	return nil
}

func (r *fakeBookingRepo) put(b domain.Booking) *domain.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	r.bookings[b.ID] = &b
	cp := b
	return &cp
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) filter(keep func(*domain.Booking) bool) []domain.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Booking{}
	for _, b := range r.bookings {
		if keep(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateTime.After(out[j].DateTime) })
	return out
}

func (r *fakeBookingRepo) ListByStudent(_ context.Context, studentID string) ([]domain.Booking, error) {
	return r.filter(func(b *domain.Booking) bool { return b.StudentID == studentID }), nil
}

func (r *fakeBookingRepo) ListByTutor(_ context.Context, tutorID string) ([]domain.Booking, error) {
	return r.filter(func(b *domain.Booking) bool { return b.TutorID == tutorID }), nil
}

func (r *fakeBookingRepo) List(_ context.Context, filter repository.BookingFilter) ([]domain.Booking, error) {
	return r.filter(func(b *domain.Booking) bool {
		if len(filter.Statuses) == 0 {
			return true
		}
		for _, s := range filter.Statuses {
			if b.Status == s {
				return true
			}
		}
		return false
	}), nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, id string, from, to domain.BookingStatus) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if r.beforeUpdate != nil {
		r.beforeUpdate(b)
	}
	if b.Status != from {
		return nil, repository.ErrStatusChanged
	}
	b.Status = to
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) CompleteElapsed(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bookings {
		if b.Status == domain.BookingStatusConfirmed && !b.EndsAt().After(now) {
			b.Status = domain.BookingStatusCompleted
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[domain.BookingStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[domain.BookingStatus]int64{}
	for _, b := range r.bookings {
		counts[b.Status]++
	}
	return counts, nil
}

type fakeReviewRepo struct {
	mu       sync.Mutex
	reviews  []domain.Review
	bookings *fakeBookingRepo
	// countOverride hides existing reviews from CountByBooking to simulate a race.
	countOverride *int
}

func (r *fakeReviewRepo) Create(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.BookingID == review.BookingID {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	review.ID = uuid.NewString()
	review.CreatedAt = testNow
	r.reviews = append(r.reviews, *review)
	return nil
}

func (r *fakeReviewRepo) CountByBooking(_ context.Context, bookingID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countOverride != nil {
		return *r.countOverride, nil
	}
	n := 0
	for _, existing := range r.reviews {
		if existing.BookingID == bookingID {
			n++
		}
	}
	return n, nil
}

func (r *fakeReviewRepo) ListByTutor(ctx context.Context, tutorID string) ([]domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Review{}
	for _, review := range r.reviews {
		b, err := r.bookings.GetByID(ctx, review.BookingID)
		if err == nil && b.TutorID == tutorID {
			out = append(out, review)
		}
	}
	return out, nil
}

func (r *fakeReviewRepo) SummaryByTutors(ctx context.Context, tutorIDs []string) (map[string]repository.RatingSummary, error) {
	out := map[string]repository.RatingSummary{}
	for _, id := range tutorIDs {
		reviews, _ := r.ListByTutor(ctx, id)
		if len(reviews) == 0 {
			continue
		}
		total := 0
		for _, rv := range reviews {
			total += rv.Rating
		}
		out[id] = repository.RatingSummary{Average: float64(total) / float64(len(reviews)), Count: len(reviews)}
	}
	return out, nil
}

func (r *fakeReviewRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.reviews)), nil
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories map[string]*domain.Category
	listCalls  int
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: map[string]*domain.Category{}}
}

func (r *fakeCategoryRepo) nameTaken(name, exceptID string) bool {
	for id, c := range r.categories {
		if id != exceptID && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func (r *fakeCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTaken(category.Name, "") {
		return &pgconn.PgError{Code: "23505"}
	}
	category.ID = uuid.NewString()
	cp := *category
	r.categories[category.ID] = &cp
	return nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[category.ID]; !ok {
		return pgx.ErrNoRows
	}
	if r.nameTaken(category.Name, category.ID) {
		return &pgconn.PgError{Code: "23505"}
	}
	cp := *category
	r.categories[category.ID] = &cp
	return nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.categories, id)
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	out := []domain.Category{}
	for _, c := range r.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*domain.TutorProfile
	users    *fakeUserRepo
}

func newFakeProfileRepo(users *fakeUserRepo) *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[string]*domain.TutorProfile{}, users: users}
}

func (r *fakeProfileRepo) Upsert(_ context.Context, profile *domain.TutorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.profiles[profile.UserID]; ok {
		profile.ID = existing.ID
		profile.Availability = existing.Availability
	} else {
		profile.ID = uuid.NewString()
	}
	cp := *profile
	r.profiles[profile.UserID] = &cp
	return nil
}

func (r *fakeProfileRepo) GetByUserID(_ context.Context, userID string) (*domain.TutorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) ReplaceAvailability(_ context.Context, profileID string, slots []domain.Availability) ([]domain.Availability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.ID != profileID {
			continue
		}
		saved := make([]domain.Availability, 0, len(slots))
		for _, s := range slots {
			s.ID = uuid.NewString()
			s.ProfileID = profileID
			saved = append(saved, s)
		}
		p.Availability = saved
		return saved, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeProfileRepo) ListTutors(ctx context.Context, filter repository.TutorFilter) ([]domain.TutorListing, error) {
	role := domain.RoleTutor
	tutors, _ := r.users.List(ctx, repository.UserFilter{Role: &role})
	out := []domain.TutorListing{}
	for i := range tutors {
		listing := domain.TutorListing{User: tutors[i].Summary()}
		if p, err := r.GetByUserID(ctx, tutors[i].ID); err == nil {
			listing.Profile = p
		}
		if filter.MinRate != nil && (listing.Profile == nil || listing.Profile.HourlyRate < *filter.MinRate) {
			continue
		}
		if filter.MaxRate != nil && (listing.Profile == nil || listing.Profile.HourlyRate > *filter.MaxRate) {
			continue
		}
		out = append(out, listing)
	}
	return out, nil
}

type memoryCache struct {
	mu     sync.Mutex
	data   map[string]any
	getErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]any{}}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return c.getErr
	}
	v, ok := c.data[key]
	if !ok {
		return persistence.ErrCacheMiss
	}
	if out, ok := dest.(*[]domain.Category); ok {
		*out = append([]domain.Category(nil), v.([]domain.Category)...)
	}
	return nil
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}
