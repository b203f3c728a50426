package dto

import (
	"time"

	"github.com/skillbridge/skillbridge-api/internal/domain"
)

// UpsertProfileRequest payload.
type UpsertProfileRequest struct {
	Bio         string   `json:"bio" validate:"max=2000"`
	Subjects    []string `json:"subjects" validate:"max=20,dive,required,max=60"`
	HourlyRate  *float64 `json:"hourlyRate" validate:"required,gte=0"`
	CategoryIDs []string `json:"categoryIds" validate:"max=20,dive,uuid"`
}

// AvailabilitySlotRequest is one weekly slot.
type AvailabilitySlotRequest struct {
	DayOfWeek *int   `json:"dayOfWeek" validate:"required,min=0,max=6"`
	StartTime string `json:"startTime" validate:"required,len=5"`
	EndTime   string `json:"endTime" validate:"required,len=5"`
}

// ReplaceAvailabilityRequest replaces the full weekly schedule.
type ReplaceAvailabilityRequest struct {
	Slots []AvailabilitySlotRequest `json:"slots" validate:"max=50,dive"`
}

// AvailabilityResponse is a stored slot.
type AvailabilityResponse struct {
	ID        string `json:"id"`
	DayOfWeek int    `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// ProfileResponse is a tutor profile.
type ProfileResponse struct {
	ID           string                 `json:"id"`
	UserID       string                 `json:"userId"`
	Bio          string                 `json:"bio"`
	Subjects     []string               `json:"subjects"`
	HourlyRate   float64                `json:"hourlyRate"`
	CategoryIDs  []string               `json:"categoryIds"`
	Availability []AvailabilityResponse `json:"availability"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

// TutorResponse is a tutor as shown in discovery.
type TutorResponse struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Email         string           `json:"email"`
	Profile       *ProfileResponse `json:"profile"`
	AverageRating float64          `json:"averageRating"`
	ReviewCount   int              `json:"reviewCount"`
}

// NewAvailabilityResponses maps slots.
func NewAvailabilityResponses(slots []domain.Availability) []AvailabilityResponse {
	out := make([]AvailabilityResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, AvailabilityResponse{ID: s.ID, DayOfWeek: s.DayOfWeek, StartTime: s.StartTime, EndTime: s.EndTime})
	}
	return out
}

// NewProfileResponse maps a profile, returning nil for nil.
func NewProfileResponse(p *domain.TutorProfile) *ProfileResponse {
	if p == nil {
		return nil
	}
	return &ProfileResponse{
		ID:           p.ID,
		UserID:       p.UserID,
		Bio:          p.Bio,
		Subjects:     nonNil(p.Subjects),
		HourlyRate:   p.HourlyRate,
		CategoryIDs:  nonNil(p.CategoryIDs),
		Availability: NewAvailabilityResponses(p.Availability),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// NewTutorResponse maps a listing.
func NewTutorResponse(l *domain.TutorListing) TutorResponse {
	return TutorResponse{
		ID:            l.User.ID,
		Name:          l.User.Name,
		Email:         l.User.Email,
		Profile:       NewProfileResponse(l.Profile),
		AverageRating: l.AverageRating,
		ReviewCount:   l.ReviewCount,
	}
}

// NewTutorResponses maps a slice.
func NewTutorResponses(listings []domain.TutorListing) []TutorResponse {
	out := make([]TutorResponse, 0, len(listings))
	for i := range listings {
		out = append(out, NewTutorResponse(&listings[i]))
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
