package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/skillbridge/skillbridge-api/internal/api/dto"
	"github.com/skillbridge/skillbridge-api/internal/api/response"
	"github.com/skillbridge/skillbridge-api/internal/auth"
	"github.com/skillbridge/skillbridge-api/internal/service"
	apperrors "github.com/skillbridge/skillbridge-api/pkg/util/errorutil"
)

// TutorsHandler serves tutor discovery and profile management.
type TutorsHandler struct {
	tutors  *service.TutorService
	reviews *service.ReviewService
}

// NewTutorsHandler constructs handler.
func NewTutorsHandler(tutors *service.TutorService, reviews *service.ReviewService) *TutorsHandler {
	return &TutorsHandler{tutors: tutors, reviews: reviews}
}

// List GET /tutors.
func (h *TutorsHandler) List(c *fiber.Ctx) error {
	minRate, err := queryFloat(c, "minRate")
	if err != nil {
		return err
	}
	maxRate, err := queryFloat(c, "maxRate")
	if err != nil {
		return err
	}
	listings, err := h.tutors.List(c.UserContext(), service.TutorQuery{
		Subject:    queryString(c, "subject"),
		CategoryID: queryString(c, "categoryId"),
		MinRate:    minRate,
		MaxRate:    maxRate,
		Search:     queryString(c, "search"),
		Page:       queryPage(c),
	})
	if err != nil {
		return err
	}
	return response.OK(c, dto.NewTutorResponses(listings))
}

// Get GET /tutors/:id.
func (h *TutorsHandler) Get(c *fiber.Ctx) error {
	listing, err := h.tutors.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return response.OK(c, dto.NewTutorResponse(listing))
}

// Reviews GET /tutors/:id/reviews.
func (h *TutorsHandler) Reviews(c *fiber.Ctx) error {
	result, err := h.reviews.ListForTutor(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return response.OK(c, dto.TutorReviewsResponse{
		Reviews:       dto.NewReviewResponses(result.Reviews),
		AverageRating: result.AverageRating,
		Count:         result.Count,
	})
}

// UpsertProfile PUT /tutors/profile.
func (h *TutorsHandler) UpsertProfile(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpsertProfileRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	profile, err := h.tutors.UpsertProfile(c.UserContext(), user, service.ProfileInput{
		Bio:         req.Bio,
		Subjects:    req.Subjects,
		HourlyRate:  req.HourlyRate,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		return err
	}
	return response.Write(c, fiber.StatusOK, dto.NewProfileResponse(profile), "Profile saved")
}

// ReplaceAvailability PUT /tutors/availability.
func (h *TutorsHandler) ReplaceAvailability(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ReplaceAvailabilityRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	slots := make([]service.AvailabilityInput, 0, len(req.Slots))
	for _, s := range req.Slots {
		slots = append(slots, service.AvailabilityInput{
			DayOfWeek: *s.DayOfWeek,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
		})
	}
	saved, err := h.tutors.ReplaceAvailability(c.UserContext(), user, slots)
	if err != nil {
		return err
	}
	return response.Write(c, fiber.StatusOK, dto.NewAvailabilityResponses(saved), "Availability updated")
}
