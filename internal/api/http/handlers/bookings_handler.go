package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/skillbridge/skillbridge-api/internal/api/dto"
	"github.com/skillbridge/skillbridge-api/internal/api/response"
	"github.com/skillbridge/skillbridge-api/internal/auth"
	"github.com/skillbridge/skillbridge-api/internal/service"
	apperrors "github.com/skillbridge/skillbridge-api/pkg/util/errorutil"
)

// BookingsHandler manages booking endpoints.
type BookingsHandler struct {
	bookings *service.BookingService
	reviews  *service.ReviewService
}

// NewBookingsHandler constructs handler.
func NewBookingsHandler(bookings *service.BookingService, reviews *service.ReviewService) *BookingsHandler {
	return &BookingsHandler{bookings: bookings, reviews: reviews}
}

// Create POST /bookings.
func (h *BookingsHandler) Create(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.bookings.CanCreate(user); err != nil {
		return err
	}
	var req dto.CreateBookingRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	booking, err := h.bookings.Create(c.UserContext(), user, service.BookingCreateInput{
		TutorID:  req.TutorID,
		DateTime: req.DateTime,
		Duration: req.Duration,
		Notes:    req.Notes,
	})
	if err != nil {
		return err
	}
	return response.Created(c, dto.NewBookingResponse(booking), "Booking created")
}

// List GET /bookings.
func (h *BookingsHandler) List(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	bookings, err := h.bookings.List(c.UserContext(), user)
	if err != nil {
		return err
	}
	return response.OK(c, dto.NewBookingResponses(bookings))
}

// Get GET /bookings/:id.
func (h *BookingsHandler) Get(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	booking, err := h.bookings.GetByID(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return response.OK(c, dto.NewBookingResponse(booking))
}

// UpdateStatus PATCH /bookings/:id/status.
func (h *BookingsHandler) UpdateStatus(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateBookingStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	booking, err := h.bookings.UpdateStatus(c.UserContext(), user, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return response.Write(c, fiber.StatusOK, dto.NewBookingResponse(booking), "Booking "+string(booking.Status))
}

// CreateReview POST /bookings/:id/reviews.
func (h *BookingsHandler) CreateReview(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateReviewRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	review, err := h.reviews.Create(c.UserContext(), user, c.Params("id"), service.ReviewCreateInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		return err
	}
	return response.Created(c, dto.NewReviewResponse(review), "Review submitted")
}
