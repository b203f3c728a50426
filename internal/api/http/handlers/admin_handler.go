package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/skillbridge/skillbridge-api/internal/api/dto"
	"github.com/skillbridge/skillbridge-api/internal/api/response"
	"github.com/skillbridge/skillbridge-api/internal/auth"
	"github.com/skillbridge/skillbridge-api/internal/domain"
	"github.com/skillbridge/skillbridge-api/internal/service"
	apperrors "github.com/skillbridge/skillbridge-api/pkg/util/errorutil"
)

// AdminHandler exposes the moderation console.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// ListUsers GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	query := service.UserQuery{Search: queryString(c, "search"), Page: queryPage(c)}
	if v := queryString(c, "role"); v != nil {
		role := domain.Role(*v)
		query.Role = &role
	}
	if v := queryString(c, "status"); v != nil {
		status := domain.UserStatus(*v)
		query.Status = &status
	}
	users, err := h.admin.ListUsers(c.UserContext(), query)
	if err != nil {
		return err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i]))
	}
	return response.OK(c, out)
}

// UpdateUser PATCH /admin/users/:id.
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	requester, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateUserRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	user, err := h.admin.UpdateUser(c.UserContext(), requester, c.Params("id"), service.UserPatch{Role: req.Role, Status: req.Status})
	if err != nil {
		return err
	}
	return response.Write(c, fiber.StatusOK, dto.NewUserResponse(user), "User updated")
}

// ListBookings GET /admin/bookings.
func (h *AdminHandler) ListBookings(c *fiber.Ctx) error {
	var status *domain.BookingStatus
	if v := queryString(c, "status"); v != nil {
		s := domain.BookingStatus(*v)
		status = &s
	}
	bookings, err := h.admin.ListBookings(c.UserContext(), status, queryPage(c))
	if err != nil {
		return err
	}
	return response.OK(c, dto.NewBookingResponses(bookings))
}

// Stats GET /admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.admin.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return response.OK(c, stats)
}
