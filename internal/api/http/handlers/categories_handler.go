package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/skillbridge/skillbridge-api/internal/api/dto"
	"github.com/skillbridge/skillbridge-api/internal/api/response"
	"github.com/skillbridge/skillbridge-api/internal/service"
)

// CategoriesHandler manages discovery categories.
type CategoriesHandler struct {
	categories *service.CategoryService
}

// NewCategoriesHandler constructs handler.
func NewCategoriesHandler(categories *service.CategoryService) *CategoriesHandler {
	return &CategoriesHandler{categories: categories}
}

// List GET /categories.
func (h *CategoriesHandler) List(c *fiber.Ctx) error {
	categories, err := h.categories.List(c.UserContext())
	if err != nil {
		return err
	}
	return response.OK(c, dto.NewCategoryResponses(categories))
}

// Create POST /admin/categories.
func (h *CategoriesHandler) Create(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	category, err := h.categories.Create(c.UserContext(), service.CategoryInput{Name: req.Name, Description: req.Description})
	if err != nil {
		return err
	}
	return response.Created(c, dto.NewCategoryResponse(category), "Category created")
}

// Update PUT /admin/categories/:id.
func (h *CategoriesHandler) Update(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	category, err := h.categories.Update(c.UserContext(), c.Params("id"), service.CategoryInput{Name: req.Name, Description: req.Description})
	if err != nil {
		return err
	}
	return response.Write(c, fiber.StatusOK, dto.NewCategoryResponse(category), "Category updated")
}

// Delete DELETE /admin/categories/:id.
func (h *CategoriesHandler) Delete(c *fiber.Ctx) error {
	if err := h.categories.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return response.Write(c, fiber.StatusOK, nil, "Category deleted")
}
