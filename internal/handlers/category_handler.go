package handlers

import (
	"whutmovie/internal/middleware"
	"whutmovie/internal/models"
	"whutmovie/internal/repository"
	"whutmovie/internal/services"
	"whutmovie/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type PickRequest struct {
	MovieID string `json:"movieId" validate:"required"`
	Rank    int    `json:"rank" validate:"gte=1,lte=3" example:"1"`
}

type CategoryRequest struct {
	Title             string        `json:"title" validate:"required,max=255" example:"Time Is a Lie"`
	Description       string        `json:"description" validate:"required"`
	Picks             []PickRequest `json:"picks" validate:"max=3,dive"`
	HonorableMentions []string      `json:"honorableMentions" validate:"dive,required"`
}

type CategoryUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description"`
}

type AssignRequest struct {
	MovieID            string  `json:"movieId" validate:"required"`
	Rank               *int    `json:"rank" example:"1"`
	IsHonorableMention bool    `json:"isHonorableMention"`
	AngleLabel         *string `json:"angleLabel" validate:"omitempty,max=255" example:"Rom-com twist"`
}

type AngleLabelRequest struct {
	AngleLabel *string `json:"angleLabel" validate:"omitempty,max=255"`
}

// CategoryListMeta adds the admin-only incomplete list to the pagination
// block.
type CategoryListMeta struct {
	utils.PaginationMeta
	IncompleteCategories []models.CategorySketch `json:"incompleteCategories,omitempty"`
}

type CategoryHandler struct {
	service   services.CategoryService
	dashboard services.DashboardService
	logger    *logrus.Logger
}

func NewCategoryHandler(service services.CategoryService, dashboard services.DashboardService, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{
		service:   service,
		dashboard: dashboard,
		logger:    logger,
	}
}

// ListCategories godoc
// @Summary List categories
// @Description Each category reports isComplete. Signed-in admins also get meta.incompleteCategories.
// @Tags categories
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 100)" default(50)
// @Param genre query string false "Genre slug; keeps categories with a ranked pick in it"
// @Param includeAssignments query bool false "Embed ordered assignments"
// @Success 200 {object} utils.SuccessBody
// @Router /categories [get]
func (h *CategoryHandler) ListCategories(c *fiber.Ctx) error {
	page, pageSize := pageParams(c, utils.DefaultCatalogPageSize)

	categories, total, err := h.service.List(c.Context(), repository.CategoryFilter{
		Page:               repository.Page{Number: page, Size: pageSize},
		Genre:              c.Query("genre"),
		IncludeAssignments: c.QueryBool("includeAssignments"),
	})
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list categories")
	}

	meta := CategoryListMeta{PaginationMeta: utils.CreatePaginationMeta(page, pageSize, total)}
	if middleware.CurrentPrincipal(c) != nil {
		incomplete, err := h.dashboard.IncompleteCategories(c.Context())
		if err != nil {
			return respondError(c, h.logger, err, "Failed to list incomplete categories")
		}
		meta.IncompleteCategories = incomplete
	}
	return utils.SuccessWithMetaResponse(c, fiber.StatusOK, categories, meta)
}

// GetCategory godoc
// @Summary Get a category
// @Description Assignments come ranked 1 to 3, then honorable mentions by title.
// @Tags categories
// @Produce json
// @Param id path string true "Category id or slug"
// @Success 200 {object} utils.SuccessBody
// @Failure 404 {object} utils.ErrorBody
// @Router /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *fiber.Ctx) error {
	category, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to get category")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, category)
}

// CreateCategory godoc
// @Summary Create a category
// @Description Optional picks and honorable mentions are written in the same transaction.
// @Tags categories
// @Accept json
// @Produce json
// @Param category body CategoryRequest true "Category"
// @Success 201 {object} utils.SuccessBody
// @Failure 400 {object} utils.ErrorBody
// @Failure 404 {object} utils.ErrorBody
// @Failure 409 {object} utils.ErrorBody
// @Router /categories [post]
func (h *CategoryHandler) CreateCategory(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return respondError(c, h.logger, err, "Invalid category")
	}

	picks := make([]services.PickInput, len(req.Picks))
	for i, p := range req.Picks {
		picks[i] = services.PickInput{MovieID: p.MovieID, Rank: p.Rank}
	}

	category, err := h.service.Create(c.Context(), services.CategoryInput{
		Title:             req.Title,
		Description:       req.Description,
		Picks:             picks,
		HonorableMentions: req.HonorableMentions,
	})
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create category")
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, category)
}

// UpdateCategory godoc
// @Summary Update a category
// @Description Partial update. A new title regenerates the slug.
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "Category id or slug"
// @Param category body CategoryUpdateRequest true "Fields to change"
// @Success 200 {object} utils.SuccessBody
// @Failure 400 {object} utils.ErrorBody
// @Failure 404 {object} utils.ErrorBody
// @Failure 409 {object} utils.ErrorBody
// @Router /categories/{id} [patch]
func (h *CategoryHandler) UpdateCategory(c *fiber.Ctx) error {
	var req CategoryUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return respondError(c, h.logger, err, "Invalid category")
	}

	category, err := h.service.Update(c.Context(), c.Params("id"), services.CategoryUpdateInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update category")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, category)
}

// DeleteCategory godoc
// @Summary Delete a category
// @Tags categories
// @Produce json
// @Param id path string true "Category id or slug"
// @Success 200 {object} utils.SuccessBody
// @Failure 404 {object} utils.ErrorBody
// @Router /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return respondError(c, h.logger, err, "Failed to delete category")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

// AssignMovie godoc
// @Summary Assign a movie to a category
// @Description A ranked pick takes its rank from whichever movie held it. The movie's previous slot in the category is replaced.
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "Category id or slug"
// @Param assignment body AssignRequest true "Assignment"
// @Success 200 {object} utils.SuccessBody
// @Failure 400 {object} utils.ErrorBody
// @Failure 404 {object} utils.ErrorBody
// @Failure 409 {object} utils.ErrorBody
// @Router /categories/{id}/assignments [put]
func (h *CategoryHandler) AssignMovie(c *fiber.Ctx) error {
	var req AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return respondError(c, h.logger, err, "Invalid assignment")
	}

	assignment, err := h.service.Assign(c.Context(), c.Params("id"), services.AssignInput{
		MovieID:            req.MovieID,
		Rank:               req.Rank,
		IsHonorableMention: req.IsHonorableMention,
		AngleLabel:         req.AngleLabel,
	})
	if err != nil {
		return respondError(c, h.logger, err, "Failed to assign movie")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, assignment)
}

// UpdateAssignment godoc
// @Summary Set the angle label of an assignment
// @Description An empty or missing label clears it.
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "Category id or slug"
// @Param movieId path string true "Movie id"
// @Param label body AngleLabelRequest true "Label"
// @Success 200 {object} utils.SuccessBody
// @Failure 404 {object} utils.ErrorBody
// @Router /categories/{id}/assignments/{movieId} [patch]
func (h *CategoryHandler) UpdateAssignment(c *fiber.Ctx) error {
	var req AngleLabelRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return respondError(c, h.logger, err, "Invalid angle label")
	}

	assignment, err := h.service.UpdateAngleLabel(c.Context(), c.Params("id"), c.Params("movieId"), req.AngleLabel)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update assignment")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, assignment)
}

// RemoveAssignment godoc
// @Summary Remove a movie from a category
// @Tags categories
// @Produce json
// @Param id path string true "Category id or slug"
// @Param movieId path string true "Movie id"
// @Success 200 {object} utils.SuccessBody
// @Failure 404 {object} utils.ErrorBody
// @Router /categories/{id}/assignments/{movieId} [delete]
func (h *CategoryHandler) RemoveAssignment(c *fiber.Ctx) error {
	if err := h.service.RemoveAssignment(c.Context(), c.Params("id"), c.Params("movieId")); err != nil {
		return respondError(c, h.logger, err, "Failed to remove assignment")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"deleted": true})
}
