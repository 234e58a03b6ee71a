package handlers

import (
	"whutmovie/internal/repository"
	"whutmovie/internal/services"
	"whutmovie/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type GenreRequest struct {
	Name string `json:"name" validate:"required,max=100" example:"Sci-Fi"`
	Slug string `json:"slug,omitempty" validate:"omitempty,max=100"`
}

type GenreHandler struct {
	service services.GenreService
	logger  *logrus.Logger
}

func NewGenreHandler(service services.GenreService, logger *logrus.Logger) *GenreHandler {
	return &GenreHandler{service: service, logger: logger}
}

// ListGenres godoc
// @Summary List genres
// @Tags genres
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 100)" default(50)
// @Param includeMovieCount query bool false "Attach movieCount to each genre"
// @Success 200 {object} utils.SuccessBody
// @Router /genres [get]
func (h *GenreHandler) ListGenres(c *fiber.Ctx) error {
	page, pageSize := pageParams(c, utils.DefaultCatalogPageSize)

	genres, total, err := h.service.List(c.Context(), repository.Page{Number: page, Size: pageSize}, c.QueryBool("includeMovieCount"))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list genres")
	}
	return utils.SuccessWithMetaResponse(c, fiber.StatusOK, genres, utils.CreatePaginationMeta(page, pageSize, total))
}

// GetGenre godoc
// @Summary Get a genre
// @Tags genres
// @Produce json
// @Param id path string true "Genre id or slug"
// @Success 200 {object} utils.SuccessBody
// @Failure 404 {object} utils.ErrorBody
// @Router /genres/{id} [get]
func (h *GenreHandler) GetGenre(c *fiber.Ctx) error {
	genre, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to get genre")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, genre)
}

// CreateGenre godoc
// @Summary Create a genre
// @Tags genres
// @Accept json
// @Produce json
// @Param genre body GenreRequest true "Genre"
// @Success 201 {object} utils.SuccessBody
// @Failure 400 {object} utils.ErrorBody
// @Failure 409 {object} utils.ErrorBody
// @Router /genres [post]
func (h *GenreHandler) CreateGenre(c *fiber.Ctx) error {
	var req GenreRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return respondError(c, h.logger, err, "Invalid genre")
	}

	genre, err := h.service.Create(c.Context(), services.GenreInput{Name: req.Name, Slug: req.Slug})
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create genre")
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, genre)
}

// UpdateGenre godoc
// @Summary Rename a genre
// @Description The slug is regenerated from the new name.
// @Tags genres
// @Accept json
// @Produce json
// @Param id path string true "Genre id or slug"
// @Param genre body GenreRequest true "Genre"
// @Success 200 {object} utils.SuccessBody
// @Failure 400 {object} utils.ErrorBody
// @Failure 404 {object} utils.ErrorBody
// @Failure 409 {object} utils.ErrorBody
// @Router /genres/{id} [patch]
func (h *GenreHandler) UpdateGenre(c *fiber.Ctx) error {
	var req GenreRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return respondError(c, h.logger, err, "Invalid genre")
	}

	genre, err := h.service.Update(c.Context(), c.Params("id"), services.GenreInput{Name: req.Name})
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update genre")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, genre)
}

// DeleteGenre godoc
// @Summary Delete a genre
// @Description Fails with movieCount while movies use the genre, unless force=true detaches them.
// @Tags genres
// @Produce json
// @Param id path string true "Genre id or slug"
// @Param force query bool false "Detach movies and delete anyway"
// @Success 200 {object} utils.SuccessBody
// @Failure 400 {object} utils.ErrorBody
// @Failure 404 {object} utils.ErrorBody
// @Router /genres/{id} [delete]
func (h *GenreHandler) DeleteGenre(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id"), c.QueryBool("force")); err != nil {
		return respondError(c, h.logger, err, "Failed to delete genre")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"deleted": true})
}
