package handlers

import (
	"whutmovie/internal/repository"
	"whutmovie/internal/services"
	"whutmovie/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type MovieHandler struct {
	service services.MovieService
	logger  *logrus.Logger
}

func NewMovieHandler(service services.MovieService, logger *logrus.Logger) *MovieHandler {
	return &MovieHandler{
		service: service,
		logger:  logger,
	}
}

// GetAllMovies godoc
// @Summary List movies
// @Description Paginated movie list with optional genre, category and title filters
// @Tags movies
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 100)" default(12)
// @Param genre query string false "Genre slug"
// @Param category query string false "Category slug"
// @Param q query string false "Case-insensitive title search"
// @Param sort query string false "year (newest first) or title" default(year)
// @Success 200 {object} utils.SuccessBody
// @Failure 500 {object} utils.ErrorBody
// @Router /movies [get]
func (h *MovieHandler) GetAllMovies(c *fiber.Ctx) error {
	page, pageSize := pageParams(c, utils.DefaultMoviePageSize)

	movies, total, err := h.service.List(c.Context(), repository.MovieFilter{
		Page:     repository.Page{Number: page, Size: pageSize},
		Genre:    c.Query("genre"),
		Category: c.Query("category"),
		Search:   c.Query("q"),
		Sort:     c.Query("sort", repository.MovieSortYear),
	})
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list movies")
	}

	return utils.SuccessWithMetaResponse(c, fiber.StatusOK, movies, utils.CreatePaginationMeta(page, pageSize, total))
}

// GetMovie godoc
// @Summary Get a movie
// @Description Look up a movie by id or slug, with its genres and category placements
// @Tags movies
// @Produce json
// @Param id path string true "Movie id or slug"
// @Success 200 {object} utils.SuccessBody
// @Failure 404 {object} utils.ErrorBody
// @Router /movies/{id} [get]
func (h *MovieHandler) GetMovie(c *fiber.Ctx) error {
	movie, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to get movie")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, movie)
}

// CreateMovie godoc
// @Summary Create a movie
// @Tags movies
// @Accept json
// @Produce json
// @Param movie body MovieRequest true "Movie"
// @Success 201 {object} utils.SuccessBody
// @Failure 400 {object} utils.ErrorBody
// @Failure 401 {object} utils.ErrorBody
// @Failure 409 {object} utils.ErrorBody
// @Router /movies [post]
func (h *MovieHandler) CreateMovie(c *fiber.Ctx) error {
	var req MovieRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return respondError(c, h.logger, err, "Invalid movie")
	}

	movie, err := h.service.Create(c.Context(), req.toInput())
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create movie")
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, movie)
}

// UpdateMovie godoc
// @Summary Replace a movie
// @Description Full update. The slug is regenerated from the title.
// @Tags movies
// @Accept json
// @Produce json
// @Param id path string true "Movie id or slug"
// @Param movie body MovieRequest true "Movie"
// @Success 200 {object} utils.SuccessBody
// @Failure 400 {object} utils.ErrorBody
// @Failure 401 {object} utils.ErrorBody
// @Failure 404 {object} utils.ErrorBody
// @Failure 409 {object} utils.ErrorBody
// @Router /movies/{id} [put]
func (h *MovieHandler) UpdateMovie(c *fiber.Ctx) error {
	var req MovieRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return respondError(c, h.logger, err, "Invalid movie")
	}

	movie, err := h.service.Update(c.Context(), c.Params("id"), req.toInput())
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update movie")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, movie)
}

// DeleteMovie godoc
// @Summary Delete a movie
// @Description Removes the movie, its category assignments and genre links
// @Tags movies
// @Produce json
// @Param id path string true "Movie id or slug"
// @Success 200 {object} utils.SuccessBody
// @Failure 401 {object} utils.ErrorBody
// @Failure 404 {object} utils.ErrorBody
// @Router /movies/{id} [delete]
func (h *MovieHandler) DeleteMovie(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return respondError(c, h.logger, err, "Failed to delete movie")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"deleted": true})
}
