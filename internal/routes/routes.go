package routes

import (
	"whutmovie/internal/handlers"
	"whutmovie/internal/middleware"
	"whutmovie/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Users      *handlers.UserHandler
	Movies     *handlers.MovieHandler
	Genres     *handlers.GenreHandler
	Categories *handlers.CategoryHandler
	Dashboard  *handlers.DashboardHandler
	Upload     *handlers.UploadHandler
	Contact    *handlers.ContactHandler
}

func Setup(app *fiber.App, h Handlers, auth *middleware.Auth, cache *services.PageCacheService) {
	requireAdmin := auth.RequireAdmin(middleware.Unauthorized)

	// Admin pages: cookie gate first, then a real session check.
	app.Use(middleware.AdminGate())
	app.Get(middleware.AdminLoginPath, auth.OptionalAdmin(), h.Auth.LoginPage)
	app.Get(middleware.AdminPath, auth.RequireAdmin(middleware.Redirect), h.Dashboard.AdminHome)

	// API versioning
	api := app.Group("/api")
	v1 := api.Group("/v1")

	movies := v1.Group("/movies")
	{
		movies.Get("/", middleware.PageCache(cache, services.PageGroupMovies), h.Movies.GetAllMovies)
		movies.Get("/:id", middleware.PageCache(cache, services.PageGroupMovies), h.Movies.GetMovie)
		movies.Post("/", requireAdmin, h.Movies.CreateMovie)
		movies.Put("/:id", requireAdmin, h.Movies.UpdateMovie)
		movies.Delete("/:id", requireAdmin, h.Movies.DeleteMovie)
	}

	genres := v1.Group("/genres")
	{
		genres.Get("/", middleware.PageCache(cache, services.PageGroupGenres), h.Genres.ListGenres)
		genres.Get("/:id", middleware.PageCache(cache, services.PageGroupGenres), h.Genres.GetGenre)
		genres.Post("/", requireAdmin, h.Genres.CreateGenre)
		genres.Patch("/:id", requireAdmin, h.Genres.UpdateGenre)
		genres.Delete("/:id", requireAdmin, h.Genres.DeleteGenre)
	}

	categories := v1.Group("/categories")
	{
		categories.Get("/", middleware.PageCache(cache, services.PageGroupCategories), auth.OptionalAdmin(), h.Categories.ListCategories)
		categories.Get("/:id", middleware.PageCache(cache, services.PageGroupCategories), h.Categories.GetCategory)
		categories.Post("/", requireAdmin, h.Categories.CreateCategory)
		categories.Patch("/:id", requireAdmin, h.Categories.UpdateCategory)
		categories.Delete("/:id", requireAdmin, h.Categories.DeleteCategory)
		categories.Put("/:id/assignments", requireAdmin, h.Categories.AssignMovie)
		categories.Patch("/:id/assignments/:movieId", requireAdmin, h.Categories.UpdateAssignment)
		categories.Delete("/:id/assignments/:movieId", requireAdmin, h.Categories.RemoveAssignment)
	}

	v1.Post("/contact", h.Contact.SubmitContact)

	admin := v1.Group("/admin")
	{
		admin.Post("/login", h.Auth.Login)
		admin.Post("/logout", h.Auth.Logout)
		admin.Get("/session", requireAdmin, h.Auth.Session)
		admin.Get("/dashboard", requireAdmin, h.Dashboard.GetDashboardStats)
		admin.Post("/hash-password", requireAdmin, h.Users.HashPassword)
		admin.Get("/uploads/presign", requireAdmin, h.Upload.GetPresignedURL)
	}

	users := admin.Group("/users", requireAdmin)
	{
		users.Get("/", h.Users.ListUsers)
		users.Post("/", h.Users.CreateUser)
		users.Get("/:id", h.Users.GetUser)
		users.Patch("/:id", h.Users.UpdateUser)
		users.Delete("/:id", h.Users.DeleteUser)
	}
}
