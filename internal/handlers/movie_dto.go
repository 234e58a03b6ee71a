package handlers

import "whutmovie/internal/services"

// MovieRequest is the body of movie create and full update.
type MovieRequest struct {
	Title       string   `json:"title" validate:"required,max=255" example:"Inception"`
	Slug        string   `json:"slug,omitempty" validate:"omitempty,max=255" example:"inception"`
	WhutSummary string   `json:"whutSummary" validate:"required" example:"A heist, but the vault is a nap."`
	Description *string  `json:"description"`
	Year        *int     `json:"year" validate:"omitempty,gte=1800,lte=2100" example:"2010"`
	GenreIDs    []string `json:"genreIds"`
	GenreSlugs  []string `json:"genreSlugs"`
	PosterURL   string   `json:"posterUrl" validate:"omitempty,url"`
}

func (r MovieRequest) toInput() services.MovieInput {
	return services.MovieInput{
		Title:       r.Title,
		Slug:        r.Slug,
		WhutSummary: r.WhutSummary,
		Description: r.Description,
		Year:        r.Year,
		GenreIDs:    r.GenreIDs,
		GenreSlugs:  r.GenreSlugs,
		PosterURL:   r.PosterURL,
	}
}
